package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"jsonnorm/internal/config"
	"jsonnorm/internal/database"
	"jsonnorm/internal/handlers"
	"jsonnorm/internal/repositories"
	"jsonnorm/internal/routes"
	"jsonnorm/internal/services"
)

func NewServer() *http.Server {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := database.EnsureDatabaseExists(cfg.Database); err != nil {
		log.Fatalf("failed to ensure database exists: %v", err)
	}

	pool, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(pool); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Dependency injection
	tableRepo := repositories.NewTableRepository(pool)
	runRepo := repositories.NewRunRepository(pool)
	normalizeService := services.NewNormalizeService()
	loadService := services.NewLoadService(tableRepo, runRepo, cfg.Database.Schema)
	normalizeHandler := handlers.NewNormalizeHandler(normalizeService)
	loadHandler := handlers.NewLoadHandler(loadService)

	// Initialize Gin router
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-API-Key"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))
	routes.RegisterRoutes(router, normalizeHandler, loadHandler, cfg.APIKey)

	// Create and configure the HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
