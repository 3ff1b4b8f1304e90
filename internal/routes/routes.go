package routes

import (
	"jsonnorm/internal/handlers"
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.Engine, normalizeHandler *handlers.NormalizeHandler, loadHandler *handlers.LoadHandler, apiKey string) {
	api := router.Group("/api/v1")

	normalizeRoutes := NewNormalizeRoutes(normalizeHandler, apiKey)
	normalizeRoutes.RegisterRoutes(api)

	loadRoutes := NewLoadRoutes(loadHandler, apiKey)
	loadRoutes.RegisterRoutes(api)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
