package routes

import (
	"jsonnorm/internal/handlers"
	"jsonnorm/internal/middlewares"

	"github.com/gin-gonic/gin"
)

type LoadRoutes struct {
	handler *handlers.LoadHandler
	apiKey  string
}

func NewLoadRoutes(handler *handlers.LoadHandler, apiKey string) *LoadRoutes {
	return &LoadRoutes{handler: handler, apiKey: apiKey}
}

func (r *LoadRoutes) RegisterRoutes(router *gin.RouterGroup) {
	loads := router.Group("/loads")
	loads.Use(middlewares.RequireAPIKey(r.apiKey))
	{
		loads.POST("", r.handler.CreateLoad)
		loads.GET("", r.handler.ListLoads)
	}
}
