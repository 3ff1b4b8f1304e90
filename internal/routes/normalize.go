package routes

import (
	"jsonnorm/internal/handlers"
	"jsonnorm/internal/middlewares"

	"github.com/gin-gonic/gin"
)

type NormalizeRoutes struct {
	handler *handlers.NormalizeHandler
	apiKey  string
}

func NewNormalizeRoutes(handler *handlers.NormalizeHandler, apiKey string) *NormalizeRoutes {
	return &NormalizeRoutes{handler: handler, apiKey: apiKey}
}

func (r *NormalizeRoutes) RegisterRoutes(router *gin.RouterGroup) {
	normalize := router.Group("/normalize")
	normalize.Use(middlewares.RequireAPIKey(r.apiKey))
	{
		normalize.POST("", r.handler.Normalize)
	}
}
