package api

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/shutterbin/image-service/internal/api/handlers/image"
	"github.com/shutterbin/image-service/internal/api/middleware"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Delete-Token")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, limiter *middleware.FixedWindowLimiter) {
	// Enable CORS for preflight requests
	r.Use(corsMiddleware())

	// Raw bytes sit outside /api so short links stay short.
	r.GET("/i/:id", h.Raw)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(limiter))
	{
		api.GET("/health", h.HealthCheck)

		// Image endpoints
		api.POST("/upload", h.Upload)       // upload an image
		api.GET("/images/:id", h.Get)       // image metadata
		api.DELETE("/images/:id", h.Delete) // delete with token
	}
}
