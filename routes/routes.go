package routes

import (
	"net/http"
	"time"

	"homelead/handlers"
	"homelead/middleware"
	"homelead/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes registers the conversation endpoints. Starting a
// session is public; everything else requires the session token issued
// at start.
func RegisterChatRoutes(r *gin.Engine, chatHandler *handlers.ChatHandler) {
	api := r.Group("/api/chat")
	{
		api.POST("/session", chatHandler.StartSessionHandler)

		// Protected routes (require the session token).
		protected := api.Group("")
		protected.Use(middleware.SessionTokenMiddleware())
		protected.POST("/message", chatHandler.MessageHandler)
		protected.POST("/reset", chatHandler.ResetHandler)
		protected.GET("/history", chatHandler.HistoryHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// CORSConfig returns the CORS policy for browser clients.
func CORSConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}
