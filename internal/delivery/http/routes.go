package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sparradar/backend/config"
	"github.com/sparradar/backend/internal/usecase"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, auth *usecase.AuthService) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	if cfg.RateLimit.PerIP > 0 {
		v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	}
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", handler.Register)
			authRoutes.POST("/login", handler.Login)
			authRoutes.DELETE("/logout", AuthMiddleware(auth), handler.Logout)
		}

		markets := v1.Group("/markets", AuthMiddleware(auth))
		{
			markets.GET("", handler.ListMarkets)
		}

		shoppingList := v1.Group("/shopping_list", AuthMiddleware(auth))
		{
			shoppingList.POST("/parse", handler.ParseShoppingList)
		}
	}

	return router
}
