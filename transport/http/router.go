package http

import (
	"github.com/gin-gonic/gin"
	"github.com/layer-3/clockguard/internal/logger"
	"github.com/layer-3/clockguard/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(captchaService *service.CaptchaService) *gin.Engine {
	if err := registerValidators(); err != nil {
		logger.Logger.Fatalf("Failed to set up request validation: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger.Logger))

	// Create handlers
	handlers := NewCaptchaHandlers(captchaService, logger.Logger)

	// Captcha routes
	captcha := router.Group("/captcha")
	{
		captcha.POST("/challenge", handlers.Challenge)
		captcha.GET("/new", handlers.New)
		captcha.GET("/image/:session_id", handlers.Image)
		captcha.POST("/verify", handlers.Verify)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(ClearanceMiddleware(captchaService))
	{
		api.GET("/clearance", handlers.Clearance)
	}

	return router
}
