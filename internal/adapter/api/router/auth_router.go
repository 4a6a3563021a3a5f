package router

import (
	"github.com/labstack/echo/v4"

	"trashlink/internal/adapter/api/handler"
	"trashlink/internal/adapter/api/middleware"
)

func SetupAuthRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	authHandler := handler.GetAuthHandler()

	auth := e.Group("/v1/auth")
	auth.Use(middleware.AuthRateLimit())

	// Pre-redirect role hint and post-redirect session resolution.
	auth.POST("/begin", authHandler.BeginSignIn)
	auth.POST("/session", authHandler.CompleteSignIn)

	me := e.Group("/v1/auth")
	me.Use(authMiddleware.Authenticate)
	me.GET("/me", authHandler.Me)
	me.POST("/switch-role", authHandler.SwitchRole)
}
