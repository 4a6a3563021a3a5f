package router

import (
	"github.com/labstack/echo/v4"

	"trashlink/internal/adapter/api/handler"
	"trashlink/internal/adapter/api/middleware"
)

func SetupUserRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	userHandler := handler.GetUserHandler()

	users := e.Group("/v1/users")
	users.Use(authMiddleware.Authenticate)

	users.PATCH("/me", userHandler.UpdateProfile)
	users.POST("/me/phone/send-code", userHandler.SendPhoneCode)
	users.POST("/me/phone/verify", userHandler.VerifyPhoneCode)
}
