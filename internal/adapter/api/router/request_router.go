package router

import (
	"github.com/labstack/echo/v4"

	"trashlink/internal/adapter/api/handler"
	"trashlink/internal/adapter/api/middleware"
)

func SetupRequestRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	requestHandler := handler.GetRequestHandler()

	requests := e.Group("/v1/requests")
	requests.Use(authMiddleware.Authenticate)

	requests.POST("", requestHandler.Create)
	requests.GET("", requestHandler.List)
	requests.GET("/:id", requestHandler.GetByID)
	requests.POST("/:id/accept", requestHandler.Accept)
	requests.PUT("/:id/status", requestHandler.UpdateStatus)
}
