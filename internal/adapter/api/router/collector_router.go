package router

import (
	"github.com/labstack/echo/v4"

	"trashlink/internal/adapter/api/handler"
	"trashlink/internal/adapter/api/middleware"
)

func SetupCollectorRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	collectorHandler := handler.GetCollectorHandler()

	// Any signed-in user may browse available collectors.
	browse := e.Group("/v1/collectors")
	browse.Use(authMiddleware.Authenticate)
	browse.GET("", collectorHandler.ListAvailable)

	// The rest is the collector's own surface.
	own := e.Group("/v1/collectors/me")
	own.Use(authMiddleware.Authenticate)
	own.Use(roleMiddleware.CollectorOnly)

	own.POST("", collectorHandler.Onboard)
	own.GET("", collectorHandler.GetMyProfile)
	own.PUT("", collectorHandler.UpdateProfile)
	own.PUT("/availability", collectorHandler.SetAvailability)
	own.PUT("/location", collectorHandler.UpdateLocation)
}
