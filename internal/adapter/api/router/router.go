package router

import (
	"github.com/labstack/echo/v4"

	"trashlink/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	SetupAuthRouter(e, authMiddleware)
	SetupUserRouter(e, authMiddleware)
	SetupCollectorRouter(e, authMiddleware, roleMiddleware)
	SetupRequestRouter(e, authMiddleware)
	SetupHealthRouter(e)
}
