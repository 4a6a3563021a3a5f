package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"trashlink/internal/domain/entity"
	"trashlink/internal/domain/repository"
)

type RoleMiddleware struct {
	userRepo repository.UserRepository
}

func NewRoleMiddleware(userRepo repository.UserRepository) *RoleMiddleware {
	return &RoleMiddleware{
		userRepo: userRepo,
	}
}

// CollectorOnly gates routes that only make sense for the collector side of
// the marketplace.
func (m *RoleMiddleware) CollectorOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, ok := c.Get("uid").(string)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
		}

		user, err := m.userRepo.GetByID(c.Request().Context(), uid)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to verify role")
		}

		if user.Role != entity.RoleCollector {
			return echo.NewHTTPError(http.StatusForbidden, "Collector role required")
		}

		return next(c)
	}
}
