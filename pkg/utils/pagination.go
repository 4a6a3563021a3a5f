package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	// DefaultPageSize matches one screen of the mobile list views.
	DefaultPageSize = 20
	// MaxPageSize caps a single page; anything larger falls back to the default.
	MaxPageSize = 50
)

// PaginationParams carries a parsed page window. Offset is what the
// repositories consume; Page is echoed back in list responses.
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

// GetPaginationParams reads the page window from the query string. Listing
// endpoints accept page/limit; chat history scroll-back may pass an explicit
// offset instead, which takes precedence over page.
func GetPaginationParams(c echo.Context) PaginationParams {
	pageSize, _ := strconv.Atoi(c.QueryParam("limit"))
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	if raw := c.QueryParam("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset >= 0 {
			return PaginationParams{
				Page:     offset/pageSize + 1,
				PageSize: pageSize,
				Offset:   offset,
			}
		}
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page <= 0 {
		page = 1
	}

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}
}
