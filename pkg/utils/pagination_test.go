package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func paginationContext(t *testing.T, query string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/requests?"+query, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestGetPaginationParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  PaginationParams
	}{
		{
			name:  "defaults",
			query: "",
			want:  PaginationParams{Page: 1, PageSize: DefaultPageSize, Offset: 0},
		},
		{
			name:  "page and limit",
			query: "page=3&limit=10",
			want:  PaginationParams{Page: 3, PageSize: 10, Offset: 20},
		},
		{
			name:  "oversized limit falls back to default",
			query: "limit=500",
			want:  PaginationParams{Page: 1, PageSize: DefaultPageSize, Offset: 0},
		},
		{
			name:  "explicit offset wins over page",
			query: "offset=40&page=9&limit=20",
			want:  PaginationParams{Page: 3, PageSize: 20, Offset: 40},
		},
		{
			name:  "negative offset ignored",
			query: "offset=-5&page=2",
			want:  PaginationParams{Page: 2, PageSize: DefaultPageSize, Offset: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetPaginationParams(paginationContext(t, tt.query))
			assert.Equal(t, tt.want, got)
		})
	}
}
