package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"
)

const APIKeyHeader = "X-API-Key"

// APIKeyMiddleware guards admin routes with a single static key.
// An empty configured key rejects every request.
func APIKeyMiddleware(adminKey string) echo.MiddlewareFunc {
	want := []byte(strings.TrimSpace(adminKey))
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := strings.TrimSpace(c.Request().Header.Get(APIKeyHeader))
			if key == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing api key"})
			}
			if len(want) == 0 || subtle.ConstantTimeCompare([]byte(key), want) != 1 {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
			}
			return next(c)
		}
	}
}
