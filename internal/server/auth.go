package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware creates an Echo middleware that validates the master
// key on every request except the listed skip paths. Callers pass the
// key as "Authorization: Bearer <key>".
func AuthMiddleware(masterKey string, skipPaths []string) echo.MiddlewareFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := skip[c.Path()]; ok {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return authError(c, "missing authorization header")
			}

			const prefix = "Bearer "
			if !strings.HasPrefix(authHeader, prefix) {
				return authError(c, "invalid authorization header format, expected 'Bearer <token>'")
			}

			if strings.TrimPrefix(authHeader, prefix) != masterKey {
				return authError(c, "invalid master key")
			}

			return next(c)
		}
	}
}

func authError(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, map[string]any{
		"error": map[string]any{
			"type":    "authentication_error",
			"message": message,
		},
	})
}
