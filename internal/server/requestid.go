package server

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderRequestID is the request-ID header echoed back to callers.
const HeaderRequestID = "X-Request-ID"

// RequestIDMiddleware assigns each request a UUID unless the caller
// supplied one, and echoes it in the response.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(HeaderRequestID, id)
			c.Response().Header().Set(HeaderRequestID, id)
			return next(c)
		}
	}
}

// GetRequestID returns the request ID assigned by RequestIDMiddleware.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(HeaderRequestID).(string); ok {
		return id
	}
	return ""
}
