package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ridKey is the echo context key the request id lives under. The logger and
// recovery middleware read it back out when they emit events.
const ridKey = "request_id"

// RequestID assigns every request a unique id, honoring an incoming
// X-Request-ID header so ids propagate across services.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Set(ridKey, rid)
			c.Response().Header().Set(echo.HeaderXRequestID, rid)
			return next(c)
		}
	}
}
