package middleware

import (
	"contest-platform/logging"

	"github.com/labstack/echo/v4"
)

func LoggingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		logging.Info("Received request", logging.Server, "method", r.Method, "path", r.URL.Path)
		logging.Debug("Request headers", logging.Server, "headers", r.Header)
		return next(c)
	}
}
