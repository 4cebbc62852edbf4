package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/ankatech/investor-admin/internal/infrastructure/cache"
)

// Cache makes store available to everything below the handler through the
// request context.
func Cache(store cache.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(cache.WithStore(req.Context(), store)))
			return next(c)
		}
	}
}
