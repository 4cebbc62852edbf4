package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ankatech/investor-admin/internal/api/middleware"
	"github.com/ankatech/investor-admin/internal/core/domain"
)

// ctxActor extracts the identity injected by the auth middlewares. An empty
// role means no auth middleware ran for the route.
func ctxActor(c echo.Context) (username, role string, err error) {
	role, _ = c.Get(middleware.KeyRole).(string)
	if role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	username, _ = c.Get(middleware.KeyUsername).(string)
	return username, role, nil
}

// canWrite reports whether the current operator may create or edit clients.
func canWrite(c echo.Context) bool {
	role, _ := c.Get(middleware.KeyRole).(string)
	return role == domain.RoleAdmin
}
