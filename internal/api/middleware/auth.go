package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/ankatech/investor-admin/internal/core/domain"
)

// SessionCookie carries the JWT for browser sessions.
const SessionCookie = "anka_session"

// Context keys set by the auth middlewares.
const (
	KeyUsername = "username"
	KeyRole     = "role"
)

var errNoToken = errors.New("no token")

// Auth validates the JWT from the Authorization header or the session cookie
// and injects the claims into the context. Failures are 401 errors.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := parseToken(c, jwtSecret)
			if errors.Is(err, errNoToken) {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			setClaims(c, claims)
			return next(c)
		}
	}
}

// AuthPage is Auth for HTML routes: instead of failing it redirects to the
// login page, remembering where the operator was going.
func AuthPage(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := parseToken(c, jwtSecret)
			if err != nil {
				target := "/login?" + url.Values{"next": {c.Request().URL.RequestURI()}}.Encode()
				return c.Redirect(http.StatusSeeOther, target)
			}
			setClaims(c, claims)
			return next(c)
		}
	}
}

// Anonymous stands in for Auth when authentication is disabled: every request
// acts as an administrator.
func Anonymous() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(KeyUsername, "anonymous")
			c.Set(KeyRole, domain.RoleAdmin)
			return next(c)
		}
	}
}

func parseToken(c echo.Context, jwtSecret string) (jwt.MapClaims, error) {
	raw, err := bearerOrCookie(c)
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func bearerOrCookie(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", jwt.ErrTokenMalformed
		}
		return parts[1], nil
	}
	if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
		return ck.Value, nil
	}
	return "", errNoToken
}

func setClaims(c echo.Context, claims jwt.MapClaims) {
	c.Set(KeyUsername, claims["username"])
	c.Set(KeyRole, claims["role"])
}
