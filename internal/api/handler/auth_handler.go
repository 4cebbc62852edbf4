package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ankatech/investor-admin/internal/api/middleware"
	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/internal/core/ports"
)

const invalidLoginMessage = "Usuário ou senha inválidos."

type AuthHandler struct {
	authService  ports.AuthService
	tokenTTL     time.Duration
	secureCookie bool
}

// NewAuthHandler serves both the JSON login and the browser login form.
// tokenTTL bounds the session cookie; secureCookie marks it HTTPS-only.
func NewAuthHandler(authService ports.AuthService, tokenTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, tokenTTL: tokenTTL, secureCookie: secureCookie}
}

// Login authenticates an operator and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// LoginPage handles GET /login.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", pageData{
		Title: "Entrar",
		Next:  safeNext(c.QueryParam("next")),
	})
}

// LoginSubmit handles POST /login: on success the token is stored in the
// session cookie and the browser goes back where it was heading.
func (h *AuthHandler) LoginSubmit(c echo.Context) error {
	next := safeNext(c.FormValue("next"))
	fail := func(status int) error {
		return c.Render(status, "login.html", pageData{Title: "Entrar", Next: next, Error: invalidLoginMessage})
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(http.StatusBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return fail(http.StatusBadRequest)
	}

	token, _, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return fail(http.StatusUnauthorized)
	}
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusSeeOther, next)
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusSeeOther, "/login")
}

// safeNext keeps redirects on this host.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
