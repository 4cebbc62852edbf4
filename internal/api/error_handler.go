package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ankatech/investor-admin/internal/api/middleware"
	"github.com/ankatech/investor-admin/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// validationResponse adds the per-field messages of a 422.
type validationResponse struct {
	Error  string             `json:"error"`
	Fields domain.FieldErrors `json:"fields"`
}

// errorPage is the model of error.html.
type errorPage struct {
	Title  string
	User   string
	Role   string
	Notice string
	Error  string
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders {"error": "<message>"} for API routes and the error page otherwise.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if wantsJSON(c) {
			if fields, ok := domain.AsFieldErrors(err); ok {
				_ = c.JSON(code, validationResponse{Error: msg, Fields: fields})
				return
			}
			_ = c.JSON(code, errorResponse{Error: msg})
			return
		}

		user, _ := c.Get(middleware.KeyUsername).(string)
		role, _ := c.Get(middleware.KeyRole).(string)
		page := errorPage{Title: pageTitle(code), User: user, Role: role, Error: pageMessage(err, code, msg)}
		if rerr := c.Render(code, "error.html", page); rerr != nil {
			log.Error().Err(rerr).Msg("error page rendering failed")
			_ = c.String(code, msg)
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	if _, ok := domain.AsFieldErrors(err); ok {
		return http.StatusUnprocessableEntity, "validation failed"
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrClientNotFound):
		return http.StatusNotFound, "client not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrDuplicateSubmission):
		return http.StatusConflict, "duplicate submission"
	case errors.Is(err, domain.ErrEmptyPatch):
		return http.StatusBadRequest, "nothing to update"
	}

	// Upstream failures keep the backend's own message.
	var be *domain.BackendError
	if errors.As(err, &be) {
		log.Warn().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("backend call failed")
		if be.Status >= 400 && be.Status < 500 {
			return be.Status, domain.Describe(err)
		}
		return http.StatusBadGateway, domain.Describe(err)
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// wantsJSON tells API and ops routes apart from the HTML screens.
func wantsJSON(c echo.Context) bool {
	path := c.Request().URL.Path
	for _, prefix := range []string{"/api/", "/health", "/metrics", "/swagger/"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

func pageTitle(code int) string {
	switch code {
	case http.StatusNotFound:
		return "Página não encontrada"
	case http.StatusForbidden:
		return "Acesso negado"
	case http.StatusUnauthorized:
		return "Não autenticado"
	case http.StatusBadGateway:
		return "Serviço indisponível"
	default:
		return "Erro"
	}
}

func pageMessage(err error, code int, fallback string) string {
	switch {
	case errors.Is(err, domain.ErrClientNotFound):
		return "Cliente não encontrado."
	case errors.Is(err, domain.ErrForbidden):
		return "Seu perfil não permite esta operação."
	case code == http.StatusNotFound:
		return "A página solicitada não existe."
	case code == http.StatusInternalServerError:
		return domain.UnknownErrorMessage
	}
	var be *domain.BackendError
	if errors.As(err, &be) {
		return domain.Describe(err)
	}
	return fallback
}
