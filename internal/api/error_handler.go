package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/account-service/internal/core/domain"
)

// Machine-readable codes carried next to the message.
const (
	CodeTokenExpired    = "TOKEN_EXPIRED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeAuthUnavailable = "AUTH_UNAVAILABLE"
	CodeAuthUpstream    = "AUTH_UPSTREAM_ERROR"
	CodeMissingSession  = "MISSING_SESSION_COOKIE"
	CodeInternal        = "INTERNAL"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "code": "<CODE>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var remote *domain.RemoteStatusError
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		// 401 tells the client to refresh; 403 means the credential itself is unacceptable.
		return http.StatusUnauthorized, errorResponse{Error: "token expired", Code: CodeTokenExpired}
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrMalformedToken):
		return http.StatusForbidden, errorResponse{Error: "access forbidden", Code: CodeForbidden}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: rootMessage(err), Code: CodeNotFound}
	case errors.Is(err, domain.ErrAccountExists):
		return http.StatusConflict, errorResponse{Error: "account already exists", Code: CodeConflict}
	case errors.Is(err, domain.ErrAuthTransport):
		log.Error().Err(err).Str("path", c.Path()).Msg("auth service unreachable")
		return http.StatusServiceUnavailable, errorResponse{Error: "authentication service unavailable", Code: CodeAuthUnavailable}
	case errors.As(err, &remote):
		log.Warn().Err(err).Str("path", c.Path()).Msg("auth service error")
		return http.StatusBadGateway, errorResponse{Error: "authentication service error", Code: CodeAuthUpstream}
	case errors.Is(err, domain.ErrMalformedResponse):
		log.Error().Err(err).Str("path", c.Path()).Msg("auth service sent malformed response")
		return http.StatusBadGateway, errorResponse{Error: "authentication service error", Code: CodeAuthUpstream}
	case errors.Is(err, domain.ErrMissingRequiredCookie):
		log.Error().Err(err).Str("path", c.Path()).Msg("auth service response lacks session cookies")
		return http.StatusBadGateway, errorResponse{Error: "incomplete session from authentication service", Code: CodeMissingSession}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: CodeInternal}
}

// rootMessage returns the message of the outermost domain not-found error.
func rootMessage(err error) string {
	for _, known := range []error{domain.ErrAccountNotFound, domain.ErrNationalityNotFound, domain.ErrGenderNotFound} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return domain.ErrNotFound.Error()
}
