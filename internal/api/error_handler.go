package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-console/internal/core/domain"
	"github.com/99minutos/catalog-console/internal/core/ports"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain and backend errors to their HTTP status codes.
//   - Publishes one warning when the backend could not be reached, unless a
//     service already told the user about that failure.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(notifier ports.Notifier, log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, notifier, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, notifier ports.Notifier, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, "email and password are required"
	case errors.Is(err, domain.ErrAuthFailed):
		if apiErr, ok := domain.AsAPIError(err); ok && apiErr.Message != "" {
			return http.StatusUnauthorized, apiErr.Message
		}
		return http.StatusUnauthorized, "sign in failed"
	case errors.Is(err, domain.ErrTenantNotAccessible):
		return http.StatusForbidden, "tenant not accessible"
	case errors.Is(err, domain.ErrNetwork):
		log.Warn().Err(err).Str("path", c.Path()).Msg("backend unreachable")
		if notifier != nil && !domain.IsNotified(err) {
			notifier.Publish(domain.Notification{
				Severity: domain.SeverityWarning,
				Title:    "Backend unreachable",
				Message:  "The catalog service could not be reached. Try again shortly.",
			})
		}
		return http.StatusBadGateway, "backend unreachable"
	}

	// Backend answered with a failure: relay its status and message.
	if apiErr, ok := domain.AsAPIError(err); ok {
		return apiErr.Status, apiErr.Message
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
