package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/orderdesk/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders {"message": "<message>"}, except unmatched routes which follow the Accept header.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if errors.Is(err, echo.ErrNotFound) {
			_ = renderNotFound(c)
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 405, auth middleware, rate limiter, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("echo error")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, capitalize(err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest, "Invalid id"
	case errors.Is(err, domain.ErrInvalidUserData):
		return http.StatusBadRequest, "Invalid user data received"
	case errors.Is(err, domain.ErrNoUsers):
		return http.StatusBadRequest, "No users found"
	case errors.Is(err, domain.ErrNoOrders):
		return http.StatusBadRequest, "No orders found"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusBadRequest, "User not found"
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusBadRequest, "Order not found"
	case errors.Is(err, domain.ErrUserHasOrders):
		return http.StatusBadRequest, "User has assigned orders"
	case errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusConflict, "Duplicate username"
	case errors.Is(err, domain.ErrDuplicateTitle):
		return http.StatusConflict, "Duplicate order title"
	case errors.Is(err, domain.ErrDuplicateRequest):
		return http.StatusConflict, "Duplicate request"
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrInactiveUser):
		return http.StatusUnauthorized, "Unauthorized"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// renderNotFound answers an unmatched route in the representation the client
// prefers: HTML, then JSON, then plain text.
func renderNotFound(c echo.Context) error {
	accept := c.Request().Header.Get(echo.HeaderAccept)
	switch {
	case accept == "" || strings.Contains(accept, echo.MIMETextHTML) || strings.Contains(accept, "*/*"):
		return c.HTML(http.StatusNotFound, notFoundPage)
	case strings.Contains(accept, echo.MIMEApplicationJSON):
		return c.JSON(http.StatusNotFound, errorResponse{Message: "404 Not Found"})
	default:
		return c.String(http.StatusNotFound, "404 Not Found")
	}
}

const notFoundPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>404 Not Found</title></head>
<body><h1>404 Not Found</h1><p>Sorry, the page you are looking for does not exist.</p></body>
</html>
`

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
