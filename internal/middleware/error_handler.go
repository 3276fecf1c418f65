package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"ledger_app_echo/internal/ledger"
)

// RetryAfterSeconds is sent with 503 responses for transient storage failures
const RetryAfterSeconds = "2"

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CustomErrorHandler renders engine and echo errors as JSON
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := classify(err)

	attrs := []any{"method", c.Request().Method, "path", c.Path(), "status", status, "error", err}
	if actor, ok := c.Get(ActorKey).(string); ok && actor != "" {
		attrs = append(attrs, "actor", actor)
	}
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", attrs...)
	} else {
		slog.Warn("Request rejected", attrs...)
	}

	if status == http.StatusServiceUnavailable {
		c.Response().Header().Set("Retry-After", RetryAfterSeconds)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		slog.Error("Failed to write error response", "error", writeErr)
	}
}

func classify(err error) (int, ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok || msg == "" {
			msg = http.StatusText(he.Code)
		}
		return he.Code, ErrorResponse{Code: httpCode(he.Code), Message: msg}
	}

	var le *ledger.Error
	if errors.As(err, &le) {
		switch le.Code {
		case ledger.CodeValidation:
			return http.StatusBadRequest, ErrorResponse{Code: string(le.Code), Message: le.Message}
		case ledger.CodeNotFound:
			return http.StatusNotFound, ErrorResponse{Code: string(le.Code), Message: le.Message}
		case ledger.CodeTransient:
			return http.StatusServiceUnavailable, ErrorResponse{Code: string(le.Code), Message: "Temporarily unavailable, please retry"}
		case ledger.CodeConsistency:
			return http.StatusInternalServerError, ErrorResponse{Code: string(le.Code), Message: "Something went wrong. Please try again later."}
		}
	}

	return http.StatusInternalServerError, ErrorResponse{Code: "INTERNAL", Message: "Something went wrong. Please try again later."}
}

// httpCode maps echo's own errors (bad binding, unknown route) into the same code space
func httpCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(ledger.CodeValidation)
	case http.StatusNotFound:
		return string(ledger.CodeNotFound)
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusServiceUnavailable:
		return string(ledger.CodeTransient)
	default:
		return "INTERNAL"
	}
}
