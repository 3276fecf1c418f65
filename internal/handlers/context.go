package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"ledger_app_echo/internal/ledger"
	"ledger_app_echo/internal/middleware"
)

// Helper to safely get string from context
func getStringFromContext(c echo.Context, key string) string {
	val := c.Get(key)
	if val == nil {
		return ""
	}
	strVal, ok := val.(string)
	if !ok {
		return ""
	}
	return strVal
}

// actor is the identity resolved by middleware.ResolveActor
func actor(c echo.Context) string {
	return getStringFromContext(c, middleware.ActorKey)
}

// paramID parses a numeric path parameter
func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// queryUint parses an optional numeric query parameter
func queryUint(c echo.Context, name string) (*uint, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	id := uint(v)
	return &id, nil
}

// bind decodes the request body, reporting malformed input as a 400
func bind(c echo.Context, dest interface{}) error {
	if err := c.Bind(dest); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed request body")
	}
	return nil
}

// display renders minor units as a decimal string for the *_display fields
func display(minor int64) string {
	return ledger.Display(minor)
}
