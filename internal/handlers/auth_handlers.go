package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ledger_app_echo/internal/middleware"
)

// AuthHandler exposes the identity resolved for the current request
type AuthHandler struct {
	verified bool
}

// NewAuthHandler creates a new AuthHandler. verified reports whether actors
// come from checked ID tokens rather than a gateway header.
func NewAuthHandler(verified bool) *AuthHandler {
	return &AuthHandler{verified: verified}
}

// WhoAmI returns the actor recorded on audit entries for this caller
func (h *AuthHandler) WhoAmI(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"actor":    actor(c),
		"email":    getStringFromContext(c, middleware.ActorEmailKey),
		"verified": h.verified,
	})
}
