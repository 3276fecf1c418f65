package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

// Context keys set by ResolveActor
const (
	ActorKey      = "actor"
	ActorEmailKey = "actorEmail"
)

// ActorHeader carries the operator identity when no identity provider is configured
const ActorHeader = "X-Actor-ID"

// TokenVerifier verifies Firebase ID tokens; *auth.Client implements it
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// ResolveActor returns a middleware that stores the caller identity under ActorKey.
// With a verifier, a valid Bearer ID token is required and its UID becomes the
// actor. Without one the X-Actor-ID header set by the gateway is trusted.
func ResolveActor(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if verifier == nil {
				if actor := strings.TrimSpace(c.Request().Header.Get(ActorHeader)); actor != "" {
					c.Set(ActorKey, actor)
				}
				return next(c)
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			idToken, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(idToken) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
			}

			token, err := verifier.VerifyIDToken(c.Request().Context(), strings.TrimSpace(idToken))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(ActorKey, token.UID)
			if email, ok := token.Claims["email"].(string); ok {
				c.Set(ActorEmailKey, email)
			}
			return next(c)
		}
	}
}
