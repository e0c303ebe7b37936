package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"strings" // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/collab-shopping/internal/utils" // participant token parsing
)

// ParticipantIdentity returns an Echo middleware that reads an optional
// Bearer participant token and, when it verifies, injects the token's
// user name and session code into the request context under
// `user_name` and `session_code`.  Unlike a normal auth middleware it
// never rejects a request: identity here is attribution, not
// authorization.  The shared join code is the only gate into a
// session, and every action payload may also name its actor directly.
func ParticipantIdentity(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return next(c)
			}
			raw := strings.TrimPrefix(auth, "Bearer ")
			claims, err := utils.ParseParticipantToken(secret, raw)
			if err != nil {
				// A bad token is treated as no token; the payload
				// fields still identify the actor.
				return next(c)
			}
			c.Set("user_name", claims.UserName)
			c.Set("session_code", claims.SessionCode)
			return next(c)
		}
	}
}

// ParticipantName extracts the token-attributed user name from the
// context, or "" when the request carried no valid token.
func ParticipantName(c echo.Context) string {
	if v, ok := c.Get("user_name").(string); ok {
		return v
	}
	return ""
}

// ParticipantCode extracts the token-attributed session code from the
// context, or "" when the request carried no valid token.
func ParticipantCode(c echo.Context) string {
	if v, ok := c.Get("session_code").(string); ok {
		return v
	}
	return ""
}
