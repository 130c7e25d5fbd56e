package middleware

// identity.go resolves who is calling.  JWTAuth stores the subject under
// "user_id"; when only the raw token is present (for example when a
// different auth middleware ran) the claims are read directly.  Anonymous
// callers are reported as "anon".

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Anonymous is the identity reported when no subject is known.
const Anonymous = "anon"

// UserID returns the authenticated subject of the request, or Anonymous.
func UserID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok && v != "" {
		return v
	}
	if tok, ok := c.Get("user").(*jwt.Token); ok {
		if cl, ok := tok.Claims.(jwt.MapClaims); ok {
			if v := subject(cl); v != "" {
				return v
			}
		}
	}
	return Anonymous
}
