// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the authentication gate: request-level enforcement of
// a valid session token. Two modes are provided:
//
//   - RequireAuth: the protected-route policy. Missing, malformed, or invalid
//     credentials abort the request with 401 and a structured error body.
//   - OptionalAuth: same parsing, but failures proceed without an identity so
//     handlers can serve both anonymous and authenticated callers.
//
// On success the verified identity is stored in the Gin context and exposed
// via IdentityFrom / ResponderID.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studsovet/go-forms-backend/internal/auth"
)

const (
	// identityKey is the Gin context key under which the verified identity
	// is stored.
	identityKey = "identity"
	// responderKey mirrors the identity's responder id as a plain string for
	// logging and rate-limit keying.
	responderKey = "responderID"
)

// TokenValidator validates a compact session token, returning nil when the
// token is invalid for any reason. *auth.TokenService satisfies it.
type TokenValidator interface {
	Validate(token string) *auth.Identity
}

// RequireAuth returns a middleware that rejects requests lacking a valid
// `Authorization: Bearer <token>` header.
//
// Rejections carry distinct messages so clients can tell a missing header
// from a malformed one from an expired token, all under code "unauthorized".
func RequireAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			abortUnauthorized(c, "authorization header must be: Bearer <token>")
			return
		}
		id := tokens.Validate(token)
		if id == nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		setIdentity(c, id)
		c.Next()
	}
}

// OptionalAuth returns a middleware that attaches an identity when a valid
// bearer token is present and otherwise lets the request through
// unauthenticated. It never aborts.
func OptionalAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			if token, ok := bearerToken(header); ok {
				if id := tokens.Validate(token); id != nil {
					setIdentity(c, id)
				}
			}
		}
		c.Next()
	}
}

// IdentityFrom returns the identity attached by RequireAuth/OptionalAuth,
// or nil when the request is unauthenticated.
func IdentityFrom(c *gin.Context) *auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*auth.Identity); ok {
			return id
		}
	}
	return nil
}

// ResponderID returns the authenticated responder key, or "" when absent.
func ResponderID(c *gin.Context) string {
	if v, ok := c.Get(responderKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// bearerToken extracts the token from an Authorization header value. Only
// the exact two-part "Bearer <token>" shape is accepted.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 3)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setIdentity(c *gin.Context, id *auth.Identity) {
	c.Set(identityKey, id)
	c.Set(responderKey, id.ResponderID())
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "unauthorized",
		"message":    msg,
	})
}
