// Package middleware provides HTTP middleware for the support desk API.
package middleware

import (
	"context"
	"net/http"

	"supportdesk/internal/auth"
	"supportdesk/internal/jwtauth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ActorContextKey is the context key for the authenticated actor.
const ActorContextKey contextKey = "actor"

// TokenVerifier verifies a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*jwtauth.Claims, error)
}

// GetActor retrieves the authenticated actor from the request context.
// Returns the Actor and true if found, zero value and false otherwise.
func GetActor(ctx context.Context) (auth.Actor, bool) {
	actor, ok := ctx.Value(ActorContextKey).(auth.Actor)
	return actor, ok
}

// RequireAuth returns middleware that authenticates requests using the
// provided token verifier.
//
// Authentication flow:
//  1. Extract bearer token from the Authorization header
//  2. Verify the token signature and claims
//  3. Parse the subject and role into an Actor
//  4. Attach the actor to the request context and continue
//
// Error responses:
//   - 401 Unauthorized: missing or malformed Authorization header
//   - 403 Forbidden: invalid token, unparseable subject, or unknown role
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractBearerToken(r)
			if err != nil {
				auth.WriteUnauthorized(w)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				auth.WriteForbidden(w)
				return
			}

			id, err := claims.UserID()
			if err != nil {
				auth.WriteForbidden(w)
				return
			}

			role, err := claims.Role()
			if err != nil {
				// Token is genuine but carries no usable role. Deny.
				auth.WriteForbidden(w)
				return
			}

			actor := auth.Actor{ID: id, Email: claims.Email, Role: role}
			ctx := context.WithValue(r.Context(), ActorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
