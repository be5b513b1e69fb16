package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/boardscore/boardscore/internal/api/apierr"
	"github.com/boardscore/boardscore/internal/services/identity"
)

type contextKey string

const (
	identityContextKey contextKey = "identity"
	tokenContextKey    contextKey = "token"
)

// Auth creates authentication middleware requiring a valid session
func Auth(provider identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			ident, err := provider.Resolve(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, identityContextKey, ident)
			ctx = context.WithValue(ctx, tokenContextKey, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the session if one is presented but lets
// anonymous requests through. Room pages use it: the session state
// machine decides whether sign-in is required.
func OptionalAuth(provider identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token != "" {
				if ident, err := provider.Resolve(token); err == nil {
					ctx := r.Context()
					ctx = context.WithValue(ctx, identityContextKey, ident)
					ctx = context.WithValue(ctx, tokenContextKey, token)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the session token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetIdentity returns the signed-in identity from the request context,
// or nil for anonymous requests
func GetIdentity(ctx context.Context) *identity.Identity {
	ident, _ := ctx.Value(identityContextKey).(*identity.Identity)
	return ident
}

// GetToken returns the session token from the request context
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// MustGetIdentity returns the signed-in identity or panics
func MustGetIdentity(ctx context.Context) *identity.Identity {
	ident := GetIdentity(ctx)
	if ident == nil {
		panic("no identity in context - auth middleware not applied?")
	}
	return ident
}
