package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/taskbox-api/internal/infrastructure/jwt"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// RefreshTokenCookie is the cookie the session token is delivered in at
// sign-in, checked when no Authorization header is present.
const RefreshTokenCookie = "refreshtoken"

// Auth returns middleware that validates the session JWT and injects claims
// into the request context. The token is read from the Authorization header
// (`Bearer <token>`) with the session cookie as fallback.
func Auth(provider *jwtinfra.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				if c, err := r.Cookie(RefreshTokenCookie); err == nil {
					tokenStr = c.Value
				}
			}
			if tokenStr == "" {
				forbidden(w)
				return
			}
			claims, err := provider.Verify(tokenStr)
			if err != nil {
				forbidden(w)
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts session claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"message":"Token Expired or Invalid Authentication."}`))
}
