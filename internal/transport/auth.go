package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type centerKey struct{}

// CenterResolver resolves a center ID from a bearer token.
type CenterResolver interface {
	ResolveCenter(ctx context.Context, token string) (string, error)
}

// CenterFromContext returns the center ID from context, if present.
func CenterFromContext(ctx context.Context) (string, bool) {
	centerID, ok := ctx.Value(centerKey{}).(string)
	return centerID, ok
}

// WithCenter returns a context carrying the center ID. Exposed for tests.
func WithCenter(ctx context.Context, centerID string) context.Context {
	return context.WithValue(ctx, centerKey{}, centerID)
}

// AuthMiddleware enforces bearer token authentication and scopes the request
// to the token's center.
func AuthMiddleware(resolver CenterResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			centerID, err := resolver.ResolveCenter(r.Context(), token)
			if err != nil || centerID == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := WithCenter(r.Context(), centerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaticCenterMiddleware scopes every request to a fixed center. Used when
// auth is disabled (single-center deployments, local development).
func StaticCenterMiddleware(centerID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithCenter(r.Context(), centerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
