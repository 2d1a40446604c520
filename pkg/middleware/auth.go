package middleware

import (
	"context"
	"net/http"
	"strings"
)

type userIDKeyType struct{}

var userIDKey = userIDKeyType{}

// TokenVerifier turns a bearer credential into a stable user identifier.
type TokenVerifier interface {
	ValidateToken(token string) (string, error)
}

// UserID returns the authenticated user id injected by AuthMiddleware.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// AuthMiddleware verifies the bearer credential and injects the user id into
// the request context. Browser WebSocket clients cannot set headers on the
// upgrade request, so a token query parameter is accepted as a fallback.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "authorization required", http.StatusUnauthorized)
				return
			}
			userID, err := verifier.ValidateToken(token)
			if err != nil {
				http.Error(w, "unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
