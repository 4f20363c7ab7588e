package middleware

import (
	"context"
	"net/http"
	"strings"

	"aidanwoods.dev/go-paseto"
)

// Key for storing the authenticated user id in the request context
type contextKey string

const UserIDKey contextKey = "user_id"

// AuthConfig holds the configuration for the auth middleware
type AuthConfig struct {
	PublicKey paseto.V4AsymmetricPublicKey
}

// NewAuthMiddleware creates a new auth middleware with the given public key
func NewAuthMiddleware(publicKey paseto.V4AsymmetricPublicKey) *AuthConfig {
	return &AuthConfig{
		PublicKey: publicKey,
	}
}

// RequireAuth resolves the request to an owner id or rejects it. The
// token travels in the Authorization header, or in the access_token
// query parameter for WebSocket upgrades, where browsers cannot set
// headers.
func (ac *AuthConfig) RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				http.Error(w, "Authorization required", http.StatusUnauthorized)
				return
			}

			parser := paseto.NewParser()
			parser.AddRule(paseto.NotExpired())

			verified, err := parser.ParseV4Public(ac.PublicKey, token, nil)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			userID, err := verified.GetString("user_id")
			if err != nil || userID == "" {
				http.Error(w, "User ID not found in token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

// UserIDFromContext returns the authenticated user id set by RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}
