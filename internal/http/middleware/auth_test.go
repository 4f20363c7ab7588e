package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/stretchr/testify/assert"
)

func signToken(secretKey paseto.V4AsymmetricSecretKey, userID string, expiry time.Time) string {
	token := paseto.NewToken()
	token.SetIssuedAt(time.Now())
	token.SetExpiration(expiry)
	if userID != "" {
		token.SetString("user_id", userID)
	}
	return token.V4Sign(secretKey, nil)
}

func newAuthTestHandler(secretKey paseto.V4AsymmetricSecretKey) (http.Handler, *string) {
	var seenUserID string
	authMiddleware := NewAuthMiddleware(secretKey.Public())
	handler := authMiddleware.RequireAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())
		seenUserID = userID
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &seenUserID
}

func TestRequireAuthBearerHeader(t *testing.T) {
	secretKey := paseto.NewV4AsymmetricSecretKey()
	handler, seenUserID := newAuthTestHandler(secretKey)

	req := httptest.NewRequest(http.MethodGet, "/api/projects.list", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(secretKey, "user1", time.Now().Add(time.Hour)))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user1", *seenUserID)
}

func TestRequireAuthQueryParam(t *testing.T) {
	secretKey := paseto.NewV4AsymmetricSecretKey()
	handler, seenUserID := newAuthTestHandler(secretKey)

	token := signToken(secretKey, "user1", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/ws/projects/p1?access_token="+token, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user1", *seenUserID)
}

func TestRequireAuthMissingToken(t *testing.T) {
	secretKey := paseto.NewV4AsymmetricSecretKey()
	handler, _ := newAuthTestHandler(secretKey)

	req := httptest.NewRequest(http.MethodGet, "/api/projects.list", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthExpiredToken(t *testing.T) {
	secretKey := paseto.NewV4AsymmetricSecretKey()
	handler, _ := newAuthTestHandler(secretKey)

	req := httptest.NewRequest(http.MethodGet, "/api/projects.list", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(secretKey, "user1", time.Now().Add(-time.Hour)))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthWrongKey(t *testing.T) {
	secretKey := paseto.NewV4AsymmetricSecretKey()
	otherKey := paseto.NewV4AsymmetricSecretKey()
	handler, _ := newAuthTestHandler(secretKey)

	req := httptest.NewRequest(http.MethodGet, "/api/projects.list", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(otherKey, "user1", time.Now().Add(time.Hour)))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthTokenWithoutUserID(t *testing.T) {
	secretKey := paseto.NewV4AsymmetricSecretKey()
	handler, _ := newAuthTestHandler(secretKey)

	req := httptest.NewRequest(http.MethodGet, "/api/projects.list", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(secretKey, "", time.Now().Add(time.Hour)))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	secretKey := paseto.NewV4AsymmetricSecretKey()
	handler, _ := newAuthTestHandler(secretKey)

	req := httptest.NewRequest(http.MethodGet, "/api/projects.list", nil)
	req.Header.Set("Authorization", "Token abc")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
