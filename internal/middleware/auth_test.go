package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type revokedSet map[string]bool

func (s revokedSet) IsRevoked(_ context.Context, jti string) (bool, error) {
	return s[jti], nil
}

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func validClaims(jti string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "u-1",
		"email": "admin@example.com",
		"jti":   jti,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func TestRequireAuth(t *testing.T) {
	revoked := revokedSet{"gone": true}
	var gotUser, gotJTI string
	h := RequireAuth(testSecret, revoked, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserID(r.Context())
		gotJTI, _ = r.Context().Value(TokenIDKey).(string)
		w.WriteHeader(http.StatusOK)
	}))

	expired := validClaims("old")
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + sign(t, "other", validClaims("a")), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, testSecret, expired), http.StatusUnauthorized},
		{"revoked", "Bearer " + sign(t, testSecret, validClaims("gone")), http.StatusUnauthorized},
		{"valid", "Bearer " + sign(t, testSecret, validClaims("fresh")), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}

	if gotUser != "u-1" || gotJTI != "fresh" {
		t.Errorf("claims not injected: user=%q jti=%q", gotUser, gotJTI)
	}
}

func TestUserID_Anonymous(t *testing.T) {
	if got := UserID(context.Background()); got != "" {
		t.Errorf("expected empty user id, got %q", got)
	}
}
