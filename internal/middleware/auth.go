package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/mediahost/service/internal/response"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// UserIDKey is the context key for the authenticated user's ID.
const UserIDKey contextKey = "userID"

// UserEmailKey is the context key for the authenticated user's email.
const UserEmailKey contextKey = "userEmail"

// TokenIDKey is the context key for the token's jti claim.
const TokenIDKey contextKey = "tokenID"

// TokenExpiryKey is the context key for the token's expiry time.
const TokenExpiryKey contextKey = "tokenExpiry"

// RevocationChecker reports whether a token id has been signed out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RequireAuth returns middleware that validates a Bearer JWT, rejects
// revoked tokens, and injects user claims into the request context.
func RequireAuth(jwtSecret string, revoked RevocationChecker, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "authorization header required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "invalid authorization header format")
				return
			}

			token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				response.Unauthorized(w, "invalid or expired token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				response.Unauthorized(w, "invalid token claims")
				return
			}

			userID, _ := claims["sub"].(string)
			email, _ := claims["email"].(string)
			jti, _ := claims["jti"].(string)
			if userID == "" || jti == "" {
				response.Unauthorized(w, "invalid token claims")
				return
			}

			if revoked != nil {
				isRevoked, err := revoked.IsRevoked(r.Context(), jti)
				if err != nil {
					log.Error("revocation check failed", zap.Error(err))
					response.InternalError(w)
					return
				}
				if isRevoked {
					response.Unauthorized(w, "session has been signed out")
					return
				}
			}

			var expiry time.Time
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				expiry = exp.Time
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, UserEmailKey, email)
			ctx = context.WithValue(ctx, TokenIDKey, jti)
			ctx = context.WithValue(ctx, TokenExpiryKey, expiry)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user's ID, or "" for anonymous requests.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}
