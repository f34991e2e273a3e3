package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mediahost/service/internal/user"
)

// ErrInvalidCredentials is returned when sign-in fails.
var ErrInvalidCredentials = user.ErrInvalidCredentials

// Authenticator verifies credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*user.User, error)
}

// RevocationStore persists signed-out token ids.
type RevocationStore interface {
	Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	PruneExpired(ctx context.Context) (int64, error)
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *user.User `json:"user"`
}

// Service contains the business logic for admin authentication.
type Service struct {
	repo    RevocationStore
	users   Authenticator
	secret  []byte
	ttl     time.Duration
	log     *zap.Logger
	now     func() time.Time
	newUUID func() string
}

// NewService creates a new auth Service.
func NewService(repo RevocationStore, users Authenticator, secret string, ttl time.Duration, log *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		users:   users,
		secret:  []byte(secret),
		ttl:     ttl,
		log:     log.Named("auth"),
		now:     time.Now,
		newUUID: uuid.NewString,
	}
}

// SignIn verifies the credentials and issues a signed JWT.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			s.log.Info("sign-in rejected", zap.String("email", email))
		}
		return nil, err
	}

	token, expiresAt, err := s.issueToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// SignOut revokes the token identified by jti.
func (s *Service) SignOut(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	if expiresAt.IsZero() {
		expiresAt = s.now().Add(s.ttl)
	}
	return s.repo.Revoke(ctx, jti, userID, expiresAt)
}

// IsRevoked reports whether a token id has been signed out.
func (s *Service) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.repo.IsRevoked(ctx, jti)
}

// PruneLoop periodically drops expired revocations until ctx is done.
func (s *Service) PruneLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.repo.PruneExpired(ctx)
			if err != nil {
				s.log.Warn("prune revoked tokens", zap.Error(err))
				continue
			}
			if n > 0 {
				s.log.Debug("pruned revoked tokens", zap.Int64("count", n))
			}
		}
	}
}

// issueToken creates a signed JWT for the given user.
func (s *Service) issueToken(userID, email string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"jti":   s.newUUID(),
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
