package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when the email or password does not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Store is the persistence the user service needs.
type Store interface {
	Create(ctx context.Context, email, passwordHash string) (*User, error)
	SetPassword(ctx context.Context, id, passwordHash string) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// Service contains business logic for admin accounts.
type Service struct {
	repo Store
	log  *zap.Logger
}

// NewService creates a new user Service.
func NewService(repo Store, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log.Named("user")}
}

// EnsureAdmin makes sure an account exists for email with the given password.
// An existing account whose password no longer matches is updated.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.New("admin email and password are required")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)) == nil {
			return existing, nil
		}
		hash, err := hashPassword(password)
		if err != nil {
			return nil, err
		}
		if err := s.repo.SetPassword(ctx, existing.ID, hash); err != nil {
			return nil, fmt.Errorf("update admin password: %w", err)
		}
		s.log.Info("admin password updated", zap.String("email", existing.Email))
		return existing, nil
	case errors.Is(err, ErrNotFound):
	default:
		return nil, fmt.Errorf("look up admin: %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.Create(ctx, email, hash)
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	s.log.Info("admin account created", zap.String("email", u.Email))
	return u, nil
}

// Authenticate returns the user when email and password match.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetByID returns a user by their UUID.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// IsNotFound returns true when the error indicates a user was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
