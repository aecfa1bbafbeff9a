package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"finanzas/internal/shared/apperr"
	"finanzas/internal/shared/auth"
)

// Service handles registration, login and profile updates.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password, name string) (*User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) || errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%v: %w", err, apperr.ErrInvalidInput)
		}
		return nil, err
	}

	return s.repo.Create(ctx, CreateUserParams{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
	})
}

// Authenticate returns the user matching the credentials. Unknown emails and
// wrong passwords give the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := auth.VerifyPassword(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, params UpdateUserParams) (*User, error) {
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if len(name) > 128 {
			return nil, apperr.Invalid("name must be 128 characters or less")
		}
		params.Name = &name
	}
	return s.repo.Update(ctx, id, params)
}
