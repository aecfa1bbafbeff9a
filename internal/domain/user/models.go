package user

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"finanzas/internal/shared/apperr"
)

var (
	ErrUserNotFound       = fmt.Errorf("user %w", apperr.ErrNotFound)
	ErrEmailTaken         = fmt.Errorf("email already registered: %w", apperr.ErrConflict)
	ErrInvalidEmail       = fmt.Errorf("invalid email: %w", apperr.ErrInvalidInput)
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", apperr.ErrInvalidInput)
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateUserParams struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
}

type UpdateUserParams struct {
	Name *string
}

// NormalizeEmail lowercases and trims an address, rejecting malformed ones.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
