package user

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/shared/apperr"
)

type mockRepository struct {
	byID map[string]*User
}

func newMockRepository() *mockRepository {
	return &mockRepository{byID: map[string]*User{}}
}

func (m *mockRepository) Create(ctx context.Context, params CreateUserParams) (*User, error) {
	for _, u := range m.byID {
		if u.Email == params.Email {
			return nil, ErrEmailTaken
		}
	}
	u := &User{ID: params.ID, Email: params.Email, Name: params.Name, PasswordHash: params.PasswordHash}
	m.byID[u.ID] = u
	return u, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (m *mockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) Update(ctx context.Context, id string, params UpdateUserParams) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if params.Name != nil {
		u.Name = *params.Name
	}
	return u, nil
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "Ana@Example.com", "supersecret", nil},
		{"bad email", "nope", "supersecret", ErrInvalidEmail},
		{"short password", "ana@example.com", "short", apperr.ErrInvalidInput},
		{"long password", "ana@example.com", strings.Repeat("x", 73), apperr.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newMockRepository())

			u, err := svc.Register(context.Background(), tt.email, tt.password, " Ana ")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ana@example.com", u.Email)
			assert.Equal(t, "Ana", u.Name)
			assert.NotEqual(t, tt.password, u.PasswordHash)
			assert.NotEmpty(t, u.ID)
		})
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc := NewService(newMockRepository())
	_, err := svc.Register(context.Background(), "ana@example.com", "supersecret", "Ana")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "ANA@example.com", "supersecret", "Ana")

	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestService_Authenticate(t *testing.T) {
	svc := NewService(newMockRepository())
	registered, err := svc.Register(context.Background(), "ana@example.com", "supersecret", "Ana")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"valid", " ANA@example.com", "supersecret", false},
		{"wrong password", "ana@example.com", "wrongpass", true},
		{"unknown email", "bob@example.com", "supersecret", true},
		{"malformed email", "bob", "supersecret", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.Authenticate(context.Background(), tt.email, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.ID, u.ID)
		})
	}
}

func TestService_Update(t *testing.T) {
	svc := NewService(newMockRepository())
	u, err := svc.Register(context.Background(), "ana@example.com", "supersecret", "Ana")
	require.NoError(t, err)

	name := "  Ana María "
	updated, err := svc.Update(context.Background(), u.ID, UpdateUserParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.Name)

	long := strings.Repeat("a", 129)
	_, err = svc.Update(context.Background(), u.ID, UpdateUserParams{Name: &long})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.Update(context.Background(), "missing", UpdateUserParams{Name: &name})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
