package account

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Service contains the business logic for account operations
type Service struct {
	repo Repository
}

// NewService creates a new account service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateAccount creates a new account with business validation
func (s *Service) CreateAccount(ctx context.Context, params CreateParams) (*Account, error) {
	if params.ID == "" {
		params.ID = uuid.NewString()
	}
	if params.Type == "" {
		params.Type = TypeNormal
	}
	params.Name = strings.TrimSpace(params.Name)

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, params)
}

// GetAccount retrieves an account owned by userID
func (s *Service) GetAccount(ctx context.Context, userID, accountID string) (*Account, error) {
	return s.repo.GetByID(ctx, userID, accountID)
}

// ListAccounts retrieves all accounts for a specific user
func (s *Service) ListAccounts(ctx context.Context, userID string) ([]*Account, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// UpdateAccount validates and applies a partial update
func (s *Service) UpdateAccount(ctx context.Context, userID, accountID string, params UpdateParams) (*Account, error) {
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		params.Name = &name
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, userID, accountID, params)
}

// DeleteAccount deletes an account that nothing references.
// Accounts with transactions or recurring rules return ErrAccountInUse.
func (s *Service) DeleteAccount(ctx context.Context, userID, accountID string) error {
	if _, err := s.repo.GetByID(ctx, userID, accountID); err != nil {
		return err
	}

	inUse, err := s.repo.InUse(ctx, userID, accountID)
	if err != nil {
		return err
	}
	if inUse {
		return ErrAccountInUse
	}

	return s.repo.Delete(ctx, userID, accountID)
}
