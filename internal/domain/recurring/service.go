package recurring

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"finanzas/internal/domain/account"
	"finanzas/internal/domain/category"
)

// AccountLookup is the slice of account.Repository the service needs.
type AccountLookup interface {
	GetByID(ctx context.Context, userID, id string) (*account.Account, error)
}

// CategoryLookup is the slice of category.Repository the service needs.
type CategoryLookup interface {
	GetByID(ctx context.Context, userID, id string) (*category.Category, error)
}

// Service handles rule management. Due rules are fired by
// ledger.Service.ProcessDueRecurringRules.
type Service struct {
	repo       Repository
	accounts   AccountLookup
	categories CategoryLookup
}

func NewService(repo Repository, accounts AccountLookup, categories CategoryLookup) *Service {
	return &Service{repo: repo, accounts: accounts, categories: categories}
}

func (s *Service) CreateRule(ctx context.Context, params CreateParams) (*Rule, error) {
	if params.ID == "" {
		params.ID = uuid.NewString()
	}
	params.Description = strings.TrimSpace(params.Description)
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, params.UserID, params.AccountID, params.CategoryID); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, params)
}

func (s *Service) GetRule(ctx context.Context, userID, id string) (*Rule, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *Service) ListRules(ctx context.Context, userID string) ([]*Rule, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *Service) UpdateRule(ctx context.Context, userID, id string, params UpdateParams) (*Rule, error) {
	if params.Description != nil {
		d := strings.TrimSpace(*params.Description)
		params.Description = &d
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var accountID, categoryID string
	if params.AccountID != nil {
		accountID = *params.AccountID
	}
	if params.CategoryID != nil {
		categoryID = *params.CategoryID
	}
	if err := s.checkRefs(ctx, userID, accountID, categoryID); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, userID, id, params)
}

func (s *Service) DeleteRule(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// Totals reports the monthly and yearly recurring commitments of a user.
func (s *Service) Totals(ctx context.Context, userID string) (Totals, error) {
	rules, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return Totals{}, fmt.Errorf("failed to list recurring rules: %w", err)
	}
	return Summarize(rules), nil
}

// checkRefs verifies the referenced account and category belong to userID.
// Empty ids are skipped.
func (s *Service) checkRefs(ctx context.Context, userID, accountID, categoryID string) error {
	if accountID != "" {
		if _, err := s.accounts.GetByID(ctx, userID, accountID); err != nil {
			return err
		}
	}
	if categoryID != "" {
		if _, err := s.categories.GetByID(ctx, userID, categoryID); err != nil {
			return err
		}
	}
	return nil
}
