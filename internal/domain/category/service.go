package category

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateCategory(ctx context.Context, params CreateParams) (*Category, error) {
	if params.ID == "" {
		params.ID = uuid.NewString()
	}
	params.Name = strings.TrimSpace(params.Name)
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, params)
}

func (s *Service) GetCategory(ctx context.Context, userID, id string) (*Category, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *Service) ListCategories(ctx context.Context, userID string) ([]*Category, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *Service) UpdateCategory(ctx context.Context, userID, id string, params UpdateParams) (*Category, error) {
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		params.Name = &name
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, userID, id, params)
}

// DeleteCategory removes a category nothing references.
func (s *Service) DeleteCategory(ctx context.Context, userID, id string) error {
	if _, err := s.repo.GetByID(ctx, userID, id); err != nil {
		return err
	}

	inUse, err := s.repo.InUse(ctx, userID, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrCategoryInUse
	}

	return s.repo.Delete(ctx, userID, id)
}
