package category

import (
	"context"
)

type Repository interface {
	// Create fails with ErrCategoryExists when the user already has the name.
	Create(ctx context.Context, params CreateParams) (*Category, error)

	// FindOrCreate returns the user's category with params.Name, creating it
	// if missing. Concurrent callers get the same row.
	FindOrCreate(ctx context.Context, params CreateParams) (*Category, error)

	GetByID(ctx context.Context, userID, id string) (*Category, error)
	ListByUserID(ctx context.Context, userID string) ([]*Category, error)
	Update(ctx context.Context, userID, id string, params UpdateParams) (*Category, error)

	// InUse reports whether transactions or recurring rules reference the category.
	InUse(ctx context.Context, userID, id string) (bool, error)
	Delete(ctx context.Context, userID, id string) error
}
