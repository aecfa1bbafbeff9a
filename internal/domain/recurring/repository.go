package recurring

import (
	"context"
	"time"
)

// Repository defines the interface for recurring rule data access
type Repository interface {
	// Create stores a rule with NextDate = StartDate
	Create(ctx context.Context, params CreateParams) (*Rule, error)

	GetByID(ctx context.Context, userID, id string) (*Rule, error)

	// ListByUserID returns the user's rules ordered by next date
	ListByUserID(ctx context.Context, userID string) ([]*Rule, error)

	Update(ctx context.Context, userID, id string, params UpdateParams) (*Rule, error)
	Delete(ctx context.Context, userID, id string) error

	// ListDue returns every rule, across all users, with next_date <= now
	ListDue(ctx context.Context, now time.Time) ([]*Rule, error)

	// ListDueByUser is ListDue restricted to one user
	ListDueByUser(ctx context.Context, userID string, now time.Time) ([]*Rule, error)

	// AdvanceNextDate moves next_date from prev to next. It reports false,
	// without error, when next_date no longer equals prev.
	AdvanceNextDate(ctx context.Context, userID, id string, prev, next time.Time) (bool, error)
}
