package account

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for account data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer.
// Every lookup filters by userID, so another user's account is reported as ErrAccountNotFound.
type Repository interface {
	// Create creates a new account with a null cached balance
	Create(ctx context.Context, params CreateParams) (*Account, error)

	// GetByID retrieves an account owned by userID
	GetByID(ctx context.Context, userID, id string) (*Account, error)

	// GetByIDForUpdate is GetByID plus a row lock held until the surrounding
	// unit of work ends. Outside a unit of work it behaves like GetByID.
	GetByIDForUpdate(ctx context.Context, userID, id string) (*Account, error)

	// ListByUserID retrieves all accounts for a user ordered by name
	ListByUserID(ctx context.Context, userID string) ([]*Account, error)

	// ListMissingBalance retrieves the user's accounts whose cached balance is null
	ListMissingBalance(ctx context.Context, userID string) ([]*Account, error)

	// ListUsersWithMissingBalance returns the ids of users owning at least one
	// account with a null cached balance
	ListUsersWithMissingBalance(ctx context.Context) ([]string, error)

	// Update applies the non-nil fields. A changed initial balance shifts a
	// non-null cached balance by the same difference.
	Update(ctx context.Context, userID, id string, params UpdateParams) (*Account, error)

	// FillBalance stores balance only if the cached balance is still null.
	FillBalance(ctx context.Context, userID, id string, balance decimal.Decimal) error

	// ClearBalances nulls every cached balance of the user and returns how
	// many accounts were affected.
	ClearBalances(ctx context.Context, userID string) (int, error)
	// ApplyDelta atomically adds delta to the cached balance. A null balance stays null.
	ApplyDelta(ctx context.Context, userID, id string, delta decimal.Decimal) error

	// InUse reports whether transactions or recurring rules reference the account
	InUse(ctx context.Context, userID, id string) (bool, error)

	// Delete removes an account
	Delete(ctx context.Context, userID, id string) error
}
