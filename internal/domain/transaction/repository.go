package transaction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for transaction data access.
// Every method is scoped to userID; rows owned by another user behave as missing.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Transaction, error)
	GetByID(ctx context.Context, userID, id string) (*Transaction, error)
	Update(ctx context.Context, userID, id string, params UpdateParams) (*Transaction, error)
	Delete(ctx context.Context, userID, id string) error

	// ListByTransferID returns the transactions linked to a transfer.
	ListByTransferID(ctx context.Context, userID, transferID string) ([]*Transaction, error)

	// List returns transactions newest first with category and account names joined in.
	List(ctx context.Context, userID string, filter ListFilter) ([]*TransactionWithNames, error)

	// NetByAccount returns Σincome - Σexpense over every transaction on the account.
	NetByAccount(ctx context.Context, userID, accountID string) (decimal.Decimal, error)

	// TotalsBetween sums income and expense with from <= date <= to.
	TotalsBetween(ctx context.Context, userID string, from, to time.Time) (Totals, error)

	// ExpenseByCategory sums expenses per category with from <= date <= to.
	ExpenseByCategory(ctx context.Context, userID string, from, to time.Time) (map[string]decimal.Decimal, error)
}
