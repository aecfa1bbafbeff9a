package transfer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/domain/transaction"
	"finanzas/internal/shared/apperr"
)

var (
	ErrTransferNotFound = fmt.Errorf("transfer %w", apperr.ErrNotFound)
	ErrSameAccount      = fmt.Errorf("source and destination accounts must differ: %w", apperr.ErrInvalidInput)
	ErrInvalidAmount    = fmt.Errorf("transfer amount must be greater than zero: %w", apperr.ErrInvalidInput)
)

// Transfer records one movement of money between two accounts of the same
// user. It always has exactly two transactions carrying its ID.
type Transfer struct {
	ID            string          `json:"id"`
	UserID        string          `json:"-"`
	FromAccountID string          `json:"fromAccountId"`
	ToAccountID   string          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Date          time.Time       `json:"date"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// TransferWithNames is the listing read model with both account names joined in.
type TransferWithNames struct {
	Transfer
	FromAccountName string `json:"fromAccountName"`
	ToAccountName   string `json:"toAccountName"`
}

type CreateParams struct {
	ID            string
	UserID        string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Description   string
	Date          time.Time
}

// Validate checks the parameters that can be rejected before touching storage.
func (p CreateParams) Validate() error {
	if p.UserID == "" {
		return errors.New("user ID is required")
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !transaction.FitsMoneyScale(p.Amount) {
		return transaction.ErrAmountPrecision
	}
	if p.FromAccountID == "" || p.ToAccountID == "" {
		return apperr.Invalid("both accounts are required")
	}
	if p.FromAccountID == p.ToAccountID {
		return ErrSameAccount
	}
	if len(strings.TrimSpace(p.Description)) > 255 {
		return apperr.Invalid("description must be 255 characters or less")
	}
	return nil
}
