package transaction

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/shared/apperr"
)

// Type is the direction of a transaction's effect on its account.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Valid reports whether t is income or expense.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Signed returns +amount for income and -amount for expense.
func (t Type) Signed(amount decimal.Decimal) decimal.Decimal {
	if t == TypeExpense {
		return amount.Neg()
	}
	return amount
}

// Nature classifies how a transaction came to be.
type Nature string

const (
	NaturePuntual        Nature = "Puntual"
	NatureRecurrente     Nature = "Recurrente"
	NatureExtraordinaria Nature = "Extraordinaria"
)

func (n Nature) Valid() bool {
	switch n {
	case NaturePuntual, NatureRecurrente, NatureExtraordinaria:
		return true
	}
	return false
}

// MoneyScale is the number of decimal places every amount is stored with.
const MoneyScale = 2

// FitsMoneyScale reports whether a is stored without rounding. Rounding one
// side of a balance update but not the other would make the cached balance
// drift from the sum of its transactions.
func FitsMoneyScale(a decimal.Decimal) bool {
	return a.Equal(a.Truncate(MoneyScale))
}

// Domain errors
var (
	ErrTransactionNotFound = fmt.Errorf("transaction %w", apperr.ErrNotFound)
	ErrInvalidType         = fmt.Errorf("type must be income or expense: %w", apperr.ErrInvalidInput)
	ErrInvalidNature       = fmt.Errorf("nature must be Puntual, Recurrente or Extraordinaria: %w", apperr.ErrInvalidInput)
	ErrInvalidAmount       = fmt.Errorf("amount must be greater than zero: %w", apperr.ErrInvalidInput)
	ErrAmountPrecision     = fmt.Errorf("amount cannot have more than %d decimal places: %w", MoneyScale, apperr.ErrInvalidInput)
	ErrLinkedToTransfer    = fmt.Errorf("transaction belongs to a transfer, delete the transfer instead: %w", apperr.ErrConflict)
)

type Transaction struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Type            Type            `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	CategoryID      string          `json:"categoryId"`
	AccountID       string          `json:"accountId"`
	Date            time.Time       `json:"date"`
	Nature          Nature          `json:"nature"`
	TransferID      string          `json:"transferId,omitempty"`
	RecurringRuleID string          `json:"recurringRuleId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// SignedAmount is the transaction's effect on its account balance.
func (t *Transaction) SignedAmount() decimal.Decimal {
	return t.Type.Signed(t.Amount)
}

// TransactionWithNames is the read model returned by listings, with the
// category and account names joined in.
type TransactionWithNames struct {
	Transaction
	CategoryName  string `json:"categoryName"`
	CategoryColor string `json:"categoryColor,omitempty"`
	AccountName   string `json:"accountName"`
}

// CreateParams contains parameters for creating a transaction
type CreateParams struct {
	ID              string
	UserID          string
	Type            Type
	Amount          decimal.Decimal
	Description     string
	CategoryID      string
	AccountID       string
	Date            time.Time
	Nature          Nature
	TransferID      string
	RecurringRuleID string
}

// Normalize trims text fields and fills the defaults a form submission may omit.
func (p *CreateParams) Normalize(now time.Time) {
	p.Description = strings.TrimSpace(p.Description)
	if p.Nature == "" {
		p.Nature = NaturePuntual
	}
	if p.Date.IsZero() {
		p.Date = now
	}
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.UserID == "" {
		return errors.New("user ID is required")
	}
	if err := validateFields(p.Type, p.Amount, p.Description, p.CategoryID, p.AccountID); err != nil {
		return err
	}
	if !p.Nature.Valid() {
		return ErrInvalidNature
	}
	return nil
}

func validateFields(typ Type, amount decimal.Decimal, description, categoryID, accountID string) error {
	if !typ.Valid() {
		return ErrInvalidType
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !FitsMoneyScale(amount) {
		return ErrAmountPrecision
	}
	if strings.TrimSpace(description) == "" {
		return apperr.Invalid("description is required")
	}
	if categoryID == "" {
		return apperr.Invalid("category is required")
	}
	if accountID == "" {
		return apperr.Invalid("account is required")
	}
	return nil
}

// UpdateParams replaces the editable fields of a transaction.
type UpdateParams struct {
	Type        Type
	Amount      decimal.Decimal
	Description string
	CategoryID  string
	AccountID   string
	Date        time.Time
	Nature      Nature
}

// Normalize trims text fields. An empty Nature is left empty and means the
// stored nature is kept.
func (p *UpdateParams) Normalize() {
	p.Description = strings.TrimSpace(p.Description)
}

// Validate validates the update parameters
func (p UpdateParams) Validate() error {
	if p.Date.IsZero() {
		return apperr.Invalid("date is required")
	}
	if err := validateFields(p.Type, p.Amount, p.Description, p.CategoryID, p.AccountID); err != nil {
		return err
	}
	if p.Nature != "" && !p.Nature.Valid() {
		return ErrInvalidNature
	}
	return nil
}

// ListFilter narrows a transaction listing. Zero values mean no restriction.
type ListFilter struct {
	Type        Type
	Search      string
	From        *time.Time
	To          *time.Time
	CategoryIDs []string
	AccountIDs  []string
	Limit       int
}

// Totals is the income and expense sum over a set of transactions.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Net returns income minus expense.
func (t Totals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}
