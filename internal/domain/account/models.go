package account

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/domain/transaction"
	"finanzas/internal/shared/apperr"
)

// Type is the kind of account the user keeps.
type Type string

const (
	TypeNormal    Type = "Normal"
	TypeAhorro    Type = "Ahorro"
	TypeInversion Type = "Inversión"
)

var accountTypes = map[Type]struct{}{
	TypeNormal:    {},
	TypeAhorro:    {},
	TypeInversion: {},
}

// Domain errors
var (
	ErrAccountNotFound    = fmt.Errorf("account %w", apperr.ErrNotFound)
	ErrInvalidAccountType = fmt.Errorf("account type must be Normal, Ahorro or Inversión: %w", apperr.ErrInvalidInput)
	ErrAccountInUse       = fmt.Errorf("account has transactions or recurring rules: %w", apperr.ErrConflict)
)

// Account represents a financial account domain entity.
//
// Balance is the cached projection initialBalance + net(transactions). It is
// null until first computed; see ledger.AvailableBalance.
type Account struct {
	ID             string              `json:"id"`
	UserID         string              `json:"userId"`
	Name           string              `json:"name"`
	Type           Type                `json:"type"`
	InitialBalance decimal.Decimal     `json:"initialBalance"`
	Balance        decimal.NullDecimal `json:"balance"`
	Bank           string              `json:"bank,omitempty"`
	Color          string              `json:"color,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// CreateParams contains parameters for creating a new account
type CreateParams struct {
	ID             string
	UserID         string
	Name           string
	Type           Type
	InitialBalance decimal.Decimal
	Bank           string
	Color          string
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.ID == "" {
		return errors.New("account ID is required")
	}
	if p.UserID == "" {
		return errors.New("user ID is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Invalid("account name is required")
	}
	if !IsValidAccountType(p.Type) {
		return ErrInvalidAccountType
	}
	if !transaction.FitsMoneyScale(p.InitialBalance) {
		return transaction.ErrAmountPrecision
	}
	return nil
}

// UpdateParams contains parameters for updating an account. Nil fields are left unchanged.
type UpdateParams struct {
	Name           *string
	Type           *Type
	InitialBalance *decimal.Decimal
	Bank           *string
	Color          *string
}

// Validate validates the update parameters
func (p UpdateParams) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperr.Invalid("account name cannot be empty")
	}
	if p.Type != nil && !IsValidAccountType(*p.Type) {
		return ErrInvalidAccountType
	}
	if p.InitialBalance != nil && !transaction.FitsMoneyScale(*p.InitialBalance) {
		return transaction.ErrAmountPrecision
	}
	return nil
}

// IsValidAccountType checks if the provided account type is valid.
func IsValidAccountType(t Type) bool {
	_, ok := accountTypes[t]
	return ok
}
