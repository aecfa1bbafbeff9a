package category

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/domain/transaction"
	"finanzas/internal/shared/apperr"
)

// TransferName is the category every transfer transaction is filed under.
const (
	TransferName  = "Transferencia"
	TransferColor = "#64748b"
)

var (
	ErrCategoryNotFound = fmt.Errorf("category %w", apperr.ErrNotFound)
	ErrCategoryExists   = fmt.Errorf("a category with this name already exists: %w", apperr.ErrConflict)
	ErrCategoryInUse    = fmt.Errorf("category is used by transactions or recurring rules: %w", apperr.ErrConflict)
)

type Category struct {
	ID        string           `json:"id"`
	UserID    string           `json:"-"`
	Name      string           `json:"name"`
	Type      transaction.Type `json:"type"`
	Icon      string           `json:"icon,omitempty"`
	Color     string           `json:"color,omitempty"`
	Budget    decimal.Decimal  `json:"budget"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type CreateParams struct {
	ID     string
	UserID string
	Name   string
	Type   transaction.Type
	Icon   string
	Color  string
	Budget decimal.Decimal
}

func (p *CreateParams) Validate() error {
	if p.ID == "" {
		return errors.New("category ID is required")
	}
	if p.UserID == "" {
		return errors.New("user ID is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Invalid("name is required")
	}
	if len(p.Name) > 128 {
		return apperr.Invalid("name must be 128 characters or less")
	}
	if !p.Type.Valid() {
		return transaction.ErrInvalidType
	}
	if len(p.Color) > 12 {
		return apperr.Invalid("color must be 12 characters or less")
	}
	if p.Budget.IsNegative() {
		return apperr.Invalid("budget cannot be negative")
	}
	if !transaction.FitsMoneyScale(p.Budget) {
		return transaction.ErrAmountPrecision
	}
	return nil
}

type UpdateParams struct {
	Name   *string
	Type   *transaction.Type
	Icon   *string
	Color  *string
	Budget *decimal.Decimal
}

func (p *UpdateParams) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperr.Invalid("name cannot be empty")
	}
	if p.Name != nil && len(*p.Name) > 128 {
		return apperr.Invalid("name must be 128 characters or less")
	}
	if p.Type != nil && !p.Type.Valid() {
		return transaction.ErrInvalidType
	}
	if p.Color != nil && len(*p.Color) > 12 {
		return apperr.Invalid("color must be 12 characters or less")
	}
	if p.Budget != nil && p.Budget.IsNegative() {
		return apperr.Invalid("budget cannot be negative")
	}
	if p.Budget != nil && !transaction.FitsMoneyScale(*p.Budget) {
		return transaction.ErrAmountPrecision
	}
	return nil
}
