package recurring

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/domain/transaction"
	"finanzas/internal/shared/apperr"
)

// Frequency is how often a rule fires.
type Frequency string

const (
	FrequencyDiaria  Frequency = "diaria"
	FrequencySemanal Frequency = "semanal"
	FrequencyMensual Frequency = "mensual"
	FrequencyAnual   Frequency = "anual"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDiaria, FrequencySemanal, FrequencyMensual, FrequencyAnual:
		return true
	}
	return false
}

// DescriptionPrefix marks transactions materialized from a rule.
const DescriptionPrefix = "(Recurrente) "

var (
	ErrRuleNotFound     = fmt.Errorf("recurring rule %w", apperr.ErrNotFound)
	ErrInvalidFrequency = fmt.Errorf("frequency must be diaria, semanal, mensual or anual: %w", apperr.ErrInvalidInput)
)

// Rule produces one transaction each time NextDate comes due.
type Rule struct {
	ID          string           `json:"id"`
	UserID      string           `json:"-"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Type        transaction.Type `json:"type"`
	Frequency   Frequency        `json:"frequency"`
	StartDate   time.Time        `json:"startDate"`
	NextDate    time.Time        `json:"nextDate"`
	CategoryID  string           `json:"categoryId"`
	AccountID   string           `json:"accountId"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Due reports whether the rule should fire at now.
func (r *Rule) Due(now time.Time) bool {
	return !r.NextDate.After(now)
}

// CreateParams contains the parameters for creating a rule.
// NextDate starts equal to StartDate.
type CreateParams struct {
	ID          string
	UserID      string
	Description string
	Amount      decimal.Decimal
	Type        transaction.Type
	Frequency   Frequency
	StartDate   time.Time
	CategoryID  string
	AccountID   string
}

func (p *CreateParams) Validate() error {
	if p.ID == "" {
		return errors.New("rule ID is required")
	}
	if p.UserID == "" {
		return errors.New("user ID is required")
	}
	if strings.TrimSpace(p.Description) == "" {
		return apperr.Invalid("description is required")
	}
	if !p.Amount.IsPositive() {
		return transaction.ErrInvalidAmount
	}
	if !transaction.FitsMoneyScale(p.Amount) {
		return transaction.ErrAmountPrecision
	}
	if !p.Type.Valid() {
		return transaction.ErrInvalidType
	}
	if !p.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if p.StartDate.IsZero() {
		return apperr.Invalid("start date is required")
	}
	if p.CategoryID == "" {
		return apperr.Invalid("category is required")
	}
	if p.AccountID == "" {
		return apperr.Invalid("account is required")
	}
	return nil
}

// UpdateParams contains the editable fields of a rule. Nil fields are left unchanged.
// Changing NextDate reschedules the rule; StartDate is history and cannot change.
type UpdateParams struct {
	Description *string
	Amount      *decimal.Decimal
	Type        *transaction.Type
	Frequency   *Frequency
	NextDate    *time.Time
	CategoryID  *string
	AccountID   *string
}

func (p *UpdateParams) Validate() error {
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return apperr.Invalid("description cannot be empty")
	}
	if p.Amount != nil && !p.Amount.IsPositive() {
		return transaction.ErrInvalidAmount
	}
	if p.Amount != nil && !transaction.FitsMoneyScale(*p.Amount) {
		return transaction.ErrAmountPrecision
	}
	if p.Type != nil && !p.Type.Valid() {
		return transaction.ErrInvalidType
	}
	if p.Frequency != nil && !p.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if p.NextDate != nil && p.NextDate.IsZero() {
		return apperr.Invalid("next date cannot be empty")
	}
	return nil
}

// Totals sums the amounts of monthly and yearly rules by type.
type Totals struct {
	MonthlyIncome  decimal.Decimal `json:"monthlyIncome"`
	MonthlyExpense decimal.Decimal `json:"monthlyExpense"`
	AnnualIncome   decimal.Decimal `json:"annualIncome"`
	AnnualExpense  decimal.Decimal `json:"annualExpense"`
}

// Summarize totals rules the way the dashboard reports them. Daily and weekly
// rules are not part of either total.
func Summarize(rules []*Rule) Totals {
	var t Totals
	for _, r := range rules {
		switch {
		case r.Frequency == FrequencyMensual && r.Type == transaction.TypeIncome:
			t.MonthlyIncome = t.MonthlyIncome.Add(r.Amount)
		case r.Frequency == FrequencyMensual && r.Type == transaction.TypeExpense:
			t.MonthlyExpense = t.MonthlyExpense.Add(r.Amount)
		case r.Frequency == FrequencyAnual && r.Type == transaction.TypeIncome:
			t.AnnualIncome = t.AnnualIncome.Add(r.Amount)
		case r.Frequency == FrequencyAnual && r.Type == transaction.TypeExpense:
			t.AnnualExpense = t.AnnualExpense.Add(r.Amount)
		}
	}
	return t
}
