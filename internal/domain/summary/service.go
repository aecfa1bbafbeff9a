// Package summary computes the read-only aggregates shown on the dashboard:
// balances, monthly totals, budgets and recurring commitments.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/domain/account"
	"finanzas/internal/domain/category"
	"finanzas/internal/domain/ledger"
	"finanzas/internal/domain/recurring"
	"finanzas/internal/domain/transaction"
)

// overviewMonths is how many calendar months the overview chart covers,
// the current one included.
const overviewMonths = 6

var monthNames = [...]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

// Balances lists accounts with their available balance, repairing empty
// caches first. Implemented by *ledger.Service.
type Balances interface {
	ListAccountBalances(ctx context.Context, userID string) ([]ledger.AccountBalance, error)
}

type AccountSummary struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Type    account.Type    `json:"type"`
	Balance decimal.Decimal `json:"balance"`
}

type Dashboard struct {
	TotalBalance    decimal.Decimal  `json:"totalBalance"`
	TotalSavings    decimal.Decimal  `json:"totalSavings"`
	MonthlyBalance  decimal.Decimal  `json:"monthlyBalance"`
	MonthlyIncome   decimal.Decimal  `json:"monthlyIncome"`
	MonthlyExpense  decimal.Decimal  `json:"monthlyExpense"`
	Accounts        []AccountSummary `json:"accountBalances"`
	RecurringTotals recurring.Totals `json:"recurringTotals"`
}

// BudgetLine is the current month's spending against one category budget.
type BudgetLine struct {
	CategoryID string          `json:"categoryId"`
	Name       string          `json:"name"`
	Color      string          `json:"color,omitempty"`
	Budget     decimal.Decimal `json:"budget"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
}

type CategoryTotal struct {
	CategoryID string          `json:"categoryId"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
}

type MonthTotals struct {
	Year    int             `json:"year"`
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"ingresos"`
	Expense decimal.Decimal `json:"gastos"`
}

type Overview struct {
	ExpensesByCategory []CategoryTotal `json:"expensesByCategory"`
	MonthlyBalances    []MonthTotals   `json:"monthlyBalances"`
}

type Service struct {
	balances     Balances
	transactions transaction.Repository
	categories   category.Repository
	rules        recurring.Repository
	now          func() time.Time
}

func NewService(balances Balances, transactions transaction.Repository, categories category.Repository, rules recurring.Repository) *Service {
	return &Service{
		balances:     balances,
		transactions: transactions,
		categories:   categories,
		rules:        rules,
		now:          time.Now,
	}
}

// Dashboard returns the headline figures for the user. Balance caches are
// repaired on the way, so totals always reflect the full history.
func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	accounts, err := s.balances.ListAccountBalances(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account balances: %w", err)
	}

	d := &Dashboard{Accounts: make([]AccountSummary, 0, len(accounts))}
	for _, acc := range accounts {
		d.TotalBalance = d.TotalBalance.Add(acc.Available)
		if acc.Type == account.TypeAhorro {
			d.TotalSavings = d.TotalSavings.Add(acc.Available)
		}
		d.Accounts = append(d.Accounts, AccountSummary{ID: acc.ID, Name: acc.Name, Type: acc.Type, Balance: acc.Available})
	}

	from, to := monthBounds(s.now())
	totals, err := s.transactions.TotalsBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly transactions: %w", err)
	}
	d.MonthlyIncome = totals.Income
	d.MonthlyExpense = totals.Expense
	d.MonthlyBalance = totals.Net()

	rules, err := s.rules.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring rules: %w", err)
	}
	d.RecurringTotals = recurring.Summarize(rules)

	return d, nil
}

// Budgets reports the current month's expenses for every category with a
// positive budget, ordered by category name.
func (s *Service) Budgets(ctx context.Context, userID string) ([]BudgetLine, error) {
	cats, err := s.categories.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	from, to := monthBounds(s.now())
	spent, err := s.transactions.ExpenseByCategory(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}

	lines := []BudgetLine{}
	for _, c := range cats {
		if !c.Budget.IsPositive() {
			continue
		}
		used := spent[c.ID]
		lines = append(lines, BudgetLine{
			CategoryID: c.ID,
			Name:       c.Name,
			Color:      c.Color,
			Budget:     c.Budget,
			Spent:      used,
			Remaining:  c.Budget.Sub(used),
		})
	}
	return lines, nil
}

// Overview returns this month's expenses per category and the income and
// expense totals of the last six calendar months, oldest first.
func (s *Service) Overview(ctx context.Context, userID string) (*Overview, error) {
	now := s.now()
	from, to := monthBounds(now)

	spent, err := s.transactions.ExpenseByCategory(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}
	cats, err := s.categories.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	out := &Overview{ExpensesByCategory: []CategoryTotal{}}
	for _, c := range cats {
		if total, ok := spent[c.ID]; ok {
			out.ExpensesByCategory = append(out.ExpensesByCategory, CategoryTotal{CategoryID: c.ID, Name: c.Name, Total: total})
		}
	}

	for i := overviewMonths - 1; i >= 0; i-- {
		start, end := monthBounds(from.AddDate(0, -i, 0))
		totals, err := s.transactions.TotalsBetween(ctx, userID, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to sum month %s: %w", start.Format("2006-01"), err)
		}
		out.MonthlyBalances = append(out.MonthlyBalances, MonthTotals{
			Year:    start.Year(),
			Month:   monthNames[start.Month()-1],
			Income:  totals.Income,
			Expense: totals.Expense,
		})
	}
	return out, nil
}

// monthBounds returns the first and last instant of t's calendar month.
func monthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
}
