package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/domain/transaction"
)

type transactionRepo struct{ binding }

func (r *transactionRepo) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	now := r.now()
	tx := &transaction.Transaction{
		ID:              params.ID,
		UserID:          params.UserID,
		Type:            params.Type,
		Amount:          params.Amount,
		Description:     params.Description,
		CategoryID:      params.CategoryID,
		AccountID:       params.AccountID,
		Date:            params.Date,
		Nature:          params.Nature,
		TransferID:      params.TransferID,
		RecurringRuleID: params.RecurringRuleID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err := r.do(func(st *state) error {
		st.transactions[tx.ID] = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	cp := *tx
	return &cp, nil
}

func (r *transactionRepo) GetByID(ctx context.Context, userID, id string) (*transaction.Transaction, error) {
	var out *transaction.Transaction
	err := r.do(func(st *state) error {
		tx, err := ownedTransaction(st, userID, id)
		if err != nil {
			return err
		}
		cp := *tx
		out = &cp
		return nil
	})
	return out, err
}

func (r *transactionRepo) Update(ctx context.Context, userID, id string, params transaction.UpdateParams) (*transaction.Transaction, error) {
	var out *transaction.Transaction
	err := r.do(func(st *state) error {
		tx, err := ownedTransaction(st, userID, id)
		if err != nil {
			return err
		}
		tx.Type = params.Type
		tx.Amount = params.Amount
		tx.Description = params.Description
		tx.CategoryID = params.CategoryID
		tx.AccountID = params.AccountID
		tx.Date = params.Date
		tx.Nature = params.Nature
		tx.UpdatedAt = r.now()
		cp := *tx
		out = &cp
		return nil
	})
	return out, err
}

func (r *transactionRepo) Delete(ctx context.Context, userID, id string) error {
	return r.do(func(st *state) error {
		if _, err := ownedTransaction(st, userID, id); err != nil {
			return err
		}
		delete(st.transactions, id)
		return nil
	})
}

func (r *transactionRepo) ListByTransferID(ctx context.Context, userID, transferID string) ([]*transaction.Transaction, error) {
	var out []*transaction.Transaction
	err := r.do(func(st *state) error {
		for _, tx := range st.transactions {
			if tx.UserID == userID && tx.TransferID == transferID {
				cp := *tx
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *transactionRepo) List(ctx context.Context, userID string, filter transaction.ListFilter) ([]*transaction.TransactionWithNames, error) {
	var out []*transaction.TransactionWithNames
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	err := r.do(func(st *state) error {
		for _, tx := range st.transactions {
			if tx.UserID != userID || !matches(tx, filter, search) {
				continue
			}
			row := &transaction.TransactionWithNames{Transaction: *tx}
			if c, ok := st.categories[tx.CategoryID]; ok {
				row.CategoryName = c.Name
				row.CategoryColor = c.Color
			}
			if a, ok := st.accounts[tx.AccountID]; ok {
				row.AccountName = a.Name
			}
			out = append(out, row)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, err
}

func matches(tx *transaction.Transaction, f transaction.ListFilter, search string) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if search != "" && !strings.Contains(strings.ToLower(tx.Description), search) {
		return false
	}
	if f.From != nil && tx.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && tx.Date.After(*f.To) {
		return false
	}
	if len(f.CategoryIDs) > 0 && !slices.Contains(f.CategoryIDs, tx.CategoryID) {
		return false
	}
	if len(f.AccountIDs) > 0 && !slices.Contains(f.AccountIDs, tx.AccountID) {
		return false
	}
	return true
}

func (r *transactionRepo) NetByAccount(ctx context.Context, userID, accountID string) (decimal.Decimal, error) {
	net := decimal.Zero
	err := r.do(func(st *state) error {
		for _, tx := range st.transactions {
			if tx.UserID == userID && tx.AccountID == accountID {
				net = net.Add(tx.SignedAmount())
			}
		}
		return nil
	})
	return net, err
}

func (r *transactionRepo) TotalsBetween(ctx context.Context, userID string, from, to time.Time) (transaction.Totals, error) {
	totals := transaction.Totals{Income: decimal.Zero, Expense: decimal.Zero}
	err := r.do(func(st *state) error {
		for _, tx := range st.transactions {
			if tx.UserID != userID || tx.Date.Before(from) || tx.Date.After(to) {
				continue
			}
			if tx.Type == transaction.TypeIncome {
				totals.Income = totals.Income.Add(tx.Amount)
			} else {
				totals.Expense = totals.Expense.Add(tx.Amount)
			}
		}
		return nil
	})
	return totals, err
}

func (r *transactionRepo) ExpenseByCategory(ctx context.Context, userID string, from, to time.Time) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	err := r.do(func(st *state) error {
		for _, tx := range st.transactions {
			if tx.UserID != userID || tx.Type != transaction.TypeExpense || tx.Date.Before(from) || tx.Date.After(to) {
				continue
			}
			out[tx.CategoryID] = out[tx.CategoryID].Add(tx.Amount)
		}
		return nil
	})
	return out, err
}

func ownedTransaction(st *state, userID, id string) (*transaction.Transaction, error) {
	tx, ok := st.transactions[id]
	if !ok || tx.UserID != userID {
		return nil, transaction.ErrTransactionNotFound
	}
	return tx, nil
}
