package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finanzas/internal/domain/transaction"
	"finanzas/internal/shared/apperr"
)

// PostTransaction records a user-entered transaction and its balance effect.
// An expense larger than the available balance is rejected with
// apperr.InsufficientFundsError before anything is written.
func (s *Service) PostTransaction(ctx context.Context, userID string, params transaction.CreateParams) (*transaction.Transaction, error) {
	params.UserID = userID
	params.TransferID = ""
	params.RecurringRuleID = ""
	if params.ID == "" {
		params.ID = uuid.NewString()
	}
	params.Normalize(s.now())
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var created *transaction.Transaction
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repositories) error {
		available, err := availableBalance(ctx, r, userID, params.AccountID)
		if err != nil {
			return err
		}
		if _, err := r.Categories.GetByID(ctx, userID, params.CategoryID); err != nil {
			return err
		}
		if err := checkFunds(params.Type, params.Amount, available); err != nil {
			return err
		}

		tx, err := r.Transactions.Create(ctx, params)
		if err != nil {
			return err
		}
		if err := ApplyTransactionDelta(ctx, r, userID, tx.AccountID, tx.Type, tx.Amount); err != nil {
			return err
		}
		created = tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	transactionsPosted.Add(ctx, 1)
	return created, nil
}

// UpdateTransaction replaces a transaction's fields. The old effect is
// reversed on the old account and the new effect applied on the new one.
// Transactions belonging to a transfer cannot be edited on their own.
func (s *Service) UpdateTransaction(ctx context.Context, userID, id string, params transaction.UpdateParams) (*transaction.Transaction, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var updated *transaction.Transaction
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repositories) error {
		old, err := r.Transactions.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}
		if old.TransferID != "" {
			return transaction.ErrLinkedToTransfer
		}
		if params.Nature == "" {
			params.Nature = old.Nature
		}

		locked, err := lockAccounts(ctx, r, userID, old.AccountID, params.AccountID)
		if err != nil {
			return err
		}
		if _, err := r.Categories.GetByID(ctx, userID, params.CategoryID); err != nil {
			return err
		}
		for _, acc := range locked {
			if _, err := ensureBalance(ctx, r, acc); err != nil {
				return err
			}
		}

		// funds available to the edited transaction exclude its own old effect
		available := locked[params.AccountID].Balance.Decimal
		if params.AccountID == old.AccountID {
			available = available.Sub(old.SignedAmount())
		}
		if err := checkFunds(params.Type, params.Amount, available); err != nil {
			return err
		}

		tx, err := r.Transactions.Update(ctx, userID, id, params)
		if err != nil {
			return err
		}
		if err := r.Accounts.ApplyDelta(ctx, userID, old.AccountID, old.SignedAmount().Neg()); err != nil {
			return err
		}
		if err := ApplyTransactionDelta(ctx, r, userID, tx.AccountID, tx.Type, tx.Amount); err != nil {
			return err
		}
		updated = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTransaction removes a transaction and reverses its balance effect.
// Transfer legs must be removed through DeleteTransfer.
func (s *Service) DeleteTransaction(ctx context.Context, userID, id string) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, r Repositories) error {
		old, err := r.Transactions.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}
		if old.TransferID != "" {
			return transaction.ErrLinkedToTransfer
		}
		if _, err := r.Accounts.GetByIDForUpdate(ctx, userID, old.AccountID); err != nil {
			return err
		}
		if err := r.Transactions.Delete(ctx, userID, id); err != nil {
			return err
		}
		return r.Accounts.ApplyDelta(ctx, userID, old.AccountID, old.SignedAmount().Neg())
	})
}

// GetTransaction returns one transaction of the user.
func (s *Service) GetTransaction(ctx context.Context, userID, id string) (*transaction.Transaction, error) {
	return s.store.Repos().Transactions.GetByID(ctx, userID, id)
}

// ListTransactions returns the user's transactions newest first.
func (s *Service) ListTransactions(ctx context.Context, userID string, filter transaction.ListFilter) ([]*transaction.TransactionWithNames, error) {
	if filter.Limit < 0 {
		return nil, apperr.Invalid("limit cannot be negative")
	}
	return s.store.Repos().Transactions.List(ctx, userID, filter)
}

func checkFunds(typ transaction.Type, amount, available decimal.Decimal) error {
	if typ == transaction.TypeExpense && amount.GreaterThan(available) {
		return &apperr.InsufficientFundsError{Available: available, Requested: amount}
	}
	return nil
}
