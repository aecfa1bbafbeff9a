package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"finanzas/internal/domain/category"
	"finanzas/internal/domain/transaction"
	"finanzas/internal/domain/transfer"
	"finanzas/internal/shared/logger"
)

// ExecuteTransfer moves money between two accounts of the user. The transfer
// record, its two transactions and both balance changes are written together
// or not at all.
func (s *Service) ExecuteTransfer(ctx context.Context, userID string, params transfer.CreateParams) (*transfer.Transfer, error) {
	params.UserID = userID
	params.Description = strings.TrimSpace(params.Description)
	if params.ID == "" {
		params.ID = uuid.NewString()
	}
	if params.Date.IsZero() {
		params.Date = s.now()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var (
		created          *transfer.Transfer
		fromName, toName string
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repositories) error {
		locked, err := lockAccounts(ctx, r, userID, params.FromAccountID, params.ToAccountID)
		if err != nil {
			return err
		}
		from, to := locked[params.FromAccountID], locked[params.ToAccountID]

		cat, err := r.Categories.FindOrCreate(ctx, category.CreateParams{
			ID:     uuid.NewString(),
			UserID: userID,
			Name:   category.TransferName,
			Type:   transaction.TypeExpense,
			Color:  category.TransferColor,
		})
		if err != nil {
			return fmt.Errorf("failed to resolve transfer category: %w", err)
		}

		tr, err := r.Transfers.Create(ctx, params)
		if err != nil {
			return err
		}

		legs := []transaction.CreateParams{
			{
				Type:        transaction.TypeExpense,
				Description: "Transferencia a " + to.Name,
				AccountID:   from.ID,
			},
			{
				Type:        transaction.TypeIncome,
				Description: "Transferencia desde " + from.Name,
				AccountID:   to.ID,
			},
		}
		for _, leg := range legs {
			leg.ID = uuid.NewString()
			leg.UserID = userID
			leg.Amount = params.Amount
			leg.CategoryID = cat.ID
			leg.Date = params.Date
			leg.Nature = transaction.NaturePuntual
			leg.TransferID = tr.ID

			if _, err := r.Transactions.Create(ctx, leg); err != nil {
				return err
			}
			if err := ApplyTransactionDelta(ctx, r, userID, leg.AccountID, leg.Type, leg.Amount); err != nil {
				return err
			}
		}

		created = tr
		fromName, toName = from.Name, to.Name
		return nil
	})
	if err != nil {
		return nil, err
	}

	transfersExecuted.Add(ctx, 1)
	if s.notifier != nil {
		if err := s.notifier.NotifyTransferExecuted(ctx, created, fromName, toName); err != nil {
			log := logger.FromContext(ctx, s.log)
			log.Warn().Err(err).Str("transfer_id", created.ID).Msg("failed to notify transfer")
		}
	}
	return created, nil
}

// DeleteTransfer removes a transfer together with its two transactions and
// reverses both balance changes.
func (s *Service) DeleteTransfer(ctx context.Context, userID, transferID string) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, r Repositories) error {
		tr, err := r.Transfers.GetByID(ctx, userID, transferID)
		if err != nil {
			return err
		}
		if _, err := lockAccounts(ctx, r, userID, tr.FromAccountID, tr.ToAccountID); err != nil {
			return err
		}

		legs, err := r.Transactions.ListByTransferID(ctx, userID, tr.ID)
		if err != nil {
			return err
		}
		for _, leg := range legs {
			if err := r.Transactions.Delete(ctx, userID, leg.ID); err != nil {
				return err
			}
			if err := r.Accounts.ApplyDelta(ctx, userID, leg.AccountID, leg.SignedAmount().Neg()); err != nil {
				return err
			}
		}
		return r.Transfers.Delete(ctx, userID, tr.ID)
	})
}

// ListTransfers returns the user's transfers newest first.
func (s *Service) ListTransfers(ctx context.Context, userID string) ([]*transfer.TransferWithNames, error) {
	return s.store.Repos().Transfers.ListByUserID(ctx, userID)
}
