package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"finanzas/internal/domain/account"
	"finanzas/internal/domain/transaction"
	"finanzas/internal/shared/logger"
)

// AccountBalance pairs an account with its available balance.
type AccountBalance struct {
	*account.Account
	Available decimal.Decimal `json:"availableBalance"`
}

// AvailableBalance returns the cached balance of the account. When the cache
// is empty it is computed from the full transaction history and persisted,
// under a row lock so a concurrent posting cannot slip in between.
func (s *Service) AvailableBalance(ctx context.Context, userID, accountID string) (decimal.Decimal, error) {
	acc, err := s.store.Repos().Accounts.GetByID(ctx, userID, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if acc.Balance.Valid {
		return acc.Balance.Decimal, nil
	}

	var balance decimal.Decimal
	err = s.store.WithinTx(ctx, func(ctx context.Context, r Repositories) error {
		balance, err = availableBalance(ctx, r, userID, accountID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// ApplyTransactionDelta adds the signed effect of a transaction to the
// account's cached balance.
func ApplyTransactionDelta(ctx context.Context, r Repositories, userID, accountID string, typ transaction.Type, amount decimal.Decimal) error {
	if err := r.Accounts.ApplyDelta(ctx, userID, accountID, typ.Signed(amount)); err != nil {
		return fmt.Errorf("failed to apply balance delta: %w", err)
	}
	return nil
}

// RecalculateMissingBalances fills every empty balance cache of the user.
// Failures are logged and skipped; the result is how many were filled.
func (s *Service) RecalculateMissingBalances(ctx context.Context, userID string) int {
	log := logger.FromContext(ctx, s.log)

	accounts, err := s.store.Repos().Accounts.ListMissingBalance(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to list accounts missing a balance")
		return 0
	}

	updated := 0
	for _, acc := range accounts {
		if _, err := s.AvailableBalance(ctx, userID, acc.ID); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Str("account_id", acc.ID).Msg("failed to recalculate balance")
			continue
		}
		updated++
	}
	if updated > 0 {
		log.Info().Str("user_id", userID).Int("updated", updated).Msg("recalculated missing balances")
	}
	return updated
}

// UsersWithMissingBalance lists users owning at least one account whose
// balance cache is empty.
func (s *Service) UsersWithMissingBalance(ctx context.Context) ([]string, error) {
	return s.store.Repos().Accounts.ListUsersWithMissingBalance(ctx)
}

// RebuildBalances discards every cached balance of the user and recomputes
// them from the transaction history.
func (s *Service) RebuildBalances(ctx context.Context, userID string) (int, error) {
	if _, err := s.store.Repos().Accounts.ClearBalances(ctx, userID); err != nil {
		return 0, fmt.Errorf("failed to clear balances: %w", err)
	}
	return s.RecalculateMissingBalances(ctx, userID), nil
}

// ListAccountBalances repairs missing balances and returns every account of
// the user with its available balance, ordered by name.
func (s *Service) ListAccountBalances(ctx context.Context, userID string) ([]AccountBalance, error) {
	s.RecalculateMissingBalances(ctx, userID)

	accounts, err := s.store.Repos().Accounts.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]AccountBalance, 0, len(accounts))
	for _, acc := range accounts {
		available := acc.Balance.Decimal
		if !acc.Balance.Valid {
			// repair failed above; derive without persisting
			net, err := s.store.Repos().Transactions.NetByAccount(ctx, userID, acc.ID)
			if err != nil {
				return nil, err
			}
			available = acc.InitialBalance.Add(net)
		}
		out = append(out, AccountBalance{Account: acc, Available: available})
	}
	return out, nil
}

// availableBalance locks the account and returns its balance, filling the
// cache when empty. Must run inside a unit of work.
func availableBalance(ctx context.Context, r Repositories, userID, accountID string) (decimal.Decimal, error) {
	acc, err := r.Accounts.GetByIDForUpdate(ctx, userID, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return ensureBalance(ctx, r, acc)
}

// ensureBalance expects acc to be locked by the current unit of work.
func ensureBalance(ctx context.Context, r Repositories, acc *account.Account) (decimal.Decimal, error) {
	if acc.Balance.Valid {
		return acc.Balance.Decimal, nil
	}
	net, err := r.Transactions.NetByAccount(ctx, acc.UserID, acc.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}
	balance := acc.InitialBalance.Add(net)
	if err := r.Accounts.FillBalance(ctx, acc.UserID, acc.ID, balance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to store balance: %w", err)
	}
	acc.Balance = decimal.NewNullDecimal(balance)
	return balance, nil
}

// lockAccounts locks the given accounts in id order so two units of work
// touching the same pair never wait on each other in a cycle.
func lockAccounts(ctx context.Context, r Repositories, userID string, ids ...string) (map[string]*account.Account, error) {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	locked := make(map[string]*account.Account, len(sorted))
	for _, id := range sorted {
		acc, err := r.Accounts.GetByIDForUpdate(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		locked[id] = acc
	}
	return locked, nil
}
