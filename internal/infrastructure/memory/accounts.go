package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"finanzas/internal/domain/account"
)

type accountRepo struct{ binding }

func (r *accountRepo) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	now := r.now()
	acc := &account.Account{
		ID:             params.ID,
		UserID:         params.UserID,
		Name:           params.Name,
		Type:           params.Type,
		InitialBalance: params.InitialBalance,
		Bank:           params.Bank,
		Color:          params.Color,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := r.do(func(st *state) error {
		st.accounts[acc.ID] = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	cp := *acc
	return &cp, nil
}

func (r *accountRepo) GetByID(ctx context.Context, userID, id string) (*account.Account, error) {
	var out *account.Account
	err := r.do(func(st *state) error {
		acc, err := ownedAccount(st, userID, id)
		if err != nil {
			return err
		}
		cp := *acc
		out = &cp
		return nil
	})
	return out, err
}

// GetByIDForUpdate needs no lock of its own; units of work are serialized.
func (r *accountRepo) GetByIDForUpdate(ctx context.Context, userID, id string) (*account.Account, error) {
	return r.GetByID(ctx, userID, id)
}

func (r *accountRepo) ListByUserID(ctx context.Context, userID string) ([]*account.Account, error) {
	return r.list(userID, func(*account.Account) bool { return true })
}

func (r *accountRepo) ListMissingBalance(ctx context.Context, userID string) ([]*account.Account, error) {
	return r.list(userID, func(a *account.Account) bool { return !a.Balance.Valid })
}

func (r *accountRepo) list(userID string, keep func(*account.Account) bool) ([]*account.Account, error) {
	var out []*account.Account
	err := r.do(func(st *state) error {
		for _, acc := range st.accounts {
			if acc.UserID == userID && keep(acc) {
				cp := *acc
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *accountRepo) ListUsersWithMissingBalance(ctx context.Context) ([]string, error) {
	var out []string
	err := r.do(func(st *state) error {
		seen := map[string]bool{}
		for _, acc := range st.accounts {
			if !acc.Balance.Valid && !seen[acc.UserID] {
				seen[acc.UserID] = true
				out = append(out, acc.UserID)
			}
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

func (r *accountRepo) Update(ctx context.Context, userID, id string, params account.UpdateParams) (*account.Account, error) {
	var out *account.Account
	err := r.do(func(st *state) error {
		acc, err := ownedAccount(st, userID, id)
		if err != nil {
			return err
		}
		if params.Name != nil {
			acc.Name = *params.Name
		}
		if params.Type != nil {
			acc.Type = *params.Type
		}
		if params.Bank != nil {
			acc.Bank = *params.Bank
		}
		if params.Color != nil {
			acc.Color = *params.Color
		}
		if params.InitialBalance != nil {
			diff := params.InitialBalance.Sub(acc.InitialBalance)
			acc.InitialBalance = *params.InitialBalance
			if acc.Balance.Valid {
				acc.Balance.Decimal = acc.Balance.Decimal.Add(diff)
			}
		}
		acc.UpdatedAt = r.now()
		cp := *acc
		out = &cp
		return nil
	})
	return out, err
}

func (r *accountRepo) FillBalance(ctx context.Context, userID, id string, balance decimal.Decimal) error {
	return r.do(func(st *state) error {
		acc, err := ownedAccount(st, userID, id)
		if err != nil {
			return err
		}
		if !acc.Balance.Valid {
			acc.Balance = decimal.NewNullDecimal(balance)
		}
		return nil
	})
}

func (r *accountRepo) ClearBalances(ctx context.Context, userID string) (int, error) {
	n := 0
	err := r.do(func(st *state) error {
		for _, acc := range st.accounts {
			if acc.UserID == userID && acc.Balance.Valid {
				acc.Balance = decimal.NullDecimal{}
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *accountRepo) ApplyDelta(ctx context.Context, userID, id string, delta decimal.Decimal) error {
	return r.do(func(st *state) error {
		acc, err := ownedAccount(st, userID, id)
		if err != nil {
			return err
		}
		if acc.Balance.Valid {
			acc.Balance.Decimal = acc.Balance.Decimal.Add(delta)
		}
		return nil
	})
}

func (r *accountRepo) InUse(ctx context.Context, userID, id string) (bool, error) {
	var used bool
	err := r.do(func(st *state) error {
		for _, tx := range st.transactions {
			if tx.UserID == userID && tx.AccountID == id {
				used = true
				return nil
			}
		}
		for _, rule := range st.rules {
			if rule.UserID == userID && rule.AccountID == id {
				used = true
				return nil
			}
		}
		for _, tr := range st.transfers {
			if tr.UserID == userID && (tr.FromAccountID == id || tr.ToAccountID == id) {
				used = true
				return nil
			}
		}
		return nil
	})
	return used, err
}

func (r *accountRepo) Delete(ctx context.Context, userID, id string) error {
	return r.do(func(st *state) error {
		if _, err := ownedAccount(st, userID, id); err != nil {
			return err
		}
		delete(st.accounts, id)
		return nil
	})
}

func ownedAccount(st *state, userID, id string) (*account.Account, error) {
	acc, ok := st.accounts[id]
	if !ok || acc.UserID != userID {
		return nil, account.ErrAccountNotFound
	}
	return acc, nil
}
