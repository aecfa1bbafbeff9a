package memory

import (
	"context"
	"sort"

	"finanzas/internal/domain/transfer"
)

type transferRepo struct{ binding }

func (r *transferRepo) Create(ctx context.Context, params transfer.CreateParams) (*transfer.Transfer, error) {
	tr := &transfer.Transfer{
		ID:            params.ID,
		UserID:        params.UserID,
		FromAccountID: params.FromAccountID,
		ToAccountID:   params.ToAccountID,
		Amount:        params.Amount,
		Description:   params.Description,
		Date:          params.Date,
		CreatedAt:     r.now(),
	}
	err := r.do(func(st *state) error {
		st.transfers[tr.ID] = tr
		return nil
	})
	if err != nil {
		return nil, err
	}
	cp := *tr
	return &cp, nil
}

func (r *transferRepo) GetByID(ctx context.Context, userID, id string) (*transfer.Transfer, error) {
	var out *transfer.Transfer
	err := r.do(func(st *state) error {
		tr, ok := st.transfers[id]
		if !ok || tr.UserID != userID {
			return transfer.ErrTransferNotFound
		}
		cp := *tr
		out = &cp
		return nil
	})
	return out, err
}

func (r *transferRepo) ListByUserID(ctx context.Context, userID string) ([]*transfer.TransferWithNames, error) {
	var out []*transfer.TransferWithNames
	err := r.do(func(st *state) error {
		for _, tr := range st.transfers {
			if tr.UserID != userID {
				continue
			}
			row := &transfer.TransferWithNames{Transfer: *tr}
			if a, ok := st.accounts[tr.FromAccountID]; ok {
				row.FromAccountName = a.Name
			}
			if a, ok := st.accounts[tr.ToAccountID]; ok {
				row.ToAccountName = a.Name
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
	return out, err
}

func (r *transferRepo) Delete(ctx context.Context, userID, id string) error {
	return r.do(func(st *state) error {
		tr, ok := st.transfers[id]
		if !ok || tr.UserID != userID {
			return transfer.ErrTransferNotFound
		}
		delete(st.transfers, id)
		return nil
	})
}
