package postgres

import (
	"context"
	"fmt"

	"finanzas/internal/domain/transfer"
)

const transferColumns = `tr.id, tr.user_id, tr.from_account_id, tr.to_account_id, tr.amount, tr.description, tr.date, tr.created_at`

type TransferRepository struct {
	db querier
}

func NewTransferRepository(db *DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func scanTransfer(row rowScanner, extra ...any) (*transfer.Transfer, error) {
	var tr transfer.Transfer
	dest := []any{&tr.ID, &tr.UserID, &tr.FromAccountID, &tr.ToAccountID, &tr.Amount, &tr.Description, &tr.Date, &tr.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &tr, nil
}

func (r *TransferRepository) Create(ctx context.Context, params transfer.CreateParams) (*transfer.Transfer, error) {
	query := `
		INSERT INTO transfers AS tr (id, user_id, from_account_id, to_account_id, amount, description, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + transferColumns

	tr, err := scanTransfer(r.db.QueryRowContext(ctx, query,
		params.ID, params.UserID, params.FromAccountID, params.ToAccountID,
		params.Amount, params.Description, params.Date,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}
	return tr, nil
}

func (r *TransferRepository) GetByID(ctx context.Context, userID, id string) (*transfer.Transfer, error) {
	tr, err := scanTransfer(r.db.QueryRowContext(ctx,
		`SELECT `+transferColumns+` FROM transfers tr WHERE tr.id = $1 AND tr.user_id = $2`, id, userID,
	))
	if isNoRows(err) {
		return nil, transfer.ErrTransferNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return tr, nil
}

func (r *TransferRepository) ListByUserID(ctx context.Context, userID string) ([]*transfer.TransferWithNames, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transferColumns+`, fa.name, ta.name
		FROM transfers tr
		JOIN accounts fa ON fa.id = tr.from_account_id
		JOIN accounts ta ON ta.id = tr.to_account_id
		WHERE tr.user_id = $1
		ORDER BY tr.date DESC, tr.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	var out []*transfer.TransferWithNames
	for rows.Next() {
		var row transfer.TransferWithNames
		tr, err := scanTransfer(rows, &row.FromAccountName, &row.ToAccountName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		row.Transfer = *tr
		out = append(out, &row)
	}
	return out, rows.Err()
}

func (r *TransferRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transfers WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transfer: %w", err)
	}
	return requireAffected(result, transfer.ErrTransferNotFound)
}
