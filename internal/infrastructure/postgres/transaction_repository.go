package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"finanzas/internal/domain/transaction"
)

const transactionColumns = `t.id, t.user_id, t.type, t.amount, t.description, t.category_id, t.account_id,
	t.date, t.nature, t.transfer_id, t.recurring_rule_id, t.created_at, t.updated_at`

type TransactionRepository struct {
	db querier
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func scanTransaction(row rowScanner, extra ...any) (*transaction.Transaction, error) {
	var tx transaction.Transaction
	var transferID, ruleID sql.NullString
	dest := []any{
		&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.Description, &tx.CategoryID, &tx.AccountID,
		&tx.Date, &tx.Nature, &transferID, &ruleID, &tx.CreatedAt, &tx.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	tx.TransferID = transferID.String
	tx.RecurringRuleID = ruleID.String
	return &tx, nil
}

func (r *TransactionRepository) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	query := `
		INSERT INTO transactions AS t (id, user_id, type, amount, description, category_id, account_id,
		                               date, nature, transfer_id, recurring_rule_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + transactionColumns

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query,
		params.ID, params.UserID, params.Type, params.Amount, params.Description, params.CategoryID,
		params.AccountID, params.Date, params.Nature, nullString(params.TransferID), nullString(params.RecurringRuleID),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, userID, id string) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions t WHERE t.id = $1 AND t.user_id = $2`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id, userID))
	if isNoRows(err) {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

func (r *TransactionRepository) Update(ctx context.Context, userID, id string, params transaction.UpdateParams) (*transaction.Transaction, error) {
	query := `
		UPDATE transactions AS t
		SET type = $3, amount = $4, description = $5, category_id = $6, account_id = $7,
		    date = $8, nature = $9, updated_at = NOW()
		WHERE t.id = $1 AND t.user_id = $2
		RETURNING ` + transactionColumns

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query,
		id, userID, params.Type, params.Amount, params.Description, params.CategoryID,
		params.AccountID, params.Date, params.Nature,
	))
	if isNoRows(err) {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return tx, nil
}

func (r *TransactionRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireAffected(result, transaction.ErrTransactionNotFound)
}

func (r *TransactionRepository) ListByTransferID(ctx context.Context, userID, transferID string) ([]*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions t WHERE t.user_id = $1 AND t.transfer_id = $2 ORDER BY t.id`

	rows, err := r.db.QueryContext(ctx, query, userID, transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfer transactions: %w", err)
	}
	defer rows.Close()

	var out []*transaction.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *TransactionRepository) List(ctx context.Context, userID string, filter transaction.ListFilter) ([]*transaction.TransactionWithNames, error) {
	query, args := buildListQuery(userID, filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []*transaction.TransactionWithNames
	for rows.Next() {
		var row transaction.TransactionWithNames
		var color sql.NullString
		tx, err := scanTransaction(rows, &row.CategoryName, &color, &row.AccountName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		row.Transaction = *tx
		row.CategoryColor = color.String
		out = append(out, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return out, nil
}

// buildListQuery renders the filtered listing with positional arguments.
func buildListQuery(userID string, f transaction.ListFilter) (string, []any) {
	var b strings.Builder
	args := []any{userID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	b.WriteString(`SELECT ` + transactionColumns + `, c.name, c.color, a.name
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		JOIN accounts a ON a.id = t.account_id
		WHERE t.user_id = $1`)

	if f.Type != "" {
		b.WriteString(" AND t.type = " + arg(string(f.Type)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		b.WriteString(" AND t.description ILIKE '%' || " + arg(escapeLike(s)) + " || '%'")
	}
	if f.From != nil {
		b.WriteString(" AND t.date >= " + arg(*f.From))
	}
	if f.To != nil {
		b.WriteString(" AND t.date <= " + arg(*f.To))
	}
	if len(f.CategoryIDs) > 0 {
		b.WriteString(" AND t.category_id = ANY(" + arg(pq.Array(f.CategoryIDs)) + "::uuid[])")
	}
	if len(f.AccountIDs) > 0 {
		b.WriteString(" AND t.account_id = ANY(" + arg(pq.Array(f.AccountIDs)) + "::uuid[])")
	}
	b.WriteString(" ORDER BY t.date DESC, t.created_at DESC")
	if f.Limit > 0 {
		b.WriteString(" LIMIT " + arg(f.Limit))
	}
	return b.String(), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *TransactionRepository) NetByAccount(ctx context.Context, userID, accountID string) (decimal.Decimal, error) {
	var net decimal.Decimal
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE user_id = $1 AND account_id = $2`,
		userID, accountID,
	).Scan(&net)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum account transactions: %w", err)
	}
	return net, nil
}

func (r *TransactionRepository) TotalsBetween(ctx context.Context, userID string, from, to time.Time) (transaction.Totals, error) {
	var totals transaction.Totals
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date <= $3`,
		userID, from, to,
	).Scan(&totals.Income, &totals.Expense)
	if err != nil {
		return transaction.Totals{}, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return totals, nil
}

func (r *TransactionRepository) ExpenseByCategory(ctx context.Context, userID string, from, to time.Time) (map[string]decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category_id, SUM(amount)
		FROM transactions
		WHERE user_id = $1 AND type = 'expense' AND date >= $2 AND date <= $3
		GROUP BY category_id`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses by category: %w", err)
	}
	defer rows.Close()

	out := map[string]decimal.Decimal{}
	for rows.Next() {
		var id string
		var sum decimal.Decimal
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		out[id] = sum
	}
	return out, rows.Err()
}
