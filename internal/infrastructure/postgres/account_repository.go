package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"finanzas/internal/domain/account"
)

const accountColumns = `id, user_id, name, account_type, initial_balance, balance, bank, color, created_at, updated_at`

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	db querier
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*account.Account, error) {
	var acc account.Account
	var bank, color sql.NullString
	err := row.Scan(
		&acc.ID, &acc.UserID, &acc.Name, &acc.Type, &acc.InitialBalance, &acc.Balance,
		&bank, &color, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	acc.Bank = bank.String
	acc.Color = color.String
	return &acc, nil
}

// Create creates a new account with a null cached balance
func (r *AccountRepository) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	query := `
		INSERT INTO accounts (id, user_id, name, account_type, initial_balance, bank, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + accountColumns

	acc, err := scanAccount(r.db.QueryRowContext(ctx, query,
		params.ID, params.UserID, params.Name, params.Type, params.InitialBalance,
		nullString(params.Bank), nullString(params.Color),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return acc, nil
}

// GetByID retrieves an account owned by userID
func (r *AccountRepository) GetByID(ctx context.Context, userID, id string) (*account.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND user_id = $2`, userID, id)
}

// GetByIDForUpdate locks the row until the surrounding transaction ends.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, userID, id string) (*account.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND user_id = $2 FOR UPDATE`, userID, id)
}

func (r *AccountRepository) get(ctx context.Context, query, userID, id string) (*account.Account, error) {
	acc, err := scanAccount(r.db.QueryRowContext(ctx, query, id, userID))
	if isNoRows(err) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, nil
}

// ListByUserID retrieves all accounts for a specific user
func (r *AccountRepository) ListByUserID(ctx context.Context, userID string) ([]*account.Account, error) {
	return r.list(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY name, id`, userID)
}

// ListMissingBalance retrieves the user's accounts whose cached balance is null
func (r *AccountRepository) ListMissingBalance(ctx context.Context, userID string) ([]*account.Account, error) {
	return r.list(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 AND balance IS NULL ORDER BY name, id`, userID)
}

func (r *AccountRepository) list(ctx context.Context, query string, args ...any) ([]*account.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// ListUsersWithMissingBalance returns users owning an account with a null balance
func (r *AccountRepository) ListUsersWithMissingBalance(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM accounts WHERE balance IS NULL ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with missing balances: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// Update applies the non-nil fields. A changed initial balance shifts a
// non-null cached balance by the same difference in the same statement.
func (r *AccountRepository) Update(ctx context.Context, userID, id string, params account.UpdateParams) (*account.Account, error) {
	var name, typ, bank, color any
	var initial any
	if params.Name != nil {
		name = *params.Name
	}
	if params.Type != nil {
		typ = string(*params.Type)
	}
	if params.Bank != nil {
		bank = *params.Bank
	}
	if params.Color != nil {
		color = *params.Color
	}
	if params.InitialBalance != nil {
		initial = *params.InitialBalance
	}

	query := `
		UPDATE accounts
		SET name = COALESCE($3::text, name),
		    account_type = COALESCE($4::text, account_type),
		    bank = COALESCE($5::text, bank),
		    color = COALESCE($6::text, color),
		    balance = balance + (COALESCE($7::numeric, initial_balance) - initial_balance),
		    initial_balance = COALESCE($7::numeric, initial_balance),
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + accountColumns

	acc, err := scanAccount(r.db.QueryRowContext(ctx, query, id, userID, name, typ, bank, color, initial))
	if isNoRows(err) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return acc, nil
}

// FillBalance stores balance only if the cached balance is still null.
func (r *AccountRepository) FillBalance(ctx context.Context, userID, id string, balance decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET balance = $3 WHERE id = $1 AND user_id = $2 AND balance IS NULL`,
		id, userID, balance,
	)
	if err != nil {
		return fmt.Errorf("failed to fill balance: %w", err)
	}
	return nil
}

// ClearBalances nulls every cached balance of the user.
func (r *AccountRepository) ClearBalances(ctx context.Context, userID string) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET balance = NULL WHERE user_id = $1 AND balance IS NOT NULL`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear balances: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return int(n), nil
}

// ApplyDelta adds delta in a single statement so concurrent writers never
// overwrite each other. NULL + delta stays NULL.
func (r *AccountRepository) ApplyDelta(ctx context.Context, userID, id string, delta decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET balance = balance + $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		id, userID, delta,
	)
	if err != nil {
		return fmt.Errorf("failed to apply balance delta: %w", err)
	}
	return requireAffected(result, account.ErrAccountNotFound)
}

// InUse reports whether transactions or recurring rules reference the account
func (r *AccountRepository) InUse(ctx context.Context, userID, id string) (bool, error) {
	var used bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM transactions WHERE user_id = $1 AND account_id = $2)
		    OR EXISTS (SELECT 1 FROM recurring_rules WHERE user_id = $1 AND account_id = $2)
		    OR EXISTS (SELECT 1 FROM transfers WHERE user_id = $1 AND (from_account_id = $2 OR to_account_id = $2))`,
		userID, id,
	).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("failed to check account usage: %w", err)
	}
	return used, nil
}

// Delete removes an account
func (r *AccountRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if isForeignKeyViolation(err) {
		return account.ErrAccountInUse
	}
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return requireAffected(result, account.ErrAccountNotFound)
}

// requireAffected returns notFound when a statement touched no rows.
func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
