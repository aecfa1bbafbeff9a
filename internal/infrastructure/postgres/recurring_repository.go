package postgres

import (
	"context"
	"fmt"
	"time"

	"finanzas/internal/domain/recurring"
)

const ruleColumns = `id, user_id, description, amount, type, frequency, start_date, next_date,
	category_id, account_id, created_at, updated_at`

type RecurringRepository struct {
	db querier
}

func NewRecurringRepository(db *DB) *RecurringRepository {
	return &RecurringRepository{db: db}
}

func scanRule(row rowScanner) (*recurring.Rule, error) {
	var rule recurring.Rule
	err := row.Scan(
		&rule.ID, &rule.UserID, &rule.Description, &rule.Amount, &rule.Type, &rule.Frequency,
		&rule.StartDate, &rule.NextDate, &rule.CategoryID, &rule.AccountID, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *RecurringRepository) Create(ctx context.Context, params recurring.CreateParams) (*recurring.Rule, error) {
	query := `
		INSERT INTO recurring_rules (id, user_id, description, amount, type, frequency, start_date, next_date, category_id, account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8, $9)
		RETURNING ` + ruleColumns

	rule, err := scanRule(r.db.QueryRowContext(ctx, query,
		params.ID, params.UserID, params.Description, params.Amount, params.Type, params.Frequency,
		params.StartDate, params.CategoryID, params.AccountID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create recurring rule: %w", err)
	}
	return rule, nil
}

func (r *RecurringRepository) GetByID(ctx context.Context, userID, id string) (*recurring.Rule, error) {
	rule, err := scanRule(r.db.QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM recurring_rules WHERE id = $1 AND user_id = $2`, id, userID,
	))
	if isNoRows(err) {
		return nil, recurring.ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring rule: %w", err)
	}
	return rule, nil
}

func (r *RecurringRepository) ListByUserID(ctx context.Context, userID string) ([]*recurring.Rule, error) {
	return r.list(ctx, `SELECT `+ruleColumns+` FROM recurring_rules WHERE user_id = $1 ORDER BY next_date, id`, userID)
}

func (r *RecurringRepository) ListDue(ctx context.Context, now time.Time) ([]*recurring.Rule, error) {
	return r.list(ctx, `SELECT `+ruleColumns+` FROM recurring_rules WHERE next_date <= $1 ORDER BY next_date, id`, now)
}

func (r *RecurringRepository) ListDueByUser(ctx context.Context, userID string, now time.Time) ([]*recurring.Rule, error) {
	return r.list(ctx, `SELECT `+ruleColumns+` FROM recurring_rules WHERE user_id = $1 AND next_date <= $2 ORDER BY next_date, id`, userID, now)
}

func (r *RecurringRepository) list(ctx context.Context, query string, args ...any) ([]*recurring.Rule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring rules: %w", err)
	}
	defer rows.Close()

	var out []*recurring.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring rule: %w", err)
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func (r *RecurringRepository) Update(ctx context.Context, userID, id string, params recurring.UpdateParams) (*recurring.Rule, error) {
	query := `
		UPDATE recurring_rules
		SET description = COALESCE($3::text, description),
		    amount = COALESCE($4::numeric, amount),
		    type = COALESCE($5::text, type),
		    frequency = COALESCE($6::text, frequency),
		    next_date = COALESCE($7::timestamptz, next_date),
		    category_id = COALESCE($8::uuid, category_id),
		    account_id = COALESCE($9::uuid, account_id),
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + ruleColumns

	rule, err := scanRule(r.db.QueryRowContext(ctx, query, id, userID,
		optional(params.Description), optional(params.Amount), optional(params.Type),
		optional(params.Frequency), optional(params.NextDate),
		optional(params.CategoryID), optional(params.AccountID),
	))
	if isNoRows(err) {
		return nil, recurring.ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update recurring rule: %w", err)
	}
	return rule, nil
}

func (r *RecurringRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recurring_rules WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete recurring rule: %w", err)
	}
	return requireAffected(result, recurring.ErrRuleNotFound)
}

// AdvanceNextDate is a compare-and-set on next_date. Inside a transaction the
// row stays locked until commit, so a second runner waits here and then
// matches zero rows.
func (r *RecurringRepository) AdvanceNextDate(ctx context.Context, userID, id string, prev, next time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE recurring_rules SET next_date = $4, updated_at = NOW() WHERE id = $1 AND user_id = $2 AND next_date = $3`,
		id, userID, prev, next,
	)
	if err != nil {
		return false, fmt.Errorf("failed to advance recurring rule: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return n == 1, nil
}
