package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"finanzas/internal/domain/category"
)

const categoryColumns = `id, user_id, name, type, icon, color, budget, created_at, updated_at`

type CategoryRepository struct {
	db querier
}

func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func scanCategory(row rowScanner) (*category.Category, error) {
	var c category.Category
	var icon, color sql.NullString
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &icon, &color, &c.Budget, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Icon = icon.String
	c.Color = color.String
	return &c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, params category.CreateParams) (*category.Category, error) {
	query := `
		INSERT INTO categories (id, user_id, name, type, icon, color, budget)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + categoryColumns

	c, err := scanCategory(r.db.QueryRowContext(ctx, query,
		params.ID, params.UserID, params.Name, params.Type,
		nullString(params.Icon), nullString(params.Color), params.Budget,
	))
	if isUniqueViolation(err) {
		return nil, category.ErrCategoryExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return c, nil
}

// FindOrCreate relies on the (user_id, name) unique index: the insert is a
// no-op when the row exists, and a concurrent inserter blocks on the index
// until the first one commits.
func (r *CategoryRepository) FindOrCreate(ctx context.Context, params category.CreateParams) (*category.Category, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name, type, icon, color, budget)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, name) DO NOTHING`,
		params.ID, params.UserID, params.Name, params.Type,
		nullString(params.Icon), nullString(params.Color), params.Budget,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}

	c, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = $1 AND name = $2`,
		params.UserID, params.Name,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, userID, id string) (*category.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND user_id = $2`, id, userID,
	))
	if isNoRows(err) {
		return nil, category.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) ListByUserID(ctx context.Context, userID string) ([]*category.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = $1 ORDER BY name`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []*category.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, userID, id string, params category.UpdateParams) (*category.Category, error) {
	query := `
		UPDATE categories
		SET name = COALESCE($3::text, name),
		    type = COALESCE($4::text, type),
		    icon = COALESCE($5::text, icon),
		    color = COALESCE($6::text, color),
		    budget = COALESCE($7::numeric, budget),
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + categoryColumns

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, id, userID,
		optional(params.Name), optional(params.Type), optional(params.Icon),
		optional(params.Color), optional(params.Budget),
	))
	if isNoRows(err) {
		return nil, category.ErrCategoryNotFound
	}
	if isUniqueViolation(err) {
		return nil, category.ErrCategoryExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) InUse(ctx context.Context, userID, id string) (bool, error) {
	var used bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM transactions WHERE user_id = $1 AND category_id = $2)
		    OR EXISTS (SELECT 1 FROM recurring_rules WHERE user_id = $1 AND category_id = $2)`,
		userID, id,
	).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("failed to check category usage: %w", err)
	}
	return used, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if isForeignKeyViolation(err) {
		return category.ErrCategoryInUse
	}
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireAffected(result, category.ErrCategoryNotFound)
}

// optional turns a nil pointer into SQL NULL for COALESCE-style partial updates.
func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
