package postgres

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"finanzas/internal/domain/transaction"
)

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"placeholders kept", "SELECT * FROM accounts WHERE id = $1", "SELECT * FROM accounts WHERE id = $1"},
		{"string literal", "SELECT * FROM users WHERE email = 'a@b.c'", "SELECT * FROM users WHERE email = '?'"},
		{"escaped quote", "SELECT 'it''s'", "SELECT '?'"},
		{"numeric literal", "SELECT * FROM t LIMIT 10", "SELECT * FROM t LIMIT ?"},
		{"decimal literal", "SELECT 12.50", "SELECT ?"},
		{"identifier digits kept", "SELECT col1 FROM t2", "SELECT col1 FROM t2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeQuery(tt.query))
		})
	}
}

func TestSanitizeQuery_Truncates(t *testing.T) {
	got := sanitizeQuery(strings.Repeat("x", 300))
	assert.Len(t, got, 259)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestExtractSQLVerb(t *testing.T) {
	assert.Equal(t, "SELECT", extractSQLVerb("  select id from t"))
	assert.Equal(t, "UPDATE", extractSQLVerb("\n\t\tUPDATE accounts SET balance = balance + $3"))
	assert.Equal(t, "COMMIT", extractSQLVerb("commit"))
}

func TestPQErrorMapping(t *testing.T) {
	unique := &pq.Error{Code: codeUniqueViolation}
	fk := fmt.Errorf("wrapped: %w", &pq.Error{Code: codeForeignKeyViolation})
	badUUID := &pq.Error{Code: codeInvalidText}

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isUniqueViolation(fk))
	assert.True(t, isForeignKeyViolation(fk))
	assert.True(t, isNoRows(sql.ErrNoRows))
	assert.True(t, isNoRows(badUUID))
	assert.False(t, isNoRows(unique))
	assert.False(t, isNoRows(nil))
}

func TestOptional(t *testing.T) {
	name := "Comida"
	amount := decimal.RequireFromString("10")

	assert.Nil(t, optional[string](nil))
	assert.Equal(t, "Comida", optional(&name))
	assert.Equal(t, amount, optional(&amount))
}

func TestBuildListQuery(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("user only", func(t *testing.T) {
		query, args := buildListQuery("u1", transaction.ListFilter{})

		assert.Equal(t, []any{"u1"}, args)
		assert.Contains(t, query, "WHERE t.user_id = $1 ORDER BY t.date DESC")
		assert.NotContains(t, query, "LIMIT")
	})

	t.Run("all filters", func(t *testing.T) {
		query, args := buildListQuery("u1", transaction.ListFilter{
			Type:        transaction.TypeExpense,
			Search:      " 50%_off ",
			From:        &from,
			CategoryIDs: []string{"c1"},
			AccountIDs:  []string{"a1", "a2"},
			Limit:       5,
		})

		assert.Len(t, args, 7)
		assert.Equal(t, "expense", args[1])
		assert.Equal(t, `50\%\_off`, args[2])
		assert.Equal(t, from, args[3])
		assert.Contains(t, query, "t.type = $2")
		assert.Contains(t, query, "ILIKE '%' || $3 || '%'")
		assert.Contains(t, query, "t.date >= $4")
		assert.Contains(t, query, "t.category_id = ANY($5::uuid[])")
		assert.Contains(t, query, "t.account_id = ANY($6::uuid[])")
		assert.True(t, strings.HasSuffix(query, "LIMIT $7"))
		assert.Equal(t, 5, args[6])
	})
}
