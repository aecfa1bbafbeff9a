package ledger_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/domain/account"
	"finanzas/internal/domain/transaction"
)

func TestAvailableBalance_FillsEmptyCacheFromHistory(t *testing.T) {
	f := newFixture(t)
	acc := f.account(t, "u1", "Corriente", "100")
	food := f.category(t, "u1", "Comida", transaction.TypeExpense)
	salary := f.category(t, "u1", "Nómina", transaction.TypeIncome)

	// history written behind the cache's back, as an import would
	for _, p := range []struct {
		typ    transaction.Type
		cat    string
		amount string
	}{
		{transaction.TypeIncome, salary, "1500"},
		{transaction.TypeExpense, food, "35.40"},
		{transaction.TypeExpense, food, "12.10"},
	} {
		_, err := f.store.Repos().Transactions.Create(f.ctx, transaction.CreateParams{
			ID: uuid.NewString(), UserID: "u1", Type: p.typ, Amount: dec(p.amount),
			Description: "import", CategoryID: p.cat, AccountID: acc, Nature: transaction.NaturePuntual,
		})
		require.NoError(t, err)
	}

	got, err := f.svc.AvailableBalance(f.ctx, "u1", acc)

	require.NoError(t, err)
	requireDec(t, "1552.50", got)
	requireDec(t, "1552.50", f.cached(t, "u1", acc))
}

func TestAvailableBalance_UsesCacheWhenPresent(t *testing.T) {
	f := newFixture(t)
	acc := f.account(t, "u1", "Corriente", "100")
	require.NoError(t, f.store.Repos().Accounts.FillBalance(f.ctx, "u1", acc, dec("42")))

	got, err := f.svc.AvailableBalance(f.ctx, "u1", acc)

	require.NoError(t, err)
	requireDec(t, "42", got)
}

func TestAvailableBalance_OtherUserIsNotFound(t *testing.T) {
	f := newFixture(t)
	acc := f.account(t, "u1", "Corriente", "100")

	_, err := f.svc.AvailableBalance(f.ctx, "u2", acc)

	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestRecalculateMissingBalances(t *testing.T) {
	f := newFixture(t)
	a := f.account(t, "u1", "A", "10")
	b := f.account(t, "u1", "B", "20")
	filled := f.account(t, "u1", "C", "30")
	f.account(t, "u2", "Other", "99")
	require.NoError(t, f.store.Repos().Accounts.FillBalance(f.ctx, "u1", filled, dec("30")))

	n := f.svc.RecalculateMissingBalances(f.ctx, "u1")

	assert.Equal(t, 2, n)
	requireDec(t, "10", f.cached(t, "u1", a))
	requireDec(t, "20", f.cached(t, "u1", b))
	missing, err := f.store.Repos().Accounts.ListMissingBalance(f.ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, missing)
	users, err := f.store.Repos().Accounts.ListUsersWithMissingBalance(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, users)
}

func TestListAccountBalances(t *testing.T) {
	f := newFixture(t)
	acc := f.account(t, "u1", "Corriente", "50")
	food := f.category(t, "u1", "Comida", transaction.TypeExpense)
	f.post(t, "u1", acc, food, transaction.TypeExpense, "20")

	rows, err := f.svc.ListAccountBalances(f.ctx, "u1")

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Corriente", rows[0].Name)
	requireDec(t, "30", rows[0].Available)
}

func TestRebuildBalances_RecomputesFromHistory(t *testing.T) {
	f := newFixture(t)
	acc := f.account(t, "u1", "Corriente", "100")
	cat := f.category(t, "u1", "Comida", transaction.TypeExpense)
	f.post(t, "u1", acc, cat, transaction.TypeExpense, "40")
	// corrupt the cache
	require.NoError(t, f.store.Repos().Accounts.ApplyDelta(f.ctx, "u1", acc, dec("1000")))

	n, err := f.svc.RebuildBalances(f.ctx, "u1")

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	requireDec(t, "60", f.cached(t, "u1", acc))
}
