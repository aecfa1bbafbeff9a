package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"finanzas/internal/domain/account"
	"finanzas/internal/domain/category"
	"finanzas/internal/domain/ledger"
	"finanzas/internal/domain/recurring"
	"finanzas/internal/domain/transaction"
	"finanzas/internal/domain/transfer"
	"finanzas/internal/infrastructure/memory"
)

var errInjected = errors.New("injected failure")

type fixture struct {
	ctx   context.Context
	store *memory.Store
	svc   *ledger.Service
}

func newFixture(t *testing.T, opts ...ledger.Option) *fixture {
	t.Helper()
	store := memory.NewStore()
	return &fixture{
		ctx:   context.Background(),
		store: store,
		svc:   ledger.NewService(store, zerolog.Nop(), opts...),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func (f *fixture) account(t *testing.T, userID, name, initial string) string {
	t.Helper()
	acc, err := f.store.Repos().Accounts.Create(f.ctx, account.CreateParams{
		ID:             uuid.NewString(),
		UserID:         userID,
		Name:           name,
		Type:           account.TypeNormal,
		InitialBalance: dec(initial),
	})
	require.NoError(t, err)
	return acc.ID
}

func (f *fixture) category(t *testing.T, userID, name string, typ transaction.Type) string {
	t.Helper()
	c, err := f.store.Repos().Categories.Create(f.ctx, category.CreateParams{
		ID: uuid.NewString(), UserID: userID, Name: name, Type: typ,
	})
	require.NoError(t, err)
	return c.ID
}

func (f *fixture) rule(t *testing.T, userID, accountID, categoryID string, freq recurring.Frequency, amount string, start time.Time) string {
	t.Helper()
	r, err := f.store.Repos().Recurring.Create(f.ctx, recurring.CreateParams{
		ID:          uuid.NewString(),
		UserID:      userID,
		Description: "Alquiler",
		Amount:      dec(amount),
		Type:        transaction.TypeExpense,
		Frequency:   freq,
		StartDate:   start,
		CategoryID:  categoryID,
		AccountID:   accountID,
	})
	require.NoError(t, err)
	return r.ID
}

func (f *fixture) post(t *testing.T, userID, accountID, categoryID string, typ transaction.Type, amount string) *transaction.Transaction {
	t.Helper()
	tx, err := f.svc.PostTransaction(f.ctx, userID, transaction.CreateParams{
		Type:        typ,
		Amount:      dec(amount),
		Description: fmt.Sprintf("%s %s", typ, amount),
		CategoryID:  categoryID,
		AccountID:   accountID,
	})
	require.NoError(t, err)
	return tx
}

// cached returns the stored balance cache, failing when it is empty.
func (f *fixture) cached(t *testing.T, userID, accountID string) decimal.Decimal {
	t.Helper()
	acc, err := f.store.Repos().Accounts.GetByID(f.ctx, userID, accountID)
	require.NoError(t, err)
	require.True(t, acc.Balance.Valid, "balance cache should be filled")
	return acc.Balance.Decimal
}

// fromScratch recomputes the balance from the transaction history.
func (f *fixture) fromScratch(t *testing.T, userID, accountID string) decimal.Decimal {
	t.Helper()
	acc, err := f.store.Repos().Accounts.GetByID(f.ctx, userID, accountID)
	require.NoError(t, err)
	net, err := f.store.Repos().Transactions.NetByAccount(f.ctx, userID, accountID)
	require.NoError(t, err)
	return acc.InitialBalance.Add(net)
}

func (f *fixture) countTransactions(t *testing.T, userID string) int {
	t.Helper()
	rows, err := f.store.Repos().Transactions.List(f.ctx, userID, transaction.ListFilter{})
	require.NoError(t, err)
	return len(rows)
}

// faults fails the Nth call of a named step, e.g. "transactions.Create#2".
type faults struct {
	failAt string
	counts map[string]int
}

func (f *faults) hit(step string) error {
	if f.counts == nil {
		f.counts = map[string]int{}
	}
	f.counts[step]++
	if fmt.Sprintf("%s#%d", step, f.counts[step]) == f.failAt {
		return errInjected
	}
	return nil
}

type faultyAccounts struct {
	account.Repository
	f *faults
}

func (r faultyAccounts) ApplyDelta(ctx context.Context, userID, id string, delta decimal.Decimal) error {
	if err := r.f.hit("accounts.ApplyDelta"); err != nil {
		return err
	}
	return r.Repository.ApplyDelta(ctx, userID, id, delta)
}

type faultyCategories struct {
	category.Repository
	f *faults
}

func (r faultyCategories) FindOrCreate(ctx context.Context, params category.CreateParams) (*category.Category, error) {
	if err := r.f.hit("categories.FindOrCreate"); err != nil {
		return nil, err
	}
	return r.Repository.FindOrCreate(ctx, params)
}

type faultyTransactions struct {
	transaction.Repository
	f *faults
}

func (r faultyTransactions) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	if err := r.f.hit("transactions.Create"); err != nil {
		return nil, err
	}
	return r.Repository.Create(ctx, params)
}

type faultyTransfers struct {
	transfer.Repository
	f *faults
}

func (r faultyTransfers) Create(ctx context.Context, params transfer.CreateParams) (*transfer.Transfer, error) {
	if err := r.f.hit("transfers.Create"); err != nil {
		return nil, err
	}
	return r.Repository.Create(ctx, params)
}

// wrappedStore lets a test swap repositories inside and outside units of work.
type wrappedStore struct {
	inner ledger.Store
	wrap  func(ledger.Repositories) ledger.Repositories
}

func (s wrappedStore) Repos() ledger.Repositories {
	return s.wrap(s.inner.Repos())
}

func (s wrappedStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r ledger.Repositories) error) error {
	return s.inner.WithinTx(ctx, func(ctx context.Context, r ledger.Repositories) error {
		return fn(ctx, s.wrap(r))
	})
}

func withFaults(f *faults) func(ledger.Repositories) ledger.Repositories {
	return func(r ledger.Repositories) ledger.Repositories {
		r.Accounts = faultyAccounts{r.Accounts, f}
		r.Categories = faultyCategories{r.Categories, f}
		r.Transactions = faultyTransactions{r.Transactions, f}
		r.Transfers = faultyTransfers{r.Transfers, f}
		return r
	}
}
