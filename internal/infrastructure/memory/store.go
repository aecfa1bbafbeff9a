// Package memory is an in-process implementation of the ledger store. Units
// of work run against a private copy of the data that replaces the shared
// copy on commit, so a failed unit of work leaves nothing behind. Data is
// lost on restart.
package memory

import (
	"context"
	"sync"
	"time"

	"finanzas/internal/domain/account"
	"finanzas/internal/domain/category"
	"finanzas/internal/domain/ledger"
	"finanzas/internal/domain/recurring"
	"finanzas/internal/domain/transaction"
	"finanzas/internal/domain/transfer"
)

type state struct {
	accounts     map[string]*account.Account
	categories   map[string]*category.Category
	transactions map[string]*transaction.Transaction
	rules        map[string]*recurring.Rule
	transfers    map[string]*transfer.Transfer
}

func newState() *state {
	return &state{
		accounts:     map[string]*account.Account{},
		categories:   map[string]*category.Category{},
		transactions: map[string]*transaction.Transaction{},
		rules:        map[string]*recurring.Rule{},
		transfers:    map[string]*transfer.Transfer{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.accounts {
		cp := *v
		c.accounts[k] = &cp
	}
	for k, v := range s.categories {
		cp := *v
		c.categories[k] = &cp
	}
	for k, v := range s.transactions {
		cp := *v
		c.transactions[k] = &cp
	}
	for k, v := range s.rules {
		cp := *v
		c.rules[k] = &cp
	}
	for k, v := range s.transfers {
		cp := *v
		c.transfers[k] = &cp
	}
	return c
}

// Store implements ledger.Store. It is safe for concurrent use; units of
// work are serialized.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

func (s *Store) Repos() ledger.Repositories {
	return s.repos(nil)
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r ledger.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(ctx, s.repos(work)); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) repos(tx *state) ledger.Repositories {
	b := binding{store: s, tx: tx}
	return ledger.Repositories{
		Accounts:     &accountRepo{b},
		Categories:   &categoryRepo{b},
		Transactions: &transactionRepo{b},
		Recurring:    &recurringRepo{b},
		Transfers:    &transferRepo{b},
	}
}

// binding ties a repository to the shared state or to one unit of work.
type binding struct {
	store *Store
	tx    *state
}

// do runs fn on the bound state. Outside a unit of work it takes the store
// lock for the duration of fn.
func (b binding) do(fn func(st *state) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	return fn(b.store.st)
}

func (b binding) now() time.Time {
	return b.store.now()
}
