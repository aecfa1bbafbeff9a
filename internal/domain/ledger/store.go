// Package ledger holds the operations that keep account balances consistent
// with the transactions behind them: postings, recurring generation and
// transfers. Each runs inside a single unit of work.
package ledger

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"finanzas/internal/domain/account"
	"finanzas/internal/domain/category"
	"finanzas/internal/domain/recurring"
	"finanzas/internal/domain/transaction"
	"finanzas/internal/domain/transfer"
)

// Repositories is the set of repositories bound to one connection or unit of work.
type Repositories struct {
	Accounts     account.Repository
	Categories   category.Repository
	Transactions transaction.Repository
	Recurring    recurring.Repository
	Transfers    transfer.Repository
}

// Store hands out repositories and runs units of work.
type Store interface {
	// Repos returns repositories that operate outside any unit of work.
	Repos() Repositories

	// WithinTx runs fn with repositories bound to a new unit of work. It
	// commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
}

// Notifier is told about generated recurring transactions and executed
// transfers, after their unit of work has committed.
type Notifier interface {
	NotifyRecurringGenerated(ctx context.Context, tx *transaction.Transaction) error
	NotifyTransferExecuted(ctx context.Context, tr *transfer.Transfer, fromName, toName string) error
}

type Service struct {
	store    Store
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

type Option func(*Service)

// WithNotifier sets who hears about recurring transactions and transfers.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides time.Now, used to default transaction dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   log.With().Str("component", "ledger").Logger(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
