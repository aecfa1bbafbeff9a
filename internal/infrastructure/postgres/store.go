package postgres

import (
	"context"

	"finanzas/internal/domain/ledger"
)

// Store implements ledger.Store on PostgreSQL. Units of work run in a
// READ COMMITTED transaction; repositories take row locks where they need
// serialization.
type Store struct {
	db *DB
}

func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Repos returns repositories that run each statement on its own.
func (s *Store) Repos() ledger.Repositories {
	return repositories(s.db)
}

// WithinTx runs fn in a transaction, committing when it returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r ledger.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(ctx, repositories(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

func repositories(q querier) ledger.Repositories {
	return ledger.Repositories{
		Accounts:     &AccountRepository{db: q},
		Categories:   &CategoryRepository{db: q},
		Transactions: &TransactionRepository{db: q},
		Recurring:    &RecurringRepository{db: q},
		Transfers:    &TransferRepository{db: q},
	}
}
