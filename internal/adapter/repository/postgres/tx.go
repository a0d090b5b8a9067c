package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rmvieira/fundledger-backend/internal/domain"
)

// txKey is the context key under which an open *sql.Tx travels.
type txKey struct{}

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repositories run against it so the same code works inside and outside a
// transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the transaction carried by ctx, or the bare connection when
// no transaction is open.
func (db *DB) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db.DB
}

// txManager implements domain.TxManager on top of database/sql transactions
type txManager struct {
	db *DB
}

// NewTxManager creates a new transaction manager for the given connection
func NewTxManager(db *DB) domain.TxManager {
	return &txManager{db: db}
}

// WithinTx runs fn inside a single database transaction. Repository calls
// made with the context passed to fn join the transaction; if fn returns an
// error the transaction is rolled back and no state change is visible.
func (m *txManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested calls reuse the already-open transaction
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
