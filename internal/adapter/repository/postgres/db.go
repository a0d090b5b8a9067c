package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=fundledger sslmode=disable"
func NewDB(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Migrate creates the ledger tables if they do not exist.
// Call this once on startup.
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS funds (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			cash NUMERIC NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS positions (
			id UUID PRIMARY KEY,
			fund_id UUID NOT NULL REFERENCES funds(id) ON DELETE CASCADE,
			ticker TEXT NOT NULL,
			shares_held NUMERIC NOT NULL,
			avg_purchase_price NUMERIC NOT NULL,
			last_purchase_at TIMESTAMPTZ NOT NULL,
			UNIQUE (fund_id, ticker)
		)`,
		`CREATE TABLE IF NOT EXISTS valuations (
			id UUID PRIMARY KEY,
			fund_id UUID NOT NULL REFERENCES funds(id) ON DELETE CASCADE,
			valuation_at TIMESTAMPTZ NOT NULL,
			total_value NUMERIC NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_valuations_fund_time
			ON valuations (fund_id, valuation_at DESC)`,
		`CREATE TABLE IF NOT EXISTS operations (
			id UUID PRIMARY KEY,
			fund_id UUID NOT NULL REFERENCES funds(id) ON DELETE CASCADE,
			ticker TEXT,
			kind TEXT NOT NULL,
			shares NUMERIC NOT NULL,
			price NUMERIC NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_operations_fund_time
			ON operations (fund_id, occurred_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
