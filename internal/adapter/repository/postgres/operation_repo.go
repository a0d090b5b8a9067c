package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmvieira/fundledger-backend/internal/domain"
)

// operationRepository implements domain.OperationRepository
type operationRepository struct {
	db *DB
}

// NewOperationRepository creates a new operation repository
func NewOperationRepository(db *DB) domain.OperationRepository {
	return &operationRepository{db: db}
}

// Add appends a new operation record to the audit log
func (r *operationRepository) Add(ctx context.Context, operation *domain.Operation) error {
	query := `
		INSERT INTO operations (id, fund_id, ticker, kind, shares, price, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	// CREATE operations carry no ticker; store NULL rather than ""
	var ticker any
	if operation.Ticker != "" {
		ticker = operation.Ticker
	}

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		operation.ID,
		operation.FundID,
		ticker,
		string(operation.Kind),
		operation.Shares.String(),
		operation.Price.String(),
		operation.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert operation: %w", err)
	}

	return nil
}

// ListByFund retrieves operations of a fund, newest first
func (r *operationRepository) ListByFund(ctx context.Context, fundID uuid.UUID, limit, offset int) ([]*domain.Operation, error) {
	query := `
		SELECT id, fund_id, ticker, kind, shares, price, occurred_at
		FROM operations
		WHERE fund_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, fundID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	defer rows.Close()

	operations := make([]*domain.Operation, 0)
	for rows.Next() {
		operation, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		operations = append(operations, operation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate operations: %w", err)
	}

	return operations, nil
}

// CountByFund returns the total number of operations recorded for a fund
func (r *operationRepository) CountByFund(ctx context.Context, fundID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM operations WHERE fund_id = $1`

	var count int
	if err := r.db.conn(ctx).QueryRowContext(ctx, query, fundID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count operations: %w", err)
	}

	return count, nil
}

// scanOperation reads one operation row
func scanOperation(row rowScanner) (*domain.Operation, error) {
	var operation domain.Operation
	var ticker sql.NullString
	var kind string
	var sharesStr, priceStr string

	if err := row.Scan(
		&operation.ID,
		&operation.FundID,
		&ticker,
		&kind,
		&sharesStr,
		&priceStr,
		&operation.OccurredAt,
	); err != nil {
		return nil, err
	}

	if ticker.Valid {
		operation.Ticker = ticker.String
	}
	operation.Kind = domain.OperationKind(kind)

	shares, err := decimal.NewFromString(sharesStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse shares: %w", err)
	}
	operation.Shares = shares

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price: %w", err)
	}
	operation.Price = price

	return &operation, nil
}
