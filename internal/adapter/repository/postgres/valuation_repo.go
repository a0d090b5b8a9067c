package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmvieira/fundledger-backend/internal/domain"
)

// valuationRepository implements domain.ValuationRepository
type valuationRepository struct {
	db *DB
}

// NewValuationRepository creates a new valuation repository
func NewValuationRepository(db *DB) domain.ValuationRepository {
	return &valuationRepository{db: db}
}

// Add appends a new valuation snapshot
func (r *valuationRepository) Add(ctx context.Context, valuation *domain.Valuation) error {
	query := `
		INSERT INTO valuations (id, fund_id, valuation_at, total_value)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		valuation.ID,
		valuation.FundID,
		valuation.ValuationAt,
		valuation.TotalValue.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert valuation: %w", err)
	}

	return nil
}

// ListByFund retrieves valuations of a fund, newest first
func (r *valuationRepository) ListByFund(ctx context.Context, fundID uuid.UUID, limit, offset int) ([]*domain.Valuation, error) {
	query := `
		SELECT id, fund_id, valuation_at, total_value
		FROM valuations
		WHERE fund_id = $1
		ORDER BY valuation_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, fundID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list valuations: %w", err)
	}
	defer rows.Close()

	valuations := make([]*domain.Valuation, 0)
	for rows.Next() {
		valuation, err := scanValuation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan valuation: %w", err)
		}
		valuations = append(valuations, valuation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate valuations: %w", err)
	}

	return valuations, nil
}

// GetLatest retrieves the most recent valuation for a fund
func (r *valuationRepository) GetLatest(ctx context.Context, fundID uuid.UUID) (*domain.Valuation, error) {
	query := `
		SELECT id, fund_id, valuation_at, total_value
		FROM valuations
		WHERE fund_id = $1
		ORDER BY valuation_at DESC
		LIMIT 1
	`

	valuation, err := scanValuation(r.db.conn(ctx).QueryRowContext(ctx, query, fundID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoValuations
		}
		return nil, fmt.Errorf("failed to get latest valuation: %w", err)
	}

	return valuation, nil
}

// scanValuation reads one valuation row
func scanValuation(row rowScanner) (*domain.Valuation, error) {
	var valuation domain.Valuation
	var totalStr string

	if err := row.Scan(
		&valuation.ID,
		&valuation.FundID,
		&valuation.ValuationAt,
		&totalStr,
	); err != nil {
		return nil, err
	}

	total, err := decimal.NewFromString(totalStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse total_value: %w", err)
	}
	valuation.TotalValue = total

	return &valuation, nil
}
