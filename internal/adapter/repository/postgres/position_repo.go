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

// positionRepository implements domain.PositionRepository
type positionRepository struct {
	db *DB
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *DB) domain.PositionRepository {
	return &positionRepository{db: db}
}

// GetByFundAndTicker retrieves the position for (fund, ticker).
// Returns (nil, nil) when no position exists for the ticker.
func (r *positionRepository) GetByFundAndTicker(ctx context.Context, fundID uuid.UUID, ticker string) (*domain.Position, error) {
	query := `
		SELECT id, fund_id, ticker, shares_held, avg_purchase_price, last_purchase_at
		FROM positions
		WHERE fund_id = $1 AND ticker = $2
	`

	position, err := scanPosition(r.db.conn(ctx).QueryRowContext(ctx, query, fundID, ticker))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get position: %w", err)
	}

	return position, nil
}

// ListByFund retrieves all positions of a fund ordered by ticker
func (r *positionRepository) ListByFund(ctx context.Context, fundID uuid.UUID) ([]*domain.Position, error) {
	query := `
		SELECT id, fund_id, ticker, shares_held, avg_purchase_price, last_purchase_at
		FROM positions
		WHERE fund_id = $1
		ORDER BY ticker
	`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	positions := make([]*domain.Position, 0)
	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, position)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}

	return positions, nil
}

// Upsert inserts the position or updates it if (fund, ticker) already exists
func (r *positionRepository) Upsert(ctx context.Context, position *domain.Position) error {
	query := `
		INSERT INTO positions (id, fund_id, ticker, shares_held, avg_purchase_price, last_purchase_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (fund_id, ticker) DO UPDATE SET
			shares_held = EXCLUDED.shares_held,
			avg_purchase_price = EXCLUDED.avg_purchase_price,
			last_purchase_at = EXCLUDED.last_purchase_at
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		position.ID,
		position.FundID,
		position.Ticker,
		position.SharesHeld.String(),
		position.AvgPurchasePrice.String(),
		position.LastPurchaseAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert position: %w", err)
	}

	return nil
}

// scanPosition reads one position row, parsing NUMERIC columns through
// their string representation
func scanPosition(row rowScanner) (*domain.Position, error) {
	var position domain.Position
	var sharesStr, avgPriceStr string

	if err := row.Scan(
		&position.ID,
		&position.FundID,
		&position.Ticker,
		&sharesStr,
		&avgPriceStr,
		&position.LastPurchaseAt,
	); err != nil {
		return nil, err
	}

	shares, err := decimal.NewFromString(sharesStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse shares_held: %w", err)
	}
	position.SharesHeld = shares

	avgPrice, err := decimal.NewFromString(avgPriceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse avg_purchase_price: %w", err)
	}
	position.AvgPurchasePrice = avgPrice

	return &position, nil
}
