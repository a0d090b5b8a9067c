package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/rmvieira/fundledger-backend/internal/domain"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches
const uniqueViolation = "23505"

// fundRepository implements domain.FundRepository
type fundRepository struct {
	db *DB
}

// NewFundRepository creates a new fund repository
func NewFundRepository(db *DB) domain.FundRepository {
	return &fundRepository{db: db}
}

// Create inserts a new fund
func (r *fundRepository) Create(ctx context.Context, fund *domain.Fund) error {
	query := `
		INSERT INTO funds (id, name, cash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		fund.ID,
		fund.Name,
		fund.Cash.String(),
		fund.CreatedAt,
		fund.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return &domain.DuplicateFundError{Name: fund.Name}
		}
		return fmt.Errorf("failed to create fund: %w", err)
	}

	return nil
}

// GetByName retrieves a fund by its unique name
func (r *fundRepository) GetByName(ctx context.Context, name string) (*domain.Fund, error) {
	query := `
		SELECT id, name, cash, created_at, updated_at
		FROM funds
		WHERE name = $1
	`

	fund, err := scanFund(r.db.conn(ctx).QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.FundNotFoundError{Name: name}
		}
		return nil, fmt.Errorf("failed to get fund by name: %w", err)
	}

	return fund, nil
}

// Update persists the fund's mutable fields
func (r *fundRepository) Update(ctx context.Context, fund *domain.Fund) error {
	query := `
		UPDATE funds
		SET cash = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		fund.ID,
		fund.Cash.String(),
		fund.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update fund: %w", err)
	}

	return nil
}

// List retrieves all funds ordered by name
func (r *fundRepository) List(ctx context.Context) ([]*domain.Fund, error) {
	query := `
		SELECT id, name, cash, created_at, updated_at
		FROM funds
		ORDER BY name
	`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	defer rows.Close()

	funds := make([]*domain.Fund, 0)
	for rows.Next() {
		fund, err := scanFund(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		funds = append(funds, fund)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate funds: %w", err)
	}

	return funds, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanFund reads one fund row, parsing the NUMERIC cash column through its
// string representation to avoid float rounding
func scanFund(row rowScanner) (*domain.Fund, error) {
	var fund domain.Fund
	var cashStr string

	if err := row.Scan(
		&fund.ID,
		&fund.Name,
		&cashStr,
		&fund.CreatedAt,
		&fund.UpdatedAt,
	); err != nil {
		return nil, err
	}

	cash, err := decimal.NewFromString(cashStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cash: %w", err)
	}
	fund.Cash = cash

	return &fund, nil
}
