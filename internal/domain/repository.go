package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNoValuations is returned when a fund has no valuation history yet.
var ErrNoValuations = errors.New("no valuations recorded for fund")

// FundRepository defines the interface for fund persistence operations
type FundRepository interface {
	// Create inserts a new fund.
	// Returns *DuplicateFundError if the name is already taken.
	Create(ctx context.Context, fund *Fund) error

	// GetByName retrieves a fund by its unique name.
	// Returns *FundNotFoundError if no such fund exists.
	GetByName(ctx context.Context, name string) (*Fund, error)

	// Update persists the fund's mutable fields (cash, updated_at)
	Update(ctx context.Context, fund *Fund) error

	// List retrieves all funds
	List(ctx context.Context) ([]*Fund, error)
}

// PositionRepository defines the interface for position persistence operations
type PositionRepository interface {
	// GetByFundAndTicker retrieves the position for (fund, ticker).
	// Returns (nil, nil) when the fund holds no position for the ticker.
	GetByFundAndTicker(ctx context.Context, fundID uuid.UUID, ticker string) (*Position, error)

	// ListByFund retrieves all positions of a fund, ordered by ticker.
	// Zero-share positions are included.
	ListByFund(ctx context.Context, fundID uuid.UUID) ([]*Position, error)

	// Upsert inserts the position or updates it if (fund, ticker) exists
	Upsert(ctx context.Context, position *Position) error
}

// ValuationRepository defines the interface for valuation history persistence.
// Valuations are append-only: there is no update or delete.
type ValuationRepository interface {
	// Add appends a new valuation snapshot
	Add(ctx context.Context, valuation *Valuation) error

	// ListByFund retrieves valuations of a fund ordered by valuation time
	// descending, with limit/offset pagination
	ListByFund(ctx context.Context, fundID uuid.UUID, limit, offset int) ([]*Valuation, error)

	// GetLatest retrieves the most recent valuation for a fund.
	// Returns ErrNoValuations when the fund has no valuation history.
	GetLatest(ctx context.Context, fundID uuid.UUID) (*Valuation, error)
}

// OperationRepository defines the interface for the audit-log persistence.
// Operations are append-only: there is no update or delete.
type OperationRepository interface {
	// Add appends a new operation record
	Add(ctx context.Context, operation *Operation) error

	// ListByFund retrieves operations of a fund ordered by occurrence time
	// descending, with limit/offset pagination
	ListByFund(ctx context.Context, fundID uuid.UUID, limit, offset int) ([]*Operation, error)

	// CountByFund returns the total number of operations recorded for a fund
	CountByFund(ctx context.Context, fundID uuid.UUID) (int, error)
}

// TxManager runs a unit of work as a single all-or-nothing transaction
// against the ledger store. Repository calls made with the context passed to
// fn join that transaction; if fn returns an error nothing is committed.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
