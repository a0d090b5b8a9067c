package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperationKind represents the kind of state-changing ledger action
type OperationKind string

const (
	OperationKindCreate OperationKind = "CREATE"
	OperationKindBuy    OperationKind = "BUY"
	OperationKindSell   OperationKind = "SELL"
)

// Operation is an immutable audit-log entry for a state-changing ledger
// action. It is the sole history of mutations applied to a fund and is
// never updated or deleted.
type Operation struct {
	ID         uuid.UUID
	FundID     uuid.UUID
	Ticker     string // empty for CREATE
	Kind       OperationKind
	Shares     decimal.Decimal // 0 for CREATE
	Price      decimal.Decimal // 0 for CREATE
	OccurredAt time.Time
}

// Validate ensures the operation adheres to domain rules
// Returns an error if validation fails
func (o *Operation) Validate() error {
	switch o.Kind {
	case OperationKindCreate:
		if o.Ticker != "" {
			return errors.New("CREATE operation must not reference a ticker")
		}
	case OperationKindBuy, OperationKindSell:
		if o.Ticker == "" {
			return errors.New("trade operation must reference a ticker")
		}
		if !o.Shares.IsPositive() {
			return errors.New("trade operation shares must be positive")
		}
	default:
		return errors.New("operation kind must be CREATE, BUY or SELL")
	}

	if o.Shares.IsNegative() || o.Price.IsNegative() {
		return errors.New("operation shares and price cannot be negative")
	}

	return nil
}
