package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fund represents a fund entity in the domain layer: a named pool of cash
// plus the stock positions bought with it.
type Fund struct {
	ID        uuid.UUID
	Name      string // globally unique
	Cash      decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate ensures the fund adheres to domain rules
// Returns an error if validation fails
func (f *Fund) Validate() error {
	if f.Name == "" {
		return errors.New("fund name cannot be empty")
	}

	// Cash balance must never go negative
	if f.Cash.IsNegative() {
		return errors.New("fund cash balance cannot be negative")
	}

	return nil
}

// Debit removes amount from the fund's cash balance.
// The caller is responsible for checking affordability first; Debit still
// refuses to drive the balance negative.
func (f *Fund) Debit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.New("debit amount cannot be negative")
	}
	if f.Cash.LessThan(amount) {
		return errors.New("debit would make fund cash balance negative")
	}
	f.Cash = f.Cash.Sub(amount)
	return nil
}

// Credit adds amount to the fund's cash balance.
func (f *Fund) Credit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.New("credit amount cannot be negative")
	}
	f.Cash = f.Cash.Add(amount)
	return nil
}
