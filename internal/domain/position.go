package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Position represents a fund's holding in a single ticker.
// A position with zero shares is kept in the store (never deleted) and
// simply contributes zero market value.
type Position struct {
	ID               uuid.UUID
	FundID           uuid.UUID
	Ticker           string
	SharesHeld       decimal.Decimal
	AvgPurchasePrice decimal.Decimal
	LastPurchaseAt   time.Time
}

// Validate ensures the position adheres to domain rules
// Returns an error if validation fails
func (p *Position) Validate() error {
	if p.Ticker == "" {
		return errors.New("position ticker cannot be empty")
	}

	if p.SharesHeld.IsNegative() {
		return errors.New("position shares held cannot be negative")
	}

	if p.AvgPurchasePrice.IsNegative() {
		return errors.New("position average purchase price cannot be negative")
	}

	return nil
}

// ApplyBuy folds a new purchase into the position, recomputing the
// weighted-average purchase price:
//
//	(existing_shares*existing_avg + shares*price) / (existing_shares + shares)
//
// If the resulting share sum is not positive the average falls back to the
// new trade price.
func (p *Position) ApplyBuy(shares, price decimal.Decimal, at time.Time) {
	existingValue := p.SharesHeld.Mul(p.AvgPurchasePrice)
	newValue := shares.Mul(price)
	shareSum := p.SharesHeld.Add(shares)

	if shareSum.IsPositive() {
		p.AvgPurchasePrice = existingValue.Add(newValue).Div(shareSum)
	} else {
		p.AvgPurchasePrice = price
	}

	p.SharesHeld = shareSum
	p.LastPurchaseAt = at
}

// ApplySell removes shares from the position. The average purchase price is
// left unchanged: selling does not alter the cost basis of remaining shares.
func (p *Position) ApplySell(shares decimal.Decimal) error {
	if p.SharesHeld.LessThan(shares) {
		return errors.New("sell would make position shares held negative")
	}
	p.SharesHeld = p.SharesHeld.Sub(shares)
	return nil
}

// MarketValue returns the position's value at the given unit price.
func (p *Position) MarketValue(price decimal.Decimal) decimal.Decimal {
	return price.Mul(p.SharesHeld)
}
