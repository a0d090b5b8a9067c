package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DuplicateFundError is returned when creating a fund whose name is taken.
type DuplicateFundError struct {
	Name string
}

func (e *DuplicateFundError) Error() string {
	return fmt.Sprintf("fund with name %q already exists", e.Name)
}

// FundNotFoundError is returned when an operation references an unknown fund.
type FundNotFoundError struct {
	Name string
}

func (e *FundNotFoundError) Error() string {
	return fmt.Sprintf("fund %q not found", e.Name)
}

// InsufficientFundsError is returned when a buy exceeds the fund's cash.
// It carries the cost of the trade and the cash actually available.
type InsufficientFundsError struct {
	FundName  string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient cash in fund %q: needed %s, available %s",
		e.FundName, e.Required, e.Available)
}

// InsufficientSharesError is returned when a sell exceeds the held shares.
// Available is zero when no position exists for the ticker.
type InsufficientSharesError struct {
	FundName  string
	Ticker    string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("cannot sell %s shares of %s from fund %q: only %s available",
		e.Requested, e.Ticker, e.FundName, e.Available)
}

// PriceUnavailableError is returned when the price oracle cannot supply a
// quote for a ticker. The underlying oracle failure is kept for unwrapping.
type PriceUnavailableError struct {
	Ticker string
	Err    error
}

func (e *PriceUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no price available for ticker %s: %v", e.Ticker, e.Err)
	}
	return fmt.Sprintf("no price available for ticker %s", e.Ticker)
}

func (e *PriceUnavailableError) Unwrap() error {
	return e.Err
}
