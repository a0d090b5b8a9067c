package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Valuation is an immutable, append-only snapshot of a fund's total worth
// (cash + market value of all held positions) at a point in time.
// Valuation rows are write-once and retained indefinitely for history.
type Valuation struct {
	ID          uuid.UUID
	FundID      uuid.UUID
	ValuationAt time.Time
	TotalValue  decimal.Decimal
}
