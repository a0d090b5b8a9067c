package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceOracle is the external source of the latest market price for a
// ticker. Implementations must honor ctx cancellation; failure to obtain a
// quote (including cancellation) is translated by the engine into a
// PriceUnavailableError without any ledger mutation.
type PriceOracle interface {
	Quote(ctx context.Context, ticker string) (decimal.Decimal, error)
}
