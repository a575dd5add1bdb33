package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceSource supplies a best-effort current price for a ticker. A nil
// price with a nil error means the quote is simply unavailable; callers
// must treat that as "unknown", never as zero. Staleness is the caller's
// concern; the engine accepts whatever it is given at call time.
type PriceSource interface {
	GetCurrentPrice(ctx context.Context, ticker string) (*decimal.Decimal, error)
}
