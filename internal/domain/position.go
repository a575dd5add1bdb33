package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BrokerPosition is one row of a raw broker position snapshot, consumed by
// the strategy detector when no event history exists yet.
type BrokerPosition struct {
	Symbol         string
	InstrumentType InstrumentType
	Strike         *decimal.Decimal // Nil for stock positions
	Expiration     *time.Time       // Nil for stock positions
	Quantity       int64            // Signed: negative = short
	MarketValue    decimal.Decimal
}

// IsShortOption reports whether the position is a short call or put.
func (p *BrokerPosition) IsShortOption() bool {
	return p.Quantity < 0 && (p.InstrumentType == InstrumentCall || p.InstrumentType == InstrumentPut)
}

// Detection is the classifier's verdict for one ticker's positions.
type Detection struct {
	Ticker     string
	Strategy   Strategy
	Confidence Confidence
	Positions  []BrokerPosition // The snapshot rows that produced the verdict
}
