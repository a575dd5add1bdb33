package domain

import "github.com/shopspring/decimal"

// TaxLot is a display/export partition of a raw share quantity into
// 100-share sub-lots plus one flagged remainder. It carries no event
// history; per-lot value and P&L are computed independently.
type TaxLot struct {
	Number       int // 1-based within the main sequence; 0 for the remainder
	Shares       int64
	AveragePrice decimal.Decimal
	CurrentPrice decimal.Decimal
	MarketValue  decimal.Decimal
	PL           decimal.Decimal
	PLPercent    decimal.Decimal
	IsRemainder  bool
}
