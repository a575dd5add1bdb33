package domain

import "github.com/shopspring/decimal"

// Metrics is a derived snapshot of a cycle's financial state. It is
// recomputed on demand from the lot ledger plus an externally supplied
// current price and never persisted.
//
// Pointer fields are nil when undefined (no open shares, no price) rather
// than zero, so missing data is never presented as false precision.
type Metrics struct {
	SharesOwned        int64            // Shares across open lots
	AverageCostBasis   *decimal.Decimal // Share-weighted, nil when no shares owned
	TotalCostRemaining decimal.Decimal  // Σ basis × shares over open lots
	NetOptionsCashflow decimal.Decimal  // Lifetime signed option premium flow minus option fees
	RealizedStockPL    decimal.Decimal  // Σ (exit − basis) × shares over closed lots
	TotalRealizedPL    decimal.Decimal  // RealizedStockPL + NetOptionsCashflow
	CurrentPrice       *decimal.Decimal // External input, nil when unavailable
	UnrealizedPL       *decimal.Decimal // Nil when price unknown or nothing owned
}
