package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coverage records the short call currently (or formerly) sold against a lot.
type Coverage struct {
	EventID         int64           // The SELL_CALL event that opened the coverage
	Strike          decimal.Decimal // Strike of the short call
	PremiumPerShare decimal.Decimal // Premium per share credited when the call was sold
	Open            bool            // False once expired, bought back, assigned, or canceled
}

// Lot is a derived 100-share (or remainder) accounting unit. Lots are
// produced fresh on every rebuild and have no identity beyond their
// derivation order; they are never stored.
type Lot struct {
	Number                int               // Sequential per cycle, starting at 1
	SourceEventID         int64             // Event that created this lot
	Method                AcquisitionMethod // How the shares were acquired
	AcquireDate           time.Time
	Shares                int64           // Exactly 100 except the cycle's single remainder lot
	CostBasis             decimal.Decimal // Per share, net of premium credited at acquisition
	Status                LotStatus
	Coverage              *Coverage       // Non-nil once a call has been sold against the lot
	NetPremium            decimal.Decimal // Accumulated net option premium attributable to this lot
	ExitPrice             decimal.Decimal // Per share, set when closed
	RealizedPL            decimal.Decimal // Set when closed
	ClosedByEventID       *int64          // Event that closed the lot
	IneligibleForCoverage bool            // Remainder lots cannot back a standard call leg
}

// IsOpen checks whether the lot still holds shares.
func (l *Lot) IsOpen() bool {
	return l.Status.IsOpen()
}

// IsCovered checks whether the lot has a live short call against it.
func (l *Lot) IsCovered() bool {
	return l.Status == LotOpenCovered && l.Coverage != nil && l.Coverage.Open
}

// CostTotal returns the lot's total remaining cost (basis × shares).
func (l *Lot) CostTotal() decimal.Decimal {
	return l.CostBasis.Mul(decimal.NewFromInt(l.Shares))
}
