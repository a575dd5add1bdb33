// Package taxlot partitions a raw share quantity into deterministic
// 100-share sub-lots for display and export. It is stateless and has no
// event-log dependency.
package taxlot

import (
	"github.com/shopspring/decimal"

	"wheeltracker/internal/domain"
)

// SplitIntoLots produces floor(totalShares/100) lots of exactly 100 shares
// plus one remainder lot of totalShares mod 100 (omitted when zero). Every
// lot inherits the same average and current price; market value, P&L and
// P&L percent are computed per lot. Numbering starts at 1; the remainder
// is flagged, not numbered in the main sequence.
func SplitIntoLots(totalShares int64, averagePrice, currentPrice decimal.Decimal) []domain.TaxLot {
	if totalShares <= 0 {
		return nil
	}

	full := totalShares / domain.SharesPerContract
	remainder := totalShares % domain.SharesPerContract

	lots := make([]domain.TaxLot, 0, full+1)
	for n := int64(1); n <= full; n++ {
		lots = append(lots, makeLot(int(n), domain.SharesPerContract, averagePrice, currentPrice, false))
	}
	if remainder > 0 {
		lots = append(lots, makeLot(0, remainder, averagePrice, currentPrice, true))
	}
	return lots
}

func makeLot(number int, shares int64, avg, current decimal.Decimal, remainder bool) domain.TaxLot {
	qty := decimal.NewFromInt(shares)
	pl := current.Sub(avg).Mul(qty)
	plPct := decimal.Zero
	if avg.IsPositive() {
		plPct = current.Sub(avg).Div(avg).Mul(decimal.NewFromInt(100))
	}
	return domain.TaxLot{
		Number:       number,
		Shares:       shares,
		AveragePrice: avg,
		CurrentPrice: current,
		MarketValue:  current.Mul(qty),
		PL:           pl,
		PLPercent:    plPct,
		IsRemainder:  remainder,
	}
}
