package ledger

import (
	"github.com/shopspring/decimal"

	"wheeltracker/internal/domain"
)

// ComputeMetrics derives a cycle's financial snapshot from its lots, its
// full event history, and an optional externally supplied current price.
// A nil price yields a nil unrealized P&L, never zero, so a missing quote
// cannot masquerade as a flat position.
func ComputeMetrics(lots []*domain.Lot, events []*domain.WheelEvent, currentPrice *decimal.Decimal) *domain.Metrics {
	m := &domain.Metrics{
		TotalCostRemaining: decimal.Zero,
		NetOptionsCashflow: NetOptionsCashflow(events),
		RealizedStockPL:    decimal.Zero,
		CurrentPrice:       currentPrice,
	}

	for _, l := range lots {
		switch {
		case l.IsOpen():
			m.SharesOwned += l.Shares
			m.TotalCostRemaining = m.TotalCostRemaining.Add(l.CostTotal())
		case l.Status.IsClosed():
			m.RealizedStockPL = m.RealizedStockPL.Add(
				l.ExitPrice.Sub(l.CostBasis).Mul(decimal.NewFromInt(l.Shares)))
		}
	}

	if m.SharesOwned > 0 {
		avg := m.TotalCostRemaining.Div(decimal.NewFromInt(m.SharesOwned))
		m.AverageCostBasis = &avg
	}
	m.TotalRealizedPL = m.RealizedStockPL.Add(m.NetOptionsCashflow)

	if currentPrice != nil && m.SharesOwned > 0 && m.AverageCostBasis != nil {
		u := currentPrice.Sub(*m.AverageCostBasis).Mul(decimal.NewFromInt(m.SharesOwned))
		m.UnrealizedPL = &u
	}
	return m
}

// NetOptionsCashflow sums the lifetime signed option premium flow:
// premiums received minus premiums paid minus option-event fees,
// independent of lot state. Stock-event fees are excluded here: purchase
// fees are capitalized into cost basis and sale fees are netted in the
// per-lot realized P&L, so each dollar is counted exactly once.
func NetOptionsCashflow(events []*domain.WheelEvent) decimal.Decimal {
	byID := domain.EventIndex(events)
	total := decimal.Zero
	for _, ev := range events {
		if !ev.Type.IsOption() {
			continue
		}
		contracts := decimal.NewFromInt(int64(ev.AbsContracts()))
		switch ev.Type {
		case domain.EventSellPut, domain.EventSellCall:
			total = total.Add(ev.Premium.Mul(contracts)).Sub(ev.Fees)
		case domain.EventBuyToClose:
			// A contract-less close means the full linked position, so the
			// debit must resolve through the link or the cash paid out
			// would vanish from the total.
			contracts = decimal.NewFromInt(int64(ev.ResolvedContracts(byID)))
			total = total.Sub(ev.Premium.Mul(contracts)).Sub(ev.Fees)
		case domain.EventPutExpired, domain.EventCallExpired:
			total = total.Sub(ev.Fees)
		case domain.EventPutAssigned, domain.EventCallAssigned:
			// Assignment fees are already netted into cost basis or the
			// closing lots' realized P&L.
		}
	}
	return total
}
