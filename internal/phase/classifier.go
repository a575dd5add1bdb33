// Package phase maps a ticker's derived ledgers onto the 4-phase wheel
// lifecycle and accumulates lifetime earnings per phase across cycles.
package phase

import (
	"github.com/shopspring/decimal"

	"wheeltracker/internal/domain"
	"wheeltracker/internal/ledger"
)

// CycleLedger pairs one cycle's event log with its rebuilt ledger.
type CycleLedger struct {
	Cycle  *domain.WheelCycle
	Events []*domain.WheelEvent
	Result *ledger.Ledger
}

// Classify folds every cycle of a ticker into a phase summary.
//
// The current phase reflects the most recent unresolved state with
// precedence covered call > shares acquired > cash-secured put > none;
// called-away is a terminal event per cohort, not a sustained state, so it
// is counted rather than held. Lifetime earnings attribute option premium
// to the phase that produced it (puts to phase 1, calls to phase 3) and
// realized stock P&L to the closing mechanism (manual sales to phase 2,
// call-away closes to phase 4); the four buckets sum to the ticker's total
// realized P&L.
func Classify(ticker string, cycles []CycleLedger) *domain.PhaseSummary {
	s := &domain.PhaseSummary{
		Ticker:       ticker,
		CurrentPhase: domain.PhaseNone,
		LifetimeEarnings: map[domain.Phase]decimal.Decimal{
			domain.PhaseCashSecuredPut: decimal.Zero,
			domain.PhaseSharesAcquired: decimal.Zero,
			domain.PhaseCoveredCall:    decimal.Zero,
			domain.PhaseCalledAway:     decimal.Zero,
		},
	}

	var anyCovered, anyUncovered, anyReserved bool
	for _, c := range cycles {
		if c.Result == nil {
			continue
		}
		for _, l := range c.Result.Lots {
			switch l.Status {
			case domain.LotOpenCovered:
				anyCovered = true
			case domain.LotOpenUncovered:
				anyUncovered = true
			case domain.LotClosedSold:
				s.LifetimeEarnings[domain.PhaseSharesAcquired] = s.LifetimeEarnings[domain.PhaseSharesAcquired].
					Add(l.ExitPrice.Sub(l.CostBasis).Mul(decimal.NewFromInt(l.Shares)))
			case domain.LotClosedCalledAway:
				s.LifetimeEarnings[domain.PhaseCalledAway] = s.LifetimeEarnings[domain.PhaseCalledAway].
					Add(l.ExitPrice.Sub(l.CostBasis).Mul(decimal.NewFromInt(l.Shares)))
			}
		}
		if len(c.Result.Reservations) > 0 {
			anyReserved = true
		}
		calledAway := false
		byID := domain.EventIndex(c.Events)
		for _, ev := range c.Events {
			contracts := decimal.NewFromInt(int64(ev.AbsContracts()))
			switch ev.Type {
			case domain.EventSellPut:
				s.LifetimeEarnings[domain.PhaseCashSecuredPut] = s.LifetimeEarnings[domain.PhaseCashSecuredPut].
					Add(ev.Premium.Mul(contracts)).Sub(ev.Fees)
			case domain.EventPutExpired:
				s.LifetimeEarnings[domain.PhaseCashSecuredPut] = s.LifetimeEarnings[domain.PhaseCashSecuredPut].Sub(ev.Fees)
			case domain.EventSellCall:
				s.LifetimeEarnings[domain.PhaseCoveredCall] = s.LifetimeEarnings[domain.PhaseCoveredCall].
					Add(ev.Premium.Mul(contracts)).Sub(ev.Fees)
			case domain.EventBuyToClose:
				contracts = decimal.NewFromInt(int64(ev.ResolvedContracts(byID)))
				s.LifetimeEarnings[domain.PhaseCoveredCall] = s.LifetimeEarnings[domain.PhaseCoveredCall].
					Sub(ev.Premium.Mul(contracts)).Sub(ev.Fees)
			case domain.EventCallExpired:
				s.LifetimeEarnings[domain.PhaseCoveredCall] = s.LifetimeEarnings[domain.PhaseCoveredCall].Sub(ev.Fees)
			case domain.EventCallAssigned:
				calledAway = true
			}
		}
		if calledAway {
			s.CalledAwayCount++
		}
	}

	switch {
	case anyCovered:
		s.CurrentPhase = domain.PhaseCoveredCall
	case anyUncovered:
		s.CurrentPhase = domain.PhaseSharesAcquired
	case anyReserved:
		s.CurrentPhase = domain.PhaseCashSecuredPut
	}
	return s
}
