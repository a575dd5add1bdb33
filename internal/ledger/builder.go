// Package ledger rebuilds a wheel cycle's stock lots from its ordered,
// append-only event log. The rebuild is a pure function of the log:
// identical input always yields identical output, so it can be re-run
// (and retried) freely. Option events are matched to lots by explicit
// link first, then FIFO by acquisition date, ties broken by lot number
// (which preserves original event insertion order).
package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"wheeltracker/internal/domain"
)

// Ledger is the full derived state of one cycle: realized lots, open
// cash-secured-put reservations rendered as CASH_RESERVED pseudo-lots,
// and the collateral currently tied up by them.
type Ledger struct {
	Lots           []*domain.Lot
	Reservations   []*domain.Lot
	OpenCollateral decimal.Decimal
}

// BuildLots replays the event log into lots. It never aborts on a single
// bad event: diagnostics are collected alongside the best-effort result.
func BuildLots(events []*domain.WheelEvent) ([]*domain.Lot, []Diagnostic) {
	led, diags := BuildLedger(events)
	return led.Lots, diags
}

// BuildLedger is BuildLots plus the open-put reservation view.
func BuildLedger(events []*domain.WheelEvent) (*Ledger, []Diagnostic) {
	// Work on a copy so the caller's slice order is never mutated.
	ordered := make([]*domain.WheelEvent, len(events))
	copy(ordered, events)
	domain.SortEvents(ordered)

	b := &builder{}
	for _, ev := range ordered {
		if err := ev.Validate(); err != nil {
			b.diag(DiagInvalidEvent, ev.ID, err.Error())
			continue
		}
		switch ev.Type {
		case domain.EventSellPut:
			b.sellPut(ev)
		case domain.EventPutExpired:
			b.putExpired(ev)
		case domain.EventPutAssigned:
			b.putAssigned(ev)
		case domain.EventOutrightPurchase:
			b.outrightPurchase(ev)
		case domain.EventSellCall:
			b.sellCall(ev)
		case domain.EventCallExpired:
			b.callReverted(ev, false)
		case domain.EventBuyToClose:
			b.callReverted(ev, true)
		case domain.EventCallAssigned:
			b.callAssigned(ev)
		case domain.EventSellShares:
			b.sellShares(ev)
		}
	}
	return b.result(), b.diags
}

// putState tracks one short put between its sale and its resolution.
type putState struct {
	event     *domain.WheelEvent
	contracts int
	open      bool
}

type builder struct {
	lots  []*domain.Lot
	puts  []*putState // replay order, which is already FIFO
	diags []Diagnostic
}

func (b *builder) diag(code DiagCode, eventID int64, format string, args ...interface{}) {
	b.diags = append(b.diags, Diagnostic{Code: code, EventID: eventID, Message: fmt.Sprintf(format, args...)})
}

func (b *builder) result() *Ledger {
	led := &Ledger{Lots: b.lots, OpenCollateral: decimal.Zero}
	num := len(b.lots)
	for _, p := range b.puts {
		if !p.open {
			continue
		}
		num++
		shares := int64(p.contracts) * domain.SharesPerContract
		led.Reservations = append(led.Reservations, &domain.Lot{
			Number:        num,
			SourceEventID: p.event.ID,
			Method:        domain.MethodCashSecuredPutReservation,
			AcquireDate:   p.event.TradeDate,
			Shares:        shares,
			CostBasis:     p.event.Strike,
			Status:        domain.LotCashReserved,
		})
		led.OpenCollateral = led.OpenCollateral.Add(p.event.Strike.Mul(decimal.NewFromInt(shares)))
	}
	return led
}

// findPut resolves the put an event refers to. An explicit link always
// wins; otherwise the oldest still-open put is taken.
func (b *builder) findPut(ev *domain.WheelEvent) *putState {
	if ev.LinkEventID != nil {
		for _, p := range b.puts {
			if p.event.ID == *ev.LinkEventID {
				return p
			}
		}
		return nil
	}
	for _, p := range b.puts {
		if p.open {
			return p
		}
	}
	return nil
}

func (b *builder) sellPut(ev *domain.WheelEvent) {
	b.puts = append(b.puts, &putState{event: ev, contracts: ev.AbsContracts(), open: true})
}

func (b *builder) putExpired(ev *domain.WheelEvent) {
	p := b.findPut(ev)
	if p == nil || !p.open {
		b.diag(DiagUnmatchedEvent, ev.ID, "no open short put to expire")
		return
	}
	p.open = false // collateral released, premium retained via cashflow
}

func (b *builder) putAssigned(ev *domain.WheelEvent) {
	p := b.findPut(ev)
	contracts := ev.AbsContracts()

	// Prefer the sold put's strike/premium; the assignment event may not
	// repeat them. Fall back to the event's own fields when the log is
	// corrupt so the shares are still accounted for.
	strike := ev.Strike
	premium := ev.PremiumPerShare()
	switch {
	case p == nil:
		b.diag(DiagInsufficientCollateral, ev.ID, "assignment references a put with no collateral reservation")
	case !p.open:
		b.diag(DiagInsufficientCollateral, ev.ID, "assignment references put %d whose collateral was already released", p.event.ID)
		strike = p.event.Strike
		premium = p.event.PremiumPerShare()
	default:
		p.open = false
		strike = p.event.Strike
		premium = p.event.PremiumPerShare()
		if contracts == 0 {
			contracts = p.contracts
		}
	}

	// Cost basis nets the put premium exactly once, at acquisition.
	basis := strike.Sub(premium)
	if ev.Fees.IsPositive() && contracts > 0 {
		basis = basis.Add(ev.Fees.Div(decimal.NewFromInt(int64(contracts) * domain.SharesPerContract)))
	}
	for i := 0; i < contracts; i++ {
		b.appendLot(&domain.Lot{
			SourceEventID: ev.ID,
			Method:        domain.MethodPutAssignment,
			AcquireDate:   ev.TradeDate,
			Shares:        domain.SharesPerContract,
			CostBasis:     basis,
			Status:        domain.LotOpenUncovered,
		})
	}
}

func (b *builder) outrightPurchase(ev *domain.WheelEvent) {
	qty := ev.Quantity
	basis := ev.Price.Add(ev.Fees.Div(decimal.NewFromInt(qty)))
	for full := qty / domain.SharesPerContract; full > 0; full-- {
		b.appendLot(&domain.Lot{
			SourceEventID: ev.ID,
			Method:        domain.MethodOutrightPurchase,
			AcquireDate:   ev.TradeDate,
			Shares:        domain.SharesPerContract,
			CostBasis:     basis,
			Status:        domain.LotOpenUncovered,
		})
	}
	if rem := qty % domain.SharesPerContract; rem > 0 {
		b.addRemainder(ev, basis, rem)
	}
}

// addRemainder appends the sub-100 tail of a purchase and then folds it
// into the cycle's single remainder lot.
func (b *builder) addRemainder(ev *domain.WheelEvent, basis decimal.Decimal, shares int64) {
	b.appendLot(&domain.Lot{
		SourceEventID:         ev.ID,
		Method:                domain.MethodOutrightPurchase,
		AcquireDate:           ev.TradeDate,
		Shares:                shares,
		CostBasis:             basis,
		Status:                domain.LotOpenUncovered,
		IneligibleForCoverage: true,
	})
	b.mergeRemainders()
}

// mergeRemainders keeps the invariant of at most one open sub-100 lot
// per cycle, regardless of whether the second one came from an odd-sized
// purchase or from the survivor of a partial sale. The older remainder
// absorbs the newer at weighted-average basis; on reaching 100 shares it
// is promoted to a full, coverable lot and any leftover stays behind as
// the remainder.
func (b *builder) mergeRemainders() {
	var rem *domain.Lot
	for _, l := range b.lots {
		if !l.IsOpen() || !l.IneligibleForCoverage {
			continue
		}
		if rem == nil {
			rem = l
			continue
		}
		combined := rem.Shares + l.Shares
		weighted := rem.CostBasis.Mul(decimal.NewFromInt(rem.Shares)).
			Add(l.CostBasis.Mul(decimal.NewFromInt(l.Shares))).
			Div(decimal.NewFromInt(combined))
		rem.CostBasis = weighted
		rem.NetPremium = rem.NetPremium.Add(l.NetPremium)
		l.CostBasis = weighted
		l.NetPremium = decimal.Zero

		if combined < domain.SharesPerContract {
			rem.Shares = combined
			l.Shares = 0
			continue
		}
		rem.Shares = domain.SharesPerContract
		rem.IneligibleForCoverage = false
		l.Shares = combined - domain.SharesPerContract
		if l.Shares > 0 {
			rem = l
		} else {
			rem = nil
		}
	}
	b.dropEmptyLots()
}

// dropEmptyLots removes open lots whose shares were merged away and
// renumbers the remaining sequence.
func (b *builder) dropEmptyLots() {
	kept := b.lots[:0]
	for _, l := range b.lots {
		if l.Shares == 0 && l.IsOpen() {
			continue
		}
		kept = append(kept, l)
	}
	for i, l := range kept {
		l.Number = i + 1
	}
	b.lots = kept
}

func (b *builder) sellCall(ev *domain.WheelEvent) {
	need := ev.AbsContracts()
	candidates := b.byFIFO(func(l *domain.Lot) bool {
		return l.Status == domain.LotOpenUncovered && !l.IneligibleForCoverage
	})
	if ev.LinkEventID != nil {
		candidates = linkedFirst(candidates, *ev.LinkEventID)
	}

	covered := 0
	for _, l := range candidates {
		if covered == need {
			break
		}
		l.Status = domain.LotOpenCovered
		l.Coverage = &domain.Coverage{
			EventID:         ev.ID,
			Strike:          ev.Strike,
			PremiumPerShare: ev.PremiumPerShare(),
			Open:            true,
		}
		l.NetPremium = l.NetPremium.Add(ev.Premium)
		covered++
	}
	switch {
	case covered == 0:
		b.diag(DiagUnmatchedEvent, ev.ID, "no uncovered lot available to back %d call contract(s)", need)
	case covered < need:
		b.diag(DiagUnmatchedEvent, ev.ID, "only %d of %d call contract(s) have backing lots", covered, need)
	}
}

// callReverted handles CALL_EXPIRED and BUY_TO_CLOSE: the covered lots go
// back to uncovered with cost basis unchanged. A buy-to-close debits the
// premium paid from each lot's accumulator.
func (b *builder) callReverted(ev *domain.WheelEvent, debit bool) {
	targets := b.coveredFor(ev)
	if len(targets) == 0 {
		b.diag(DiagUnmatchedEvent, ev.ID, "no covered lot matches this call event")
		return
	}
	n := ev.AbsContracts()
	if n == 0 || n > len(targets) {
		n = len(targets)
	}
	for _, l := range targets[:n] {
		l.Coverage.Open = false
		l.Status = domain.LotOpenUncovered
		if debit {
			l.NetPremium = l.NetPremium.Sub(ev.Premium)
		}
	}
}

func (b *builder) callAssigned(ev *domain.WheelEvent) {
	targets := b.coveredFor(ev)
	if len(targets) == 0 {
		b.diag(DiagUnmatchedEvent, ev.ID, "no covered lot to call away")
		return
	}
	n := ev.AbsContracts()
	if n == 0 || n > len(targets) {
		if n > len(targets) {
			b.diag(DiagUnmatchedEvent, ev.ID, "only %d of %d covered lot(s) available to call away", len(targets), n)
		}
		n = len(targets)
	}

	feesPerLot := ev.Fees.Div(decimal.NewFromInt(int64(n)))
	for _, l := range targets[:n] {
		strike := l.Coverage.Strike
		if ev.Strike.IsPositive() {
			strike = ev.Strike
		}
		eventID := ev.ID
		l.Coverage.Open = false
		l.Status = domain.LotClosedCalledAway
		l.ExitPrice = strike
		l.RealizedPL = strike.Sub(l.CostBasis).
			Mul(decimal.NewFromInt(l.Shares)).
			Add(l.NetPremium).
			Sub(feesPerLot)
		l.ClosedByEventID = &eventID
	}
}

func (b *builder) sellShares(ev *domain.WheelEvent) {
	qty := ev.AbsQuantity()
	remaining := qty

	// Uncovered lots go first; selling out of a covered lot leaves its
	// short call naked, which is flagged but honored.
	uncovered := b.byFIFO(func(l *domain.Lot) bool { return l.Status == domain.LotOpenUncovered })
	covered := b.byFIFO(func(l *domain.Lot) bool { return l.Status == domain.LotOpenCovered })
	candidates := append(uncovered, covered...)

	for _, l := range candidates {
		if remaining == 0 {
			break
		}
		if l.IsCovered() {
			b.diag(DiagCoverageCanceled, ev.ID,
				"manual sale closes covered lot %d; short call %d is no longer backed", l.Number, l.Coverage.EventID)
			l.Coverage.Open = false
			l.Status = domain.LotOpenUncovered
		}
		if remaining >= l.Shares {
			b.closeLot(l, ev, l.Shares, qty, l.NetPremium)
			remaining -= l.Shares
			continue
		}
		b.splitAndClose(l, ev, remaining, qty)
		remaining = 0
	}
	if remaining > 0 {
		b.diag(DiagUnmatchedEvent, ev.ID, "sale of %d share(s) exceeds open holdings by %d", qty, remaining)
	}
}

// closeLot marks a whole lot sold at the event's price. The sale fee is
// allocated proportionally to the shares this lot contributed.
func (b *builder) closeLot(l *domain.Lot, ev *domain.WheelEvent, shares, saleTotal int64, premium decimal.Decimal) {
	eventID := ev.ID
	feeShare := ev.Fees.Mul(decimal.NewFromInt(shares)).Div(decimal.NewFromInt(saleTotal))
	l.Status = domain.LotClosedSold
	l.ExitPrice = ev.Price
	l.RealizedPL = ev.Price.Sub(l.CostBasis).
		Mul(decimal.NewFromInt(shares)).
		Add(premium).
		Sub(feeShare)
	l.ClosedByEventID = &eventID
}

// splitAndClose realizes part of a lot: the sold portion becomes a new
// closed lot carrying its proportional share of accrued premium; the
// survivor keeps its basis and becomes the cycle's remainder.
func (b *builder) splitAndClose(l *domain.Lot, ev *domain.WheelEvent, shares, saleTotal int64) {
	premShare := l.NetPremium.Mul(decimal.NewFromInt(shares)).Div(decimal.NewFromInt(l.Shares))
	closed := &domain.Lot{
		SourceEventID: l.SourceEventID,
		Method:        l.Method,
		AcquireDate:   l.AcquireDate,
		Shares:        shares,
		CostBasis:     l.CostBasis,
		Status:        domain.LotOpenUncovered, // closeLot sets the final status
		NetPremium:    premShare,
	}
	b.appendLot(closed)
	b.closeLot(closed, ev, shares, saleTotal, premShare)

	l.Shares -= shares
	l.NetPremium = l.NetPremium.Sub(premShare)
	if l.Shares < domain.SharesPerContract {
		l.IneligibleForCoverage = true
		b.mergeRemainders()
	}
}

func (b *builder) appendLot(l *domain.Lot) {
	l.Number = len(b.lots) + 1
	b.lots = append(b.lots, l)
}

// byFIFO returns lots matching the predicate, oldest acquisition first.
// Equal dates keep lot-number order, i.e. original insertion order.
func (b *builder) byFIFO(match func(*domain.Lot) bool) []*domain.Lot {
	var out []*domain.Lot
	for _, l := range b.lots {
		if match(l) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].AcquireDate.Equal(out[j].AcquireDate) {
			return out[i].AcquireDate.Before(out[j].AcquireDate)
		}
		return out[i].Number < out[j].Number
	})
	return out
}

// coveredFor returns the covered lots an event may resolve, explicit link
// first. With a link only the matching coverage qualifies.
func (b *builder) coveredFor(ev *domain.WheelEvent) []*domain.Lot {
	return b.byFIFO(func(l *domain.Lot) bool {
		if !l.IsCovered() {
			return false
		}
		if ev.LinkEventID != nil {
			return l.Coverage.EventID == *ev.LinkEventID
		}
		return true
	})
}

// linkedFirst stable-partitions lots so those created by the linked event
// come first; the FIFO order is preserved within each half.
func linkedFirst(lots []*domain.Lot, linkID int64) []*domain.Lot {
	out := make([]*domain.Lot, 0, len(lots))
	for _, l := range lots {
		if l.SourceEventID == linkID {
			out = append(out, l)
		}
	}
	for _, l := range lots {
		if l.SourceEventID != linkID {
			out = append(out, l)
		}
	}
	return out
}
