// Package detect classifies raw broker position snapshots into wheel
// strategy archetypes. It is the entry point used before any event log
// exists for a ticker, so it works purely from instrument types, signed
// quantities and strikes.
package detect

import (
	"sort"

	"wheeltracker/internal/domain"
)

// Config holds the heuristic thresholds behind the three-tier confidence
// levels. They are deliberately configurable rather than hard-coded.
type Config struct {
	// PartialCoverageFloor is the fraction of the required share coverage
	// below which a ragged short-option ratio drops from medium to low
	// confidence. E.g. with 0.5, one short call backed by only 40 of the
	// 100 required shares scores low, 60 shares scores medium.
	PartialCoverageFloor float64
}

// DefaultConfig returns the thresholds used when none are configured.
func DefaultConfig() Config {
	return Config{PartialCoverageFloor: 0.5}
}

// Detector classifies position snapshots.
type Detector struct {
	cfg Config
}

// New creates a detector, falling back to defaults for zero thresholds.
func New(cfg Config) *Detector {
	if cfg.PartialCoverageFloor <= 0 || cfg.PartialCoverageFloor >= 1 {
		cfg.PartialCoverageFloor = DefaultConfig().PartialCoverageFloor
	}
	return &Detector{cfg: cfg}
}

// tickerBook aggregates one ticker's snapshot rows.
type tickerBook struct {
	positions    []domain.BrokerPosition
	longShares   int64
	shortCalls   int64 // contracts, unsigned
	shortPuts    int64 // contracts, unsigned
	hasOptions   bool
	optionsClean bool // every option row carries strike and expiration
}

// Detect classifies each ticker in the snapshot, highest-specificity rule
// first: full wheel, covered call, cash-secured put, naked stock. Tickers
// with no recognizable shape produce no detection.
func (d *Detector) Detect(positions []domain.BrokerPosition) []domain.Detection {
	books := make(map[string]*tickerBook)
	var order []string
	for _, p := range positions {
		b, ok := books[p.Symbol]
		if !ok {
			b = &tickerBook{optionsClean: true}
			books[p.Symbol] = b
			order = append(order, p.Symbol)
		}
		b.positions = append(b.positions, p)
		switch p.InstrumentType {
		case domain.InstrumentStock:
			if p.Quantity > 0 {
				b.longShares += p.Quantity
			}
		case domain.InstrumentCall:
			b.hasOptions = true
			if p.Quantity < 0 {
				b.shortCalls += -p.Quantity
			}
			if p.Strike == nil || p.Expiration == nil {
				b.optionsClean = false
			}
		case domain.InstrumentPut:
			b.hasOptions = true
			if p.Quantity < 0 {
				b.shortPuts += -p.Quantity
			}
			if p.Strike == nil || p.Expiration == nil {
				b.optionsClean = false
			}
		}
	}
	sort.Strings(order)

	var out []domain.Detection
	for _, sym := range order {
		if det, ok := d.classify(sym, books[sym]); ok {
			out = append(out, det)
		}
	}
	return out
}

func (d *Detector) classify(sym string, b *tickerBook) (domain.Detection, bool) {
	det := domain.Detection{Ticker: sym, Positions: b.positions}
	coverageNeeded := b.shortCalls * domain.SharesPerContract

	switch {
	case b.shortCalls > 0 && coverageNeeded <= b.longShares && b.longShares >= domain.SharesPerContract && b.shortPuts > 0:
		det.Strategy = domain.StrategyFullWheel
		det.Confidence = d.ratioConfidence(b, coverageNeeded)
	case b.shortCalls > 0 && coverageNeeded <= b.longShares && b.longShares >= domain.SharesPerContract:
		det.Strategy = domain.StrategyCoveredCall
		det.Confidence = d.ratioConfidence(b, coverageNeeded)
	case b.shortPuts > 0 && b.longShares < domain.SharesPerContract:
		// Takes precedence over the ragged covered-call fallback: a short
		// put with no full lot behind it is a cash-secured put even when a
		// stray short call is also on the book.
		det.Strategy = domain.StrategyCashSecuredPut
		det.Confidence = d.putConfidence(b)
	case b.longShares > 0 && !b.hasOptions:
		det.Strategy = domain.StrategyNakedStock
		det.Confidence = domain.ConfidenceHigh
	case b.shortCalls > 0 && b.longShares > 0:
		// Short calls without full backing: directionally a covered call,
		// but the ratio is ragged.
		det.Strategy = domain.StrategyCoveredCall
		det.Confidence = d.partialConfidence(b.longShares, coverageNeeded)
	case b.shortPuts > 0:
		det.Strategy = domain.StrategyCashSecuredPut
		det.Confidence = domain.ConfidenceLow
	default:
		return det, false
	}
	return det, true
}

// ratioConfidence scores a fully covered call/wheel shape: high only when
// the share count is an exact multiple of 100 and every option row is
// fully specified; medium when quantities merely align.
func (d *Detector) ratioConfidence(b *tickerBook, coverageNeeded int64) domain.Confidence {
	if b.optionsClean && b.longShares%domain.SharesPerContract == 0 && coverageNeeded > 0 {
		return domain.ConfidenceHigh
	}
	return domain.ConfidenceMedium
}

// putConfidence scores a cash-secured put: high only for a bare,
// fully-specified short put; stray shares or an unbackable short call
// muddy the shape down to medium.
func (d *Detector) putConfidence(b *tickerBook) domain.Confidence {
	if !b.optionsClean {
		return domain.ConfidenceLow
	}
	if b.longShares == 0 && b.shortCalls == 0 {
		return domain.ConfidenceHigh
	}
	return domain.ConfidenceMedium
}

// partialConfidence scores a short call with insufficient backing shares.
// Never high: the ratio is not clean by definition.
func (d *Detector) partialConfidence(longShares, coverageNeeded int64) domain.Confidence {
	if coverageNeeded == 0 {
		return domain.ConfidenceLow
	}
	if float64(longShares) >= d.cfg.PartialCoverageFloor*float64(coverageNeeded) {
		return domain.ConfidenceMedium
	}
	return domain.ConfidenceLow
}
