// Package app wires the pure derivation components to the event store and
// price feed ports. Every operation re-derives from the log: there is no
// cached ledger state to invalidate, so calls are idempotent and safe to
// repeat or run concurrently for different cycles.
package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"wheeltracker/internal/detect"
	"wheeltracker/internal/domain"
	"wheeltracker/internal/ledger"
	"wheeltracker/internal/phase"
	"wheeltracker/internal/ports"
	"wheeltracker/internal/taxlot"
)

// LedgerService exposes the engine's operations to presentation code.
type LedgerService struct {
	logger   ports.Logger
	cycles   ports.CycleRepository
	events   ports.EventRepository
	prices   ports.PriceSource
	detector *detect.Detector
}

// NewLedgerService creates the service instance.
func NewLedgerService(
	logger ports.Logger,
	cycles ports.CycleRepository,
	events ports.EventRepository,
	prices ports.PriceSource,
	detector *detect.Detector,
) (*LedgerService, error) {
	if logger == nil || cycles == nil || events == nil || prices == nil {
		return nil, fmt.Errorf("missing required dependencies for LedgerService")
	}
	if detector == nil {
		detector = detect.New(detect.DefaultConfig())
	}
	return &LedgerService{
		logger:   logger,
		cycles:   cycles,
		events:   events,
		prices:   prices,
		detector: detector,
	}, nil
}

// RebuildLots re-derives a cycle's lot ledger from its event log.
// Calling it repeatedly is safe and always yields the same result for the
// same log.
func (s *LedgerService) RebuildLots(ctx context.Context, cycleID string) ([]*domain.Lot, []ledger.Diagnostic, error) {
	led, diags, err := s.rebuild(ctx, cycleID)
	if err != nil {
		return nil, nil, err
	}
	return led.Lots, diags, nil
}

// RebuildLedger is RebuildLots plus open-put reservations and collateral.
func (s *LedgerService) RebuildLedger(ctx context.Context, cycleID string) (*ledger.Ledger, []ledger.Diagnostic, error) {
	return s.rebuild(ctx, cycleID)
}

func (s *LedgerService) rebuild(ctx context.Context, cycleID string) (*ledger.Ledger, []ledger.Diagnostic, error) {
	events, err := s.events.ListEvents(ctx, cycleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load events for cycle %s: %w", cycleID, err)
	}
	led, diags := ledger.BuildLedger(events)
	for _, d := range diags {
		s.logger.Warn(ctx, "Ledger diagnostic", map[string]interface{}{"cycleID": cycleID, "diagnostic": d.String()})
	}
	return led, diags, nil
}

// GetMetrics rebuilds a cycle and derives its metrics snapshot, fetching a
// best-effort current price for the cycle's ticker. A missing price is
// reported as a stale-price diagnostic and nil unrealized P&L, never zero.
func (s *LedgerService) GetMetrics(ctx context.Context, cycleID string) (*domain.Metrics, []ledger.Diagnostic, error) {
	cycle, err := s.cycles.FindCycleByID(ctx, cycleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load cycle %s: %w", cycleID, err)
	}
	if cycle == nil {
		return nil, nil, fmt.Errorf("cycle %s: %w", cycleID, ports.ErrNotFound)
	}

	events, err := s.events.ListEvents(ctx, cycleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load events for cycle %s: %w", cycleID, err)
	}
	lots, diags := ledger.BuildLots(events)

	price := s.fetchPrice(ctx, cycle.Ticker)
	if price == nil {
		diags = append(diags, ledger.Diagnostic{
			Code:    ledger.DiagStalePrice,
			Message: fmt.Sprintf("no current price for %s; unrealized P&L unavailable", cycle.Ticker),
		})
	}
	return ledger.ComputeMetrics(lots, events, price), diags, nil
}

// fetchPrice asks the price source for a quote, degrading to nil on any
// failure. The engine never fails a metrics call over a missing quote.
func (s *LedgerService) fetchPrice(ctx context.Context, ticker string) *decimal.Decimal {
	price, err := s.prices.GetCurrentPrice(ctx, ticker)
	if err != nil {
		s.logger.Warn(ctx, "Price fetch failed, unrealized P&L will be unavailable",
			map[string]interface{}{"ticker": ticker, "error": err.Error()})
		return nil
	}
	return price
}

// GetPhaseSummary rebuilds every cycle of a ticker and classifies its
// wheel phase plus lifetime per-phase earnings.
func (s *LedgerService) GetPhaseSummary(ctx context.Context, ticker string) (*domain.PhaseSummary, error) {
	cycles, err := s.cycles.FindCyclesByTicker(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to load cycles for ticker %s: %w", ticker, err)
	}

	cycleLedgers := make([]phase.CycleLedger, 0, len(cycles))
	for _, c := range cycles {
		events, err := s.events.ListEvents(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load events for cycle %s: %w", c.ID, err)
		}
		led, diags := ledger.BuildLedger(events)
		for _, d := range diags {
			s.logger.Warn(ctx, "Ledger diagnostic", map[string]interface{}{"cycleID": c.ID, "diagnostic": d.String()})
		}
		cycleLedgers = append(cycleLedgers, phase.CycleLedger{Cycle: c, Events: events, Result: led})
	}
	return phase.Classify(ticker, cycleLedgers), nil
}

// DetectStrategies classifies a raw broker position snapshot. No event
// history is consulted.
func (s *LedgerService) DetectStrategies(positions []domain.BrokerPosition) []domain.Detection {
	return s.detector.Detect(positions)
}

// SplitTaxLots partitions a share quantity into display tax lots.
func (s *LedgerService) SplitTaxLots(totalShares int64, avgPrice, currentPrice decimal.Decimal) []domain.TaxLot {
	return taxlot.SplitIntoLots(totalShares, avgPrice, currentPrice)
}
