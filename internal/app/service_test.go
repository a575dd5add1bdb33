package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheeltracker/internal/domain"
	"wheeltracker/internal/ledger"
	"wheeltracker/internal/ports"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// stubStore implements both repository ports from in-memory fixtures.
type stubStore struct {
	cycles []*domain.WheelCycle
	events map[string][]*domain.WheelEvent
}

func (s *stubStore) ListCycles(ctx context.Context) ([]*domain.WheelCycle, error) {
	return s.cycles, nil
}

func (s *stubStore) FindCycleByID(ctx context.Context, id string) (*domain.WheelCycle, error) {
	for _, c := range s.cycles {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (s *stubStore) FindCyclesByTicker(ctx context.Context, ticker string) ([]*domain.WheelCycle, error) {
	var out []*domain.WheelCycle
	for _, c := range s.cycles {
		if c.Ticker == ticker {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubStore) ListEvents(ctx context.Context, cycleID string) ([]*domain.WheelEvent, error) {
	return s.events[cycleID], nil
}

// stubPrices implements ports.PriceSource with a fixed answer.
type stubPrices struct {
	price *decimal.Decimal
	err   error
}

func (s *stubPrices) GetCurrentPrice(ctx context.Context, ticker string) (*decimal.Decimal, error) {
	return s.price, s.err
}

func day(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fixtureStore() *stubStore {
	lk := int64(1)
	return &stubStore{
		cycles: []*domain.WheelCycle{
			{ID: "c1", Ticker: "AAPL", StartDate: day(1), Status: domain.CycleOpen},
		},
		events: map[string][]*domain.WheelEvent{
			"c1": {
				{ID: 1, CycleID: "c1", Type: domain.EventSellPut, TradeDate: day(1), Contracts: -1, Strike: dec("50"), Premium: dec("200")},
				{ID: 2, CycleID: "c1", Type: domain.EventPutAssigned, TradeDate: day(10), Contracts: 1, LinkEventID: &lk},
			},
		},
	}
}

func newService(t *testing.T, store *stubStore, prices ports.PriceSource) *LedgerService {
	t.Helper()
	svc, err := NewLedgerService(&mockLogger{}, store, store, prices, nil)
	require.NoError(t, err)
	return svc
}

func TestNewLedgerService_RequiresDependencies(t *testing.T) {
	store := fixtureStore()
	_, err := NewLedgerService(nil, store, store, &stubPrices{}, nil)
	assert.Error(t, err)

	_, err = NewLedgerService(&mockLogger{}, nil, store, &stubPrices{}, nil)
	assert.Error(t, err)

	_, err = NewLedgerService(&mockLogger{}, store, store, nil, nil)
	assert.Error(t, err)
}

func TestRebuildLots_Idempotent(t *testing.T) {
	svc := newService(t, fixtureStore(), &stubPrices{})
	ctx := context.Background()

	first, diags1, err := svc.RebuildLots(ctx, "c1")
	require.NoError(t, err)
	second, diags2, err := svc.RebuildLots(ctx, "c1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, diags1, diags2)
	require.Len(t, first, 1)
	assert.True(t, first[0].CostBasis.Equal(dec("48")))
}

func TestGetMetrics_WithPrice(t *testing.T) {
	price := dec("55")
	svc := newService(t, fixtureStore(), &stubPrices{price: &price})

	m, diags, err := svc.GetMetrics(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, int64(100), m.SharesOwned)
	require.NotNil(t, m.UnrealizedPL)
	assert.True(t, m.UnrealizedPL.Equal(dec("700")), "(55-48)*100, got %s", m.UnrealizedPL)
}

func TestGetMetrics_PriceFeedDownDegrades(t *testing.T) {
	svc := newService(t, fixtureStore(), &stubPrices{err: errors.New("feed down")})

	m, diags, err := svc.GetMetrics(context.Background(), "c1")
	require.NoError(t, err, "a dead price feed must not fail the metrics call")
	assert.Nil(t, m.UnrealizedPL)

	var stale bool
	for _, d := range diags {
		if d.Code == ledger.DiagStalePrice {
			stale = true
		}
	}
	assert.True(t, stale, "missing quote surfaces as a diagnostic")
}

func TestGetMetrics_UnknownCycle(t *testing.T) {
	svc := newService(t, fixtureStore(), &stubPrices{})

	_, _, err := svc.GetMetrics(context.Background(), "nope")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestGetPhaseSummary_AggregatesCycles(t *testing.T) {
	store := fixtureStore()
	lk := int64(4)
	store.cycles = append(store.cycles, &domain.WheelCycle{ID: "c2", Ticker: "AAPL", StartDate: day(20), Status: domain.CycleClosed})
	store.events["c2"] = []*domain.WheelEvent{
		{ID: 3, CycleID: "c2", Type: domain.EventOutrightPurchase, TradeDate: day(20), Quantity: 100, Price: dec("10")},
		{ID: 4, CycleID: "c2", Type: domain.EventSellCall, TradeDate: day(21), Contracts: -1, Strike: dec("12"), Premium: dec("150")},
		{ID: 5, CycleID: "c2", Type: domain.EventCallAssigned, TradeDate: day(30), Contracts: 1, LinkEventID: &lk},
	}

	svc := newService(t, store, &stubPrices{})
	s, err := svc.GetPhaseSummary(context.Background(), "AAPL")
	require.NoError(t, err)

	// c1 still holds assigned shares; c2 resolved by call-away.
	assert.Equal(t, domain.PhaseSharesAcquired, s.CurrentPhase)
	assert.Equal(t, 1, s.CalledAwayCount)
	assert.True(t, s.LifetimeEarnings[domain.PhaseCoveredCall].Equal(dec("150")))
}

func TestDetectStrategies_UsesDefaultDetector(t *testing.T) {
	svc := newService(t, fixtureStore(), &stubPrices{})

	dets := svc.DetectStrategies([]domain.BrokerPosition{
		{Symbol: "KO", InstrumentType: domain.InstrumentStock, Quantity: 300},
	})
	require.Len(t, dets, 1)
	assert.Equal(t, domain.StrategyNakedStock, dets[0].Strategy)
}

func TestSplitTaxLots(t *testing.T) {
	svc := newService(t, fixtureStore(), &stubPrices{})

	lots := svc.SplitTaxLots(150, dec("10"), dec("11"))
	require.Len(t, lots, 2)
	assert.True(t, lots[1].IsRemainder)
}
