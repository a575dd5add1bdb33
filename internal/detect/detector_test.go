package detect

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheeltracker/internal/domain"
)

func stock(sym string, qty int64) domain.BrokerPosition {
	return domain.BrokerPosition{Symbol: sym, InstrumentType: domain.InstrumentStock, Quantity: qty}
}

func option(sym string, typ domain.InstrumentType, qty int64, strike string) domain.BrokerPosition {
	s := decimal.RequireFromString(strike)
	exp := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
	return domain.BrokerPosition{Symbol: sym, InstrumentType: typ, Quantity: qty, Strike: &s, Expiration: &exp}
}

func TestDetect_Classification(t *testing.T) {
	tests := []struct {
		name       string
		positions  []domain.BrokerPosition
		strategy   domain.Strategy
		confidence domain.Confidence
	}{
		{
			name: "clean covered call",
			positions: []domain.BrokerPosition{
				stock("AAPL", 100),
				option("AAPL", domain.InstrumentCall, -1, "200"),
			},
			strategy:   domain.StrategyCoveredCall,
			confidence: domain.ConfidenceHigh,
		},
		{
			name: "full wheel",
			positions: []domain.BrokerPosition{
				stock("MSFT", 200),
				option("MSFT", domain.InstrumentCall, -1, "450"),
				option("MSFT", domain.InstrumentPut, -1, "380"),
			},
			strategy:   domain.StrategyFullWheel,
			confidence: domain.ConfidenceHigh,
		},
		{
			name: "cash secured put",
			positions: []domain.BrokerPosition{
				option("NVDA", domain.InstrumentPut, -2, "100"),
			},
			strategy:   domain.StrategyCashSecuredPut,
			confidence: domain.ConfidenceHigh,
		},
		{
			name:       "naked stock",
			positions:  []domain.BrokerPosition{stock("KO", 340)},
			strategy:   domain.StrategyNakedStock,
			confidence: domain.ConfidenceHigh,
		},
		{
			name: "covered call with odd share count is not high",
			positions: []domain.BrokerPosition{
				stock("AMD", 150),
				option("AMD", domain.InstrumentCall, -1, "180"),
			},
			strategy:   domain.StrategyCoveredCall,
			confidence: domain.ConfidenceMedium,
		},
		{
			name: "partially backed short call above the floor",
			positions: []domain.BrokerPosition{
				stock("TSLA", 50),
				option("TSLA", domain.InstrumentCall, -1, "250"),
			},
			strategy:   domain.StrategyCoveredCall,
			confidence: domain.ConfidenceMedium,
		},
		{
			name: "barely backed short call below the floor",
			positions: []domain.BrokerPosition{
				stock("TSLA", 40),
				option("TSLA", domain.InstrumentCall, -1, "250"),
			},
			strategy:   domain.StrategyCoveredCall,
			confidence: domain.ConfidenceLow,
		},
		{
			name: "short put beats the ragged covered-call fallback",
			positions: []domain.BrokerPosition{
				stock("PLTR", 50),
				option("PLTR", domain.InstrumentCall, -1, "30"),
				option("PLTR", domain.InstrumentPut, -1, "20"),
			},
			strategy:   domain.StrategyCashSecuredPut,
			confidence: domain.ConfidenceMedium,
		},
		{
			name: "short put with a sub-lot stock position",
			positions: []domain.BrokerPosition{
				stock("F", 30),
				option("F", domain.InstrumentPut, -1, "11"),
			},
			strategy:   domain.StrategyCashSecuredPut,
			confidence: domain.ConfidenceMedium,
		},
		{
			name: "option row missing strike never scores high",
			positions: []domain.BrokerPosition{
				stock("INTC", 100),
				{Symbol: "INTC", InstrumentType: domain.InstrumentCall, Quantity: -1},
			},
			strategy:   domain.StrategyCoveredCall,
			confidence: domain.ConfidenceMedium,
		},
	}

	d := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dets := d.Detect(tt.positions)
			require.Len(t, dets, 1)
			assert.Equal(t, tt.strategy, dets[0].Strategy)
			assert.Equal(t, tt.confidence, dets[0].Confidence)
		})
	}
}

func TestDetect_LongOptionsProduceNoDetection(t *testing.T) {
	d := New(DefaultConfig())
	dets := d.Detect([]domain.BrokerPosition{
		option("SPY", domain.InstrumentCall, 2, "500"),
	})
	assert.Empty(t, dets)
}

func TestDetect_TickersAreIndependentAndSorted(t *testing.T) {
	d := New(DefaultConfig())
	dets := d.Detect([]domain.BrokerPosition{
		stock("MSFT", 100),
		option("MSFT", domain.InstrumentCall, -1, "450"),
		stock("AAPL", 200),
	})

	require.Len(t, dets, 2)
	assert.Equal(t, "AAPL", dets[0].Ticker)
	assert.Equal(t, domain.StrategyNakedStock, dets[0].Strategy)
	assert.Equal(t, "MSFT", dets[1].Ticker)
	assert.Equal(t, domain.StrategyCoveredCall, dets[1].Strategy)
}

func TestNew_ClampsInvalidFloor(t *testing.T) {
	d := New(Config{PartialCoverageFloor: -1})
	assert.Equal(t, DefaultConfig().PartialCoverageFloor, d.cfg.PartialCoverageFloor)
}
