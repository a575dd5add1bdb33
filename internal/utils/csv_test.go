package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheeltracker/internal/domain"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadEventsFromCSV(t *testing.T) {
	path := writeTempCSV(t, `ticker,event_type,trade_date,quantity,contracts,price,strike,premium,fees,link_row,notes
AAPL,SELL_PUT,2024-01-05,,-1,,48.50,210,0.65,,opening put
AAPL,PUT_ASSIGNED,2024-02-16,,1,,,,,1,assigned at expiry
`)

	records, err := ReadEventsFromCSV(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "AAPL", first.Ticker)
	assert.Equal(t, domain.EventSellPut, first.Event.Type)
	assert.True(t, first.Event.TradeDate.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, -1, first.Event.Contracts)
	assert.True(t, first.Event.Strike.Equal(decimal.RequireFromString("48.50")))
	assert.True(t, first.Event.Fees.Equal(decimal.RequireFromString("0.65")))
	assert.Zero(t, first.LinkRow)
	assert.Equal(t, "opening put", first.Event.Notes)

	second := records[1]
	assert.Equal(t, domain.EventPutAssigned, second.Event.Type)
	assert.Equal(t, 1, second.LinkRow)
	assert.True(t, second.Event.Premium.IsZero(), "empty money columns parse as zero")
}

func TestReadEventsFromCSV_ForwardLinkRejected(t *testing.T) {
	path := writeTempCSV(t, `ticker,event_type,trade_date,quantity,contracts,price,strike,premium,fees,link_row,notes
AAPL,PUT_ASSIGNED,2024-02-16,,1,,,,,2,
AAPL,SELL_PUT,2024-01-05,,-1,,48.50,210,,,
`)

	_, err := ReadEventsFromCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "link_row")
}

func TestReadEventsFromCSV_BadDate(t *testing.T) {
	path := writeTempCSV(t, `ticker,event_type,trade_date,quantity,contracts,price,strike,premium,fees,link_row,notes
AAPL,SELL_PUT,05/01/2024,,-1,,48.50,210,,,
`)

	_, err := ReadEventsFromCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trade_date")
}

func TestReadPositionsFromCSV(t *testing.T) {
	path := writeTempCSV(t, `symbol,instrument_type,strike,expiration,quantity,market_value
AAPL,stock,,,100,19000
AAPL,call,200,2024-06-21,-1,-350.50
`)

	positions, err := ReadPositionsFromCSV(path)
	require.NoError(t, err)
	require.Len(t, positions, 2)

	assert.Equal(t, domain.InstrumentStock, positions[0].InstrumentType)
	assert.Nil(t, positions[0].Strike)
	assert.Nil(t, positions[0].Expiration)
	assert.Equal(t, int64(100), positions[0].Quantity)

	call := positions[1]
	assert.Equal(t, domain.InstrumentCall, call.InstrumentType)
	require.NotNil(t, call.Strike)
	assert.True(t, call.Strike.Equal(decimal.RequireFromString("200")))
	require.NotNil(t, call.Expiration)
	assert.Equal(t, int64(-1), call.Quantity)
	assert.True(t, call.MarketValue.Equal(decimal.RequireFromString("-350.50")))
}

func TestWriteLotsToCSV_RoundTripShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lots.csv")
	lots := []*domain.Lot{
		{
			Number:        1,
			SourceEventID: 2,
			Method:        domain.MethodPutAssignment,
			AcquireDate:   time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC),
			Shares:        100,
			CostBasis:     decimal.RequireFromString("48"),
			Status:        domain.LotOpenUncovered,
		},
	}

	require.NoError(t, WriteLotsToCSV(lots, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "number,source_event,method")
	assert.Contains(t, content, "2024-02-16")
	assert.Contains(t, content, "48")
}
