package taxlot

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSplitIntoLots(t *testing.T) {
	lots := SplitIntoLots(250, dec("10"), dec("12"))
	require.Len(t, lots, 3)

	for i, l := range lots[:2] {
		assert.Equal(t, i+1, l.Number)
		assert.Equal(t, int64(100), l.Shares)
		assert.False(t, l.IsRemainder)
		assert.True(t, l.MarketValue.Equal(dec("1200")))
		assert.True(t, l.PL.Equal(dec("200")))
	}

	rem := lots[2]
	assert.True(t, rem.IsRemainder)
	assert.Zero(t, rem.Number)
	assert.Equal(t, int64(50), rem.Shares)
	assert.True(t, rem.MarketValue.Equal(dec("600")))
	assert.True(t, rem.PL.Equal(dec("100")))
	assert.True(t, rem.PLPercent.Equal(dec("20")))
}

func TestSplitIntoLots_ExactMultiple(t *testing.T) {
	lots := SplitIntoLots(200, dec("10"), dec("9"))
	require.Len(t, lots, 2)
	for _, l := range lots {
		assert.False(t, l.IsRemainder)
		assert.True(t, l.PL.Equal(dec("-100")))
		assert.True(t, l.PLPercent.Equal(dec("-10")))
	}
}

func TestSplitIntoLots_SubLotPosition(t *testing.T) {
	lots := SplitIntoLots(40, dec("25"), dec("25"))
	require.Len(t, lots, 1)
	assert.True(t, lots[0].IsRemainder)
	assert.Equal(t, int64(40), lots[0].Shares)
	assert.True(t, lots[0].PL.IsZero())
}

func TestSplitIntoLots_NoShares(t *testing.T) {
	assert.Nil(t, SplitIntoLots(0, dec("10"), dec("12")))
	assert.Nil(t, SplitIntoLots(-5, dec("10"), dec("12")))
}

func TestSplitIntoLots_ZeroAveragePriceGuardsPercent(t *testing.T) {
	lots := SplitIntoLots(100, dec("0"), dec("12"))
	require.Len(t, lots, 1)
	assert.True(t, lots[0].PLPercent.IsZero())
	assert.True(t, lots[0].PL.Equal(dec("1200")))
}
