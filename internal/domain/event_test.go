package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWheelEvent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		event   WheelEvent
		wantErr error
	}{
		{
			name:  "valid short put",
			event: WheelEvent{ID: 1, Type: EventSellPut, Contracts: -1, Strike: d("50"), Premium: d("200")},
		},
		{
			name:  "valid purchase",
			event: WheelEvent{ID: 2, Type: EventOutrightPurchase, Quantity: 150, Price: d("47.50")},
		},
		{
			name:  "expiration without contracts is fine",
			event: WheelEvent{ID: 3, Type: EventCallExpired},
		},
		{
			name:    "negative premium",
			event:   WheelEvent{ID: 4, Type: EventSellCall, Contracts: -1, Strike: d("55"), Premium: d("-10")},
			wantErr: ErrNegativePrice,
		},
		{
			name:    "short put without contracts",
			event:   WheelEvent{ID: 5, Type: EventSellPut, Strike: d("50")},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "short call without strike",
			event:   WheelEvent{ID: 6, Type: EventSellCall, Contracts: -1, Premium: d("100")},
			wantErr: ErrNegativePrice,
		},
		{
			name: "buy to close with link but no contracts",
			event: func() WheelEvent {
				lk := int64(3)
				return WheelEvent{ID: 11, Type: EventBuyToClose, Premium: d("40"), LinkEventID: &lk}
			}(),
		},
		{
			name:    "buy to close with neither contracts nor link",
			event:   WheelEvent{ID: 12, Type: EventBuyToClose, Premium: d("40")},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "assignment without contracts",
			event:   WheelEvent{ID: 7, Type: EventPutAssigned},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "purchase with zero quantity",
			event:   WheelEvent{ID: 8, Type: EventOutrightPurchase, Price: d("10")},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "sale without price",
			event:   WheelEvent{ID: 9, Type: EventSellShares, Quantity: -100},
			wantErr: ErrNegativePrice,
		},
		{
			name:    "unknown type",
			event:   WheelEvent{ID: 10, Type: EventType("DIVIDEND")},
			wantErr: ErrUnknownType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWheelEvent_Helpers(t *testing.T) {
	ev := WheelEvent{Type: EventSellPut, Contracts: -2, Quantity: -40, Premium: d("150")}
	assert.Equal(t, 2, ev.AbsContracts())
	assert.Equal(t, int64(40), ev.AbsQuantity())
	assert.True(t, ev.PremiumPerShare().Equal(d("1.5")))
}

func TestWheelEvent_ResolvedContracts(t *testing.T) {
	lk := int64(1)
	dangling := int64(99)
	opening := &WheelEvent{ID: 1, Type: EventSellCall, Contracts: -2, Strike: d("12"), Premium: d("100")}
	byID := EventIndex([]*WheelEvent{opening})

	stated := &WheelEvent{ID: 2, Type: EventBuyToClose, Contracts: 1, LinkEventID: &lk}
	assert.Equal(t, 1, stated.ResolvedContracts(byID), "a stated count always wins")

	linked := &WheelEvent{ID: 3, Type: EventBuyToClose, LinkEventID: &lk}
	assert.Equal(t, 2, linked.ResolvedContracts(byID), "absent count resolves to the linked position")

	orphan := &WheelEvent{ID: 4, Type: EventBuyToClose, LinkEventID: &dangling}
	assert.Equal(t, 1, orphan.ResolvedContracts(byID), "a dangling link falls back to one contract")
}

func TestSortEvents(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	events := []*WheelEvent{
		{ID: 3, TradeDate: d2},
		{ID: 2, TradeDate: d1},
		{ID: 1, TradeDate: d1},
	}

	SortEvents(events)

	require.Len(t, events, 3)
	assert.Equal(t, int64(1), events[0].ID, "same-day ties break by insertion order")
	assert.Equal(t, int64(2), events[1].ID)
	assert.Equal(t, int64(3), events[2].ID)
}

func TestEventType_IsOption(t *testing.T) {
	assert.True(t, EventSellPut.IsOption())
	assert.True(t, EventBuyToClose.IsOption())
	assert.False(t, EventOutrightPurchase.IsOption())
	assert.False(t, EventSellShares.IsOption())
}
