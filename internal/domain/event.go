package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Validation errors for malformed event fields. Events failing validation
// are rejected at ingestion, never silently coerced.
var (
	ErrNegativePrice   = errors.New("price, strike, premium and fees must not be negative")
	ErrInvalidQuantity = errors.New("event quantity or contract count is invalid for its type")
	ErrUnknownType     = errors.New("unknown event type")
)

// WheelEvent is an immutable record of one trade action. Events are
// append-only; corrections are recorded as new events. The ordering key is
// trade date, with insertion order (ID) breaking ties.
type WheelEvent struct {
	ID          int64           // Assigned by the event store, monotonically increasing
	CycleID     string          // Owning wheel cycle
	Type        EventType       // Which trade action this records
	TradeDate   time.Time       // When the trade happened
	Quantity    int64           // Shares moved, signed (sales negative)
	Contracts   int             // Option contracts, signed (negative = short)
	Price       decimal.Decimal // Price per share for stock transactions
	Strike      decimal.Decimal // Option strike, zero for stock events
	Premium     decimal.Decimal // Premium per contract, zero for stock events
	Fees        decimal.Decimal // Broker fees for this event
	LinkEventID *int64          // Event this one resolves (e.g., the put an assignment assigns)
	Notes       string
}

// AbsContracts returns the unsigned contract count.
func (e *WheelEvent) AbsContracts() int {
	if e.Contracts < 0 {
		return -e.Contracts
	}
	return e.Contracts
}

// AbsQuantity returns the unsigned share quantity.
func (e *WheelEvent) AbsQuantity() int64 {
	if e.Quantity < 0 {
		return -e.Quantity
	}
	return e.Quantity
}

// PremiumPerShare converts the per-contract premium to a per-share amount.
func (e *WheelEvent) PremiumPerShare() decimal.Decimal {
	return e.Premium.Div(decimal.NewFromInt(SharesPerContract))
}

// Validate enforces the per-variant required fields of the event union.
// Each event type only carries the fields that make sense for it; anything
// malformed is rejected here rather than patched up downstream.
func (e *WheelEvent) Validate() error {
	if e.Price.IsNegative() || e.Strike.IsNegative() || e.Premium.IsNegative() || e.Fees.IsNegative() {
		return fmt.Errorf("event %d (%s): %w", e.ID, e.Type, ErrNegativePrice)
	}

	switch e.Type {
	case EventSellPut, EventSellCall:
		if e.Contracts == 0 {
			return fmt.Errorf("event %d (%s): contracts required: %w", e.ID, e.Type, ErrInvalidQuantity)
		}
		if !e.Strike.IsPositive() {
			return fmt.Errorf("event %d (%s): strike required: %w", e.ID, e.Type, ErrNegativePrice)
		}
	case EventPutAssigned, EventCallAssigned:
		if e.Contracts == 0 {
			return fmt.Errorf("event %d (%s): contracts required: %w", e.ID, e.Type, ErrInvalidQuantity)
		}
	case EventPutExpired, EventCallExpired:
		// Contracts optional: absent means the full linked position.
	case EventBuyToClose:
		// A buy-to-close pays real money per contract, so the count must
		// be resolvable: either stated or derivable from the linked call.
		if e.Contracts == 0 && e.LinkEventID == nil {
			return fmt.Errorf("event %d (%s): contracts or link required: %w", e.ID, e.Type, ErrInvalidQuantity)
		}
	case EventOutrightPurchase:
		if e.Quantity <= 0 {
			return fmt.Errorf("event %d (%s): positive share quantity required: %w", e.ID, e.Type, ErrInvalidQuantity)
		}
		if !e.Price.IsPositive() {
			return fmt.Errorf("event %d (%s): purchase price required: %w", e.ID, e.Type, ErrNegativePrice)
		}
	case EventSellShares:
		if e.Quantity == 0 {
			return fmt.Errorf("event %d (%s): share quantity required: %w", e.ID, e.Type, ErrInvalidQuantity)
		}
		if !e.Price.IsPositive() {
			return fmt.Errorf("event %d (%s): sale price required: %w", e.ID, e.Type, ErrNegativePrice)
		}
	default:
		return fmt.Errorf("event %d: %q: %w", e.ID, e.Type, ErrUnknownType)
	}
	return nil
}

// EventIndex maps events by their store-assigned ID.
func EventIndex(events []*WheelEvent) map[int64]*WheelEvent {
	byID := make(map[int64]*WheelEvent, len(events))
	for _, ev := range events {
		byID[ev.ID] = ev
	}
	return byID
}

// ResolvedContracts returns the unsigned contract count of a close-side
// option event. An absent count means the full linked position, so it
// falls back to the linked opening event's count, then to a single
// contract.
func (e *WheelEvent) ResolvedContracts(byID map[int64]*WheelEvent) int {
	if n := e.AbsContracts(); n > 0 {
		return n
	}
	if e.LinkEventID != nil {
		if opening, ok := byID[*e.LinkEventID]; ok && opening.AbsContracts() > 0 {
			return opening.AbsContracts()
		}
	}
	return 1
}

// SortEvents orders events by trade date, breaking ties by insertion order
// (ID). The sort is stable so equal keys keep their original order.
func SortEvents(events []*WheelEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].TradeDate.Equal(events[j].TradeDate) {
			return events[i].TradeDate.Before(events[j].TradeDate)
		}
		return events[i].ID < events[j].ID
	})
}
