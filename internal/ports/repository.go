package ports

import (
	"context"

	"wheeltracker/internal/domain"
)

// CycleRepository defines read access to wheel cycles. The engine only
// reads; cycle mutation happens outside this core.
type CycleRepository interface {
	// ListCycles retrieves all cycles, ordered by start date ascending.
	ListCycles(ctx context.Context) ([]*domain.WheelCycle, error)
	// FindCycleByID retrieves a cycle by its identifier.
	// Returns nil, nil if not found.
	FindCycleByID(ctx context.Context, id string) (*domain.WheelCycle, error)
	// FindCyclesByTicker retrieves every cycle (open and closed) for a
	// ticker, ordered by start date ascending.
	FindCyclesByTicker(ctx context.Context, ticker string) ([]*domain.WheelCycle, error)
}

// EventRepository defines read-only ordered access to a cycle's trade
// events. Events come back sorted by trade date, insertion order breaking
// ties, which is the replay order the lot builder depends on.
type EventRepository interface {
	ListEvents(ctx context.Context, cycleID string) ([]*domain.WheelEvent, error)
}
