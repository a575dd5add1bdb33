package domain

import "time"

// WheelCycle represents one ticker's wheel campaign. A cycle owns an
// ordered, append-only sequence of WheelEvents; everything else about it
// (lots, metrics, phase) is re-derivable from that log.
type WheelCycle struct {
	ID        string      // Unique identifier (UUID, assigned on creation)
	Ticker    string      // Underlying stock symbol (e.g., "AAPL")
	StartDate time.Time   // When the user started tracking this ticker
	Status    CycleStatus // open while the campaign is running, closed when fully exited
}

// IsOpen checks if the cycle is still running.
func (c *WheelCycle) IsOpen() bool {
	return c.Status == CycleOpen
}
