package domain

import "github.com/shopspring/decimal"

// PhaseSummary describes where a ticker currently sits in the wheel
// lifecycle and what each phase has earned across all of its cycles.
// Phases are not mutually exclusive across time: lifetime earnings keep
// accumulating over repeated cycles and are never reset by a rebuild.
type PhaseSummary struct {
	Ticker           string
	CurrentPhase     Phase                     // Precedence: covered call > shares acquired > cash-secured put > none
	LifetimeEarnings map[Phase]decimal.Decimal // Realized P&L / premium attributed per phase
	CalledAwayCount  int                       // How many times shares were called away (terminal event per cohort)
}
