package ledger

import "fmt"

// DiagCode classifies a per-event diagnostic raised during replay.
type DiagCode string

const (
	// DiagUnmatchedEvent: a closing/covering event had no eligible target
	// lot (or too few). Recoverable; the event stays in the log unresolved.
	DiagUnmatchedEvent DiagCode = "UNMATCHED_EVENT"
	// DiagInsufficientCollateral: an assignment references a put whose
	// collateral was released or never existed. Indicates log corruption;
	// surfaced as a data-integrity warning, not fatal.
	DiagInsufficientCollateral DiagCode = "INSUFFICIENT_COLLATERAL"
	// DiagInvalidEvent: the event failed field validation and was skipped.
	DiagInvalidEvent DiagCode = "INVALID_EVENT"
	// DiagCoverageCanceled: a manual share sale closed a covered lot, so
	// its open short call no longer has backing shares.
	DiagCoverageCanceled DiagCode = "COVERAGE_CANCELED"
	// DiagStalePrice: no current price was available; unrealized P&L is
	// reported as nil rather than zero.
	DiagStalePrice DiagCode = "STALE_PRICE"
)

// Diagnostic is a structured, non-fatal problem report attached to a
// rebuild result. The builder never aborts on a single bad event; it
// collects diagnostics alongside the best-effort ledger so the rest of the
// log remains usable.
type Diagnostic struct {
	Code    DiagCode
	EventID int64 // Offending event, 0 when not event-specific
	Message string
}

func (d Diagnostic) String() string {
	if d.EventID == 0 {
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return fmt.Sprintf("%s (event %d): %s", d.Code, d.EventID, d.Message)
}
