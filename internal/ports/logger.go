package ports

import "context"

// Logger is the engine's structured logging port. The derivation core is
// pure and logs nothing; adapters, the service layer and the tooling log
// through this interface, with a stdlib-backed and a zerolog-backed
// implementation provided under internal/adapters/logger.
type Logger interface {
	// Debug logs fine-grained detail such as store lookups and appends.
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	// Info logs lifecycle events such as store startup and report runs.
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	// Warn logs degraded-but-continuing conditions, e.g. ledger
	// diagnostics or a failed price fetch.
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	// Error logs failures that abort the current operation.
	Error(ctx context.Context, err error, msg string, fields ...map[string]interface{})
}
