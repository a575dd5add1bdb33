package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wheeltracker/internal/domain"
	"wheeltracker/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.CycleRepository and ports.EventRepository
// using SQLite. It is the event store: the engine itself only reads, but
// the repository also carries the write side used by the import tooling
// (event mutation lives outside the derivation core).
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/wheeltracker.db" // Default path
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
			cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
			return nil, err
		}
	}

	// WAL mode for better concurrency between the report runner and tooling.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver benefits from a
	// single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Event store ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

// initializeSchema creates tables if they don't exist. Monetary columns
// are stored as decimal strings so rebuilds never inherit float drift.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS wheel_cycles (
		id TEXT PRIMARY KEY,
		ticker TEXT NOT NULL,
		start_date TIMESTAMP NOT NULL,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS wheel_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cycle_id TEXT NOT NULL REFERENCES wheel_cycles(id),
		event_type TEXT NOT NULL,
		trade_date TIMESTAMP NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 0,
		contracts INTEGER NOT NULL DEFAULT 0,
		price TEXT NOT NULL DEFAULT '0',
		strike TEXT NOT NULL DEFAULT '0',
		premium TEXT NOT NULL DEFAULT '0',
		fees TEXT NOT NULL DEFAULT '0',
		link_event_id INTEGER NULL,
		notes TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_wheel_cycles_ticker ON wheel_cycles (ticker);
	CREATE INDEX IF NOT EXISTS idx_wheel_events_cycle_order ON wheel_events (cycle_id, trade_date, id);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing event store")
		return r.db.Close()
	}
	return nil
}

// --- CycleRepository Implementation ---

// ListCycles retrieves all cycles, ordered by start date ascending.
func (r *Repository) ListCycles(ctx context.Context) ([]*domain.WheelCycle, error) {
	const query = `SELECT id, ticker, start_date, status FROM wheel_cycles ORDER BY start_date, id`
	return r.queryCycles(ctx, query)
}

// FindCycleByID retrieves a cycle by its identifier. Returns nil, nil if
// not found.
func (r *Repository) FindCycleByID(ctx context.Context, id string) (*domain.WheelCycle, error) {
	const query = `SELECT id, ticker, start_date, status FROM wheel_cycles WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	c, err := scanCycle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Cycle not found", map[string]interface{}{"cycleID": id})
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query cycle %s: %w", id, err)
	}
	return c, nil
}

// FindCyclesByTicker retrieves every cycle for a ticker, ordered by start
// date ascending.
func (r *Repository) FindCyclesByTicker(ctx context.Context, ticker string) ([]*domain.WheelCycle, error) {
	const query = `SELECT id, ticker, start_date, status FROM wheel_cycles WHERE ticker = ? ORDER BY start_date, id`
	return r.queryCycles(ctx, query, ticker)
}

func (r *Repository) queryCycles(ctx context.Context, query string, args ...interface{}) ([]*domain.WheelCycle, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycles: %w", err)
	}
	defer rows.Close()

	cycles := make([]*domain.WheelCycle, 0)
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cycle row: %w", err)
		}
		cycles = append(cycles, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cycle rows: %w", err)
	}
	return cycles, nil
}

// CreateCycle saves a new cycle, assigning a UUID when the ID is empty.
func (r *Repository) CreateCycle(ctx context.Context, c *domain.WheelCycle) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = domain.CycleOpen
	}
	const query = `INSERT INTO wheel_cycles (id, ticker, start_date, status) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.Ticker, c.StartDate, c.Status); err != nil {
		return fmt.Errorf("failed to insert cycle for ticker %s: %w", c.Ticker, err)
	}
	r.logger.Debug(ctx, "Cycle created", map[string]interface{}{"cycleID": c.ID, "ticker": c.Ticker})
	return nil
}

// --- EventRepository Implementation ---

// ListEvents retrieves a cycle's events ordered by trade date, with
// insertion order (id) breaking ties. This is the replay order.
func (r *Repository) ListEvents(ctx context.Context, cycleID string) ([]*domain.WheelEvent, error) {
	const query = `
	SELECT id, cycle_id, event_type, trade_date, quantity, contracts,
	       price, strike, premium, fees, link_event_id, notes
	FROM wheel_events
	WHERE cycle_id = ?
	ORDER BY trade_date, id`

	rows, err := r.db.QueryContext(ctx, query, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for cycle %s: %w", cycleID, err)
	}
	defer rows.Close()

	events := make([]*domain.WheelEvent, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event during ListEvents: %w", err)
		}
		events = append(events, ev)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

// CreateEvent appends an event to a cycle's log and returns its assigned
// ID. Events are validated here and rejected when malformed; the log
// never silently coerces a bad field. Used by import tooling only.
func (r *Repository) CreateEvent(ctx context.Context, ev *domain.WheelEvent) (int64, error) {
	if err := ev.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ports.ErrInvalidRequest, err)
	}
	const query = `
	INSERT INTO wheel_events (cycle_id, event_type, trade_date, quantity, contracts,
	                          price, strike, premium, fees, link_event_id, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var link sql.NullInt64
	if ev.LinkEventID != nil {
		link = sql.NullInt64{Int64: *ev.LinkEventID, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		ev.CycleID, ev.Type, ev.TradeDate, ev.Quantity, ev.Contracts,
		ev.Price.String(), ev.Strike.String(), ev.Premium.String(), ev.Fees.String(),
		link, ev.Notes)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event for cycle %s: %w", ev.CycleID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for event in cycle %s: %w", ev.CycleID, err)
	}
	ev.ID = id
	r.logger.Debug(ctx, "Event appended", map[string]interface{}{"eventID": id, "cycleID": ev.CycleID, "type": ev.Type})
	return id, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCycle(s scanner) (*domain.WheelCycle, error) {
	c := &domain.WheelCycle{}
	var status string
	if err := s.Scan(&c.ID, &c.Ticker, &c.StartDate, &status); err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	c.Status = domain.CycleStatus(status)
	return c, nil
}

func scanEvent(s scanner) (*domain.WheelEvent, error) {
	ev := &domain.WheelEvent{}
	var evType string
	var price, strike, premium, fees string
	var link sql.NullInt64
	err := s.Scan(
		&ev.ID, &ev.CycleID, &evType, &ev.TradeDate, &ev.Quantity, &ev.Contracts,
		&price, &strike, &premium, &fees, &link, &ev.Notes)
	if err != nil {
		return nil, err
	}
	ev.Type = domain.EventType(evType)
	if ev.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("event %d: malformed price %q: %w", ev.ID, price, err)
	}
	if ev.Strike, err = decimal.NewFromString(strike); err != nil {
		return nil, fmt.Errorf("event %d: malformed strike %q: %w", ev.ID, strike, err)
	}
	if ev.Premium, err = decimal.NewFromString(premium); err != nil {
		return nil, fmt.Errorf("event %d: malformed premium %q: %w", ev.ID, premium, err)
	}
	if ev.Fees, err = decimal.NewFromString(fees); err != nil {
		return nil, fmt.Errorf("event %d: malformed fees %q: %w", ev.ID, fees, err)
	}
	if link.Valid {
		ev.LinkEventID = &link.Int64
	}
	return ev, nil
}
