// import_events loads a CSV trade log into the sqlite event store. Event
// mutation lives in tooling like this, outside the derivation core; the
// engine only ever reads the log back.
package main

import (
	"context"
	"flag"
	"log"

	"wheeltracker/config"
	"wheeltracker/internal/adapters/logger"
	"wheeltracker/internal/adapters/sqlite"
	"wheeltracker/internal/domain"
	"wheeltracker/internal/utils"
)

func main() {
	input := flag.String("input", "data/events.csv", "Path to the event CSV file")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	// 3. Initialize Event Store
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize event store: %v", err)
	}
	defer repo.Close()

	count, err := importFile(ctx, repo, *input)
	if err != nil {
		appLogger.Error(ctx, err, "Import failed", map[string]interface{}{"input": *input})
		log.Fatalf("Import failed: %v", err)
	}
	appLogger.Info(ctx, "Import complete", map[string]interface{}{"input": *input, "events": count})
}

// importFile creates one cycle per unseen ticker and appends events in
// file order, resolving link_row references to the store-assigned IDs of
// earlier rows.
func importFile(ctx context.Context, repo *sqlite.Repository, input string) (int, error) {
	records, err := utils.ReadEventsFromCSV(input)
	if err != nil {
		return 0, err
	}

	cycleByTicker := make(map[string]string)
	eventIDs := make([]int64, 0, len(records))
	for _, rec := range records {
		cycleID, ok := cycleByTicker[rec.Ticker]
		if !ok {
			cycle := &domain.WheelCycle{Ticker: rec.Ticker, StartDate: rec.Event.TradeDate, Status: domain.CycleOpen}
			if err := repo.CreateCycle(ctx, cycle); err != nil {
				return 0, err
			}
			cycleID = cycle.ID
			cycleByTicker[rec.Ticker] = cycleID
		}

		rec.Event.CycleID = cycleID
		if rec.LinkRow > 0 {
			linked := eventIDs[rec.LinkRow-1]
			rec.Event.LinkEventID = &linked
		}
		id, err := repo.CreateEvent(ctx, rec.Event)
		if err != nil {
			return 0, err
		}
		eventIDs = append(eventIDs, id)
	}
	return len(eventIDs), nil
}
