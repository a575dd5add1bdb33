// export_ledger rebuilds one cycle's lot ledger and writes it to CSV,
// reservations included.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"wheeltracker/config"
	"wheeltracker/internal/adapters/logger"
	"wheeltracker/internal/adapters/sqlite"
	"wheeltracker/internal/ledger"
	"wheeltracker/internal/utils"
)

func main() {
	cycleID := flag.String("cycle", "", "Cycle ID to export")
	output := flag.String("output", "", "Output CSV path (default data/<cycle>_lots.csv)")
	flag.Parse()

	if *cycleID == "" {
		log.Fatal("FATAL: -cycle is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize event store: %v", err)
	}
	defer repo.Close()

	events, err := repo.ListEvents(ctx, *cycleID)
	if err != nil {
		log.Fatalf("Failed to load events: %v", err)
	}
	led, diags := ledger.BuildLedger(events)
	for _, d := range diags {
		appLogger.Warn(ctx, "Ledger diagnostic", map[string]interface{}{"diagnostic": d.String()})
	}

	filename := *output
	if filename == "" {
		filename = fmt.Sprintf("data/%s_lots.csv", *cycleID)
	}
	if err := utils.WriteLotsToCSV(append(led.Lots, led.Reservations...), filename); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}
	appLogger.Info(ctx, "Ledger exported", map[string]interface{}{
		"cycleID": *cycleID,
		"lots":    len(led.Lots),
		"file":    filename,
	})
}
