package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up

	"wheeltracker/config"
	"wheeltracker/internal/adapters/logger"
	"wheeltracker/internal/adapters/pricefeed"
	"wheeltracker/internal/adapters/sqlite"
	"wheeltracker/internal/app"
	"wheeltracker/internal/detect"
	"wheeltracker/internal/domain"
	"wheeltracker/internal/ports"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	var appLogger ports.Logger
	if cfg.LogFormat == "std" {
		appLogger = logger.NewStdLogger(cfg.LogLevel)
	} else {
		appLogger = logger.NewZerologLogger(cfg.LogLevel)
	}
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String(), "format": cfg.LogFormat})

	// 3. Initialize Event Store (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize event store: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing event store")
		}
	}()

	// 4. Initialize Price Feed
	prices, err := pricefeed.New(pricefeed.Config{
		BaseURL:    cfg.PriceFeedURL,
		Timeout:    cfg.PriceFeedTimeout,
		RetryCount: cfg.PriceFeedRetries,
		Logger:     appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize price feed: %v", err)
	}

	// 5. Initialize Service
	detector := detect.New(detect.Config{PartialCoverageFloor: cfg.DetectPartialCoverageFloor})
	service, err := app.NewLedgerService(appLogger, repo, repo, prices, detector)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize ledger service: %v", err)
	}

	// 6. Rebuild every cycle and report
	cycles, err := repo.ListCycles(ctx)
	if err != nil {
		appLogger.Error(ctx, err, "Failed to list cycles")
		return
	}
	appLogger.Info(ctx, "Rebuilding ledgers", map[string]interface{}{"cycles": len(cycles)})

	tickers := make(map[string]bool)
	for _, c := range cycles {
		reportCycle(ctx, appLogger, service, c)
		tickers[c.Ticker] = true
	}
	for ticker := range tickers {
		summary, err := service.GetPhaseSummary(ctx, ticker)
		if err != nil {
			appLogger.Error(ctx, err, "Failed to classify phase", map[string]interface{}{"ticker": ticker})
			continue
		}
		fields := map[string]interface{}{
			"ticker":     summary.Ticker,
			"phase":      string(summary.CurrentPhase),
			"calledAway": summary.CalledAwayCount,
		}
		for ph, earned := range summary.LifetimeEarnings {
			fields["earnings."+string(ph)] = earned.String()
		}
		appLogger.Info(ctx, "Phase summary", fields)
	}
}

func reportCycle(ctx context.Context, appLogger ports.Logger, service *app.LedgerService, c *domain.WheelCycle) {
	led, _, err := service.RebuildLedger(ctx, c.ID)
	if err != nil {
		appLogger.Error(ctx, err, "Rebuild failed", map[string]interface{}{"cycleID": c.ID})
		return
	}
	metrics, _, err := service.GetMetrics(ctx, c.ID)
	if err != nil {
		appLogger.Error(ctx, err, "Metrics failed", map[string]interface{}{"cycleID": c.ID})
		return
	}

	fields := map[string]interface{}{
		"cycleID":        c.ID,
		"ticker":         c.Ticker,
		"lots":           len(led.Lots),
		"reservations":   len(led.Reservations),
		"collateral":     led.OpenCollateral.String(),
		"sharesOwned":    metrics.SharesOwned,
		"optionCashflow": metrics.NetOptionsCashflow.String(),
		"realizedPL":     metrics.TotalRealizedPL.String(),
	}
	if metrics.AverageCostBasis != nil {
		fields["avgCostBasis"] = metrics.AverageCostBasis.String()
	}
	if metrics.UnrealizedPL != nil {
		fields["unrealizedPL"] = metrics.UnrealizedPL.String()
	}
	appLogger.Info(ctx, "Cycle ledger", fields)
}
