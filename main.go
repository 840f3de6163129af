package main

import (
	"fmt"
	"os"
	"time"

	"market-etl/config"
	"market-etl/models"
	"market-etl/scraper"
	"market-etl/scraper/market"
	"market-etl/services"
	"market-etl/storage"
	"market-etl/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()
	if cfg.Debug {
		logger.EnableDebug()
	}

	logger.Info("=== Market ETL starting ===")
	logger.Info("Config — query: %q | target: %d | stagnation limit: %d | settle: %dms | backend: %s",
		cfg.SearchQuery, cfg.TargetCount, cfg.StagnationLimit, cfg.SettleDelayMs, cfg.StorageBackend)

	summary, err := run(cfg, logger)
	if err != nil {
		logger.Error("Run failed: %v", err)
		os.Exit(1)
	}

	logger.Info("=== Run complete — attempted: %d | failed: %d | inserted: %d | duration: %.1fs ===",
		summary.Attempted, summary.Failed, summary.Inserted, summary.Duration.Seconds())
}

// run executes one full collect-and-load pass. The page driver and the store
// are released on every exit path; rows committed before a fatal error stay
// durable.
func run(cfg *config.Config, logger *utils.Logger) (*models.RunSummary, error) {
	start := time.Now()
	logger.Info("Run started at %s", start.Format(models.TimestampLayout))

	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	driver, err := market.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open page driver: %w", err)
	}
	defer driver.Close()

	collector := scraper.NewCollector(driver, services.NewValidator(logger), logger, cfg)
	records, attempted, failed, err := collector.Collect(cfg.TargetCount)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}

	if cfg.CSVOutputPath != "" {
		if err := exportCSV(cfg.CSVOutputPath, records, logger); err != nil {
			// The CSV copy is a side artifact; losing it does not sink the run.
			logger.Warn("CSV export failed: %v", err)
		}
	}

	inserted, err := store.InsertAll(records)
	if err != nil {
		return nil, fmt.Errorf("store batch: %w", err)
	}

	end := time.Now()
	logger.Info("Run finished at %s", end.Format(models.TimestampLayout))

	return &models.RunSummary{
		Attempted: attempted,
		Failed:    failed,
		Inserted:  inserted,
		Duration:  end.Sub(start),
	}, nil
}

func openStore(cfg *config.Config, logger *utils.Logger) (storage.ProductStore, error) {
	switch cfg.StorageBackend {
	case "postgres":
		return storage.NewPostgresStore(cfg.DSN(), logger)
	case "sqlite", "":
		return storage.NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func exportCSV(path string, records []*models.Product, logger *utils.Logger) error {
	w, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.WriteAll(records); err != nil {
		return err
	}
	logger.Info("Collected batch exported to %s", path)
	return nil
}
