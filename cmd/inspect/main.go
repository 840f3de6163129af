// Command inspect prints what the collector has stored: row count, the first
// few rows and price/rating statistics. It only ever reads.
package main

import (
	"fmt"
	"os"
	"strings"

	"market-etl/config"
	"market-etl/models"
	"market-etl/services"
	"market-etl/storage"
	"market-etl/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	reader, err := openReader(cfg, logger)
	if err != nil {
		logger.Error("Cannot open store: %v", err)
		logger.Error("Run the collector first: go run market-etl")
		os.Exit(1)
	}
	defer reader.Close()

	total, err := reader.Count()
	if err != nil {
		logger.Error("Count failed: %v", err)
		os.Exit(1)
	}
	fmt.Printf("Rows in products: %d\n\n", total)

	head, err := reader.Fetch(5)
	if err != nil {
		logger.Error("Fetch failed: %v", err)
		os.Exit(1)
	}

	fmt.Println("First 5 rows:")
	for _, p := range head {
		printRow(p)
	}

	all, err := reader.Fetch(0)
	if err != nil {
		logger.Error("Fetch failed: %v", err)
		os.Exit(1)
	}

	reportSvc := services.NewReportService(logger)
	reportSvc.Print(reportSvc.Generate(all))
}

// openReader opens the configured backend as a read-only view. For SQLite a
// missing database file means the collector has never run; opening it would
// just create an empty file, so bail out instead.
func openReader(cfg *config.Config, logger *utils.Logger) (storage.ProductReader, error) {
	switch cfg.StorageBackend {
	case "postgres":
		return storage.NewPostgresStore(cfg.DSN(), logger)
	case "sqlite", "":
		if _, err := os.Stat(cfg.SQLitePath); err != nil {
			return nil, fmt.Errorf("database file %q not found", cfg.SQLitePath)
		}
		return storage.NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func printRow(p *models.Product) {
	rating, reviews := "—", "—"
	if p.Rating != nil {
		rating = fmt.Sprintf("%.2f", *p.Rating)
	}
	if p.ReviewsCount != nil {
		reviews = fmt.Sprintf("%d", *p.ReviewsCount)
	}

	fmt.Printf("[%d] %s\n", p.ID, p.Name)
	fmt.Printf("  Price:      %.2f\n", p.Price)
	fmt.Printf("  Rating:     %s\n", rating)
	fmt.Printf("  Reviews:    %s\n", reviews)
	fmt.Printf("  URL:        %s\n", p.URL)
	fmt.Printf("  Scraped at: %s\n", p.ScrapedAt)
	fmt.Println(strings.Repeat("-", 80))
}
