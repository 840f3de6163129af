package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"market-etl/models"
)

// CSVWriter exports a collected batch to a CSV file, one run per file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"name", "price", "url", "rating", "reviews_count", "scraped_at",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteAll appends every product of the batch. Absent rating/reviews become
// empty cells.
func (c *CSVWriter) WriteAll(products []*models.Product) error {
	for _, p := range products {
		rating, reviews := "", ""
		if p.Rating != nil {
			rating = strconv.FormatFloat(*p.Rating, 'f', -1, 64)
		}
		if p.ReviewsCount != nil {
			reviews = strconv.FormatInt(*p.ReviewsCount, 10)
		}

		row := []string{
			p.Name,
			strconv.FormatFloat(p.Price, 'f', 2, 64),
			p.URL,
			rating,
			reviews,
			p.ScrapedAt,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
