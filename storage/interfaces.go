package storage

import "market-etl/models"

// ProductReader is the read-only view of the store. The inspection utility
// consumes this and nothing else.
type ProductReader interface {
	Count() (int, error)
	Fetch(limit int) ([]*models.Product, error)
	Close() error
}

// ProductStore adds idempotent bulk insertion on top of the read view.
// InsertAll returns the number of rows actually written: rows whose
// (url, scraped_at) pair already exists are silently skipped.
type ProductStore interface {
	ProductReader
	InsertAll(products []*models.Product) (int, error)
}

// ProductExporter writes a flat-file copy of a collected batch.
type ProductExporter interface {
	WriteAll(products []*models.Product) error
	Close() error
}
