package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"market-etl/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS products (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT    NOT NULL,
	price         REAL    NOT NULL,
	url           TEXT    NOT NULL,
	rating        REAL,
	reviews_count INTEGER,
	scraped_at    TEXT    NOT NULL, -- DD-MM-YYYY hh:mm:ss
	UNIQUE (url, scraped_at)
);`

// SQLiteStore persists products in a local SQLite file. The file and the
// products table are created on first open.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// products table exists before any insert can run.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// InsertAll commits the batch in a single transaction. Rows whose
// (url, scraped_at) pair already exists are skipped without error; the
// return value counts rows actually written. On a storage failure the
// transaction rolls back and zero rows are committed.
func (s *SQLiteStore) InsertAll(products []*models.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO products (name, price, url, rating, reviews_count, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, p := range products {
		res, err := stmt.Exec(p.Name, p.Price, p.URL,
			nullFloat(p.Rating), nullInt(p.ReviewsCount), p.ScrapedAt)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert %q: %w", p.URL, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Count returns the number of stored rows.
func (s *SQLiteStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count: %w", err)
	}
	return n, nil
}

// Fetch returns stored products in insertion order. A non-positive limit
// fetches everything.
func (s *SQLiteStore) Fetch(limit int) ([]*models.Product, error) {
	const query = `
		SELECT id, name, price, url, rating, reviews_count, scraped_at
		FROM products
		ORDER BY id`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.Query(query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetch: %w", err)
	}
	return scanProducts(rows)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
