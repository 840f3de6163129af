package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"market-etl/models"
	"market-etl/utils"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS products (
	id            SERIAL PRIMARY KEY,
	name          TEXT             NOT NULL,
	price         DOUBLE PRECISION NOT NULL,
	url           TEXT             NOT NULL,
	rating        DOUBLE PRECISION,
	reviews_count BIGINT,
	scraped_at    TEXT             NOT NULL,
	UNIQUE (url, scraped_at)
);`

// PostgresStore persists products in PostgreSQL. Same table and uniqueness
// key as the SQLite store, rendered in the Postgres dialect.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects, waits for the server to accept connections and
// ensures the products table exists before any insert can run.
func NewPostgresStore(dsn string, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 10, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do("postgres-ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	if _, err := db.Exec(postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: create table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// InsertAll commits the batch in a single transaction, skipping rows whose
// (url, scraped_at) pair already exists. Returns rows actually written; on a
// storage failure the transaction rolls back and zero rows are committed.
func (s *PostgresStore) InsertAll(products []*models.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("postgres: begin: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO products (name, price, url, rating, reviews_count, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (url, scraped_at) DO NOTHING`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("postgres: prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, p := range products {
		res, err := stmt.Exec(p.Name, p.Price, p.URL,
			nullFloat(p.Rating), nullInt(p.ReviewsCount), p.ScrapedAt)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("postgres: insert %q: %w", p.URL, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("postgres: rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("postgres: commit: %w", err)
	}
	return inserted, nil
}

// Count returns the number of stored rows.
func (s *PostgresStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count: %w", err)
	}
	return n, nil
}

// Fetch returns stored products in insertion order. A non-positive limit
// fetches everything.
func (s *PostgresStore) Fetch(limit int) ([]*models.Product, error) {
	const query = `
		SELECT id, name, price, url, rating, reviews_count, scraped_at
		FROM products
		ORDER BY id`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.Query(query+` LIMIT $1`, limit)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch: %w", err)
	}
	return scanProducts(rows)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
