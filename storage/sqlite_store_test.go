package storage

import (
	"path/filepath"
	"testing"

	"market-etl/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "products.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testProduct(url, scrapedAt string) *models.Product {
	rating := 4.5
	reviews := int64(31)
	return &models.Product{
		Name:         "Test product",
		Price:        1768,
		URL:          url,
		Rating:       &rating,
		ReviewsCount: &reviews,
		ScrapedAt:    scrapedAt,
	}
}

func TestInsertAllIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	batch := []*models.Product{
		testProduct("https://market.example/product/1", "01-01-2026 10:00:00"),
		testProduct("https://market.example/product/2", "01-01-2026 10:00:01"),
	}

	inserted, err := store.InsertAll(batch)
	if err != nil {
		t.Fatalf("first InsertAll: %v", err)
	}
	if inserted != 2 {
		t.Errorf("first InsertAll = %d rows; want 2", inserted)
	}

	inserted, err = store.InsertAll(batch)
	if err != nil {
		t.Fatalf("second InsertAll: %v", err)
	}
	if inserted != 0 {
		t.Errorf("second InsertAll = %d rows; want 0 (all duplicates)", inserted)
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("Count = %d; want 2", count)
	}
}

func TestUniquenessIsByURLAndTimestamp(t *testing.T) {
	store := newTestStore(t)

	const url = "https://market.example/product/1"
	batch := []*models.Product{
		testProduct(url, "01-01-2026 10:00:00"),
		testProduct(url, "01-01-2026 10:05:00"), // same url, later observation
		testProduct(url, "01-01-2026 10:00:00"), // exact duplicate
	}

	inserted, err := store.InsertAll(batch)
	if err != nil {
		t.Fatalf("InsertAll: %v", err)
	}
	if inserted != 2 {
		t.Errorf("InsertAll = %d rows; want 2 (distinct timestamps are distinct rows)", inserted)
	}
}

func TestInsertAllEmptyBatch(t *testing.T) {
	store := newTestStore(t)

	inserted, err := store.InsertAll(nil)
	if err != nil {
		t.Fatalf("InsertAll(nil): %v", err)
	}
	if inserted != 0 {
		t.Errorf("InsertAll(nil) = %d; want 0", inserted)
	}
}

func TestFetchRoundTripsOptionalFields(t *testing.T) {
	store := newTestStore(t)

	bare := &models.Product{
		Name:      "No rating yet",
		Price:     999.90,
		URL:       "https://market.example/product/bare",
		ScrapedAt: "01-01-2026 11:00:00",
	}
	full := testProduct("https://market.example/product/full", "01-01-2026 11:00:01")

	if _, err := store.InsertAll([]*models.Product{bare, full}); err != nil {
		t.Fatalf("InsertAll: %v", err)
	}

	rows, err := store.Fetch(0)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Fetch returned %d rows; want 2", len(rows))
	}

	if rows[0].Rating != nil || rows[0].ReviewsCount != nil {
		t.Errorf("bare row should have nil rating/reviews, got %v %v",
			rows[0].Rating, rows[0].ReviewsCount)
	}
	if rows[1].Rating == nil || *rows[1].Rating != 4.5 {
		t.Errorf("full row rating = %v; want 4.5", rows[1].Rating)
	}
	if rows[1].ReviewsCount == nil || *rows[1].ReviewsCount != 31 {
		t.Errorf("full row reviews = %v; want 31", rows[1].ReviewsCount)
	}
	if rows[0].ScrapedAt != "01-01-2026 11:00:00" {
		t.Errorf("scraped_at round-trip = %q", rows[0].ScrapedAt)
	}
}

func TestFetchHonorsLimit(t *testing.T) {
	store := newTestStore(t)

	var batch []*models.Product
	for i := 0; i < 7; i++ {
		batch = append(batch, testProduct(
			"https://market.example/product/"+string(rune('a'+i)),
			"01-01-2026 12:00:00"))
	}
	if _, err := store.InsertAll(batch); err != nil {
		t.Fatalf("InsertAll: %v", err)
	}

	rows, err := store.Fetch(5)
	if err != nil {
		t.Fatalf("Fetch(5): %v", err)
	}
	if len(rows) != 5 {
		t.Errorf("Fetch(5) returned %d rows", len(rows))
	}
}
