package services

import (
	"testing"

	"market-etl/models"
)

func storedProduct(name string, price float64, rating *float64) *models.Product {
	return &models.Product{
		Name:      name,
		Price:     price,
		URL:       "https://market.example/product/" + name,
		Rating:    rating,
		ScrapedAt: "01-01-2026 09:00:00",
	}
}

func TestReportPriceStatistics(t *testing.T) {
	s := NewReportService(newTestLogger())

	products := []*models.Product{
		storedProduct("a", 100, nil),
		storedProduct("b", 300, ptr(4.0)),
		storedProduct("c", 200, ptr(4.8)),
	}

	r := s.Generate(products)

	if r.TotalRows != 3 {
		t.Errorf("TotalRows = %d; want 3", r.TotalRows)
	}
	if r.MinPrice != 100 || r.MaxPrice != 300 {
		t.Errorf("min/max = %.2f/%.2f; want 100/300", r.MinPrice, r.MaxPrice)
	}
	if r.AveragePrice != 200 {
		t.Errorf("AveragePrice = %.2f; want 200", r.AveragePrice)
	}
	if r.WithRating != 2 {
		t.Errorf("WithRating = %d; want 2", r.WithRating)
	}
}

func TestReportTopRatedOrderAndCap(t *testing.T) {
	s := NewReportService(newTestLogger())

	var products []*models.Product
	ratings := []float64{3.1, 4.9, 4.2, 5.0, 2.8, 4.6, 3.9}
	for i, rating := range ratings {
		products = append(products, storedProduct(string(rune('a'+i)), 100, ptr(rating)))
	}

	r := s.Generate(products)

	if len(r.TopRated) != 5 {
		t.Fatalf("TopRated has %d entries; want 5", len(r.TopRated))
	}
	if *r.TopRated[0].Rating != 5.0 {
		t.Errorf("best rating = %.1f; want 5.0", *r.TopRated[0].Rating)
	}
	for i := 1; i < len(r.TopRated); i++ {
		if *r.TopRated[i].Rating > *r.TopRated[i-1].Rating {
			t.Errorf("TopRated not sorted descending at index %d", i)
		}
	}
}

func TestReportEmptyStore(t *testing.T) {
	s := NewReportService(newTestLogger())

	r := s.Generate(nil)
	if r.TotalRows != 0 || len(r.TopRated) != 0 {
		t.Errorf("empty input should produce an empty report, got %+v", r)
	}
}
