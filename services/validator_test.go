package services

import (
	"errors"
	"testing"
	"time"

	"market-etl/models"
	"market-etl/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func validCard() *models.RawCard {
	return &models.RawCard{
		Name:       "Running shoes",
		RawPrice:   "1 768 ₽",
		URL:        "https://market.example/product/1",
		RawRating:  "4.5",
		RawReviews: "(120)",
	}
}

func TestValidatorParsePrice(t *testing.T) {
	v := NewValidator(newTestLogger())

	tests := []struct {
		raw     string
		want    float64
		wantErr error
	}{
		{"1 768 ₽", 1768, nil},
		{"2999₽", 2999, nil},
		{"2 999,50 ₽", 2999.50, nil},
		{"1200.50", 1200.50, nil},
		{"", 0, ErrMissingField},
		{"free", 0, ErrPriceParse},
		{"-500 ₽", 0, ErrPriceParse},
	}

	for _, tt := range tests {
		got, err := v.parsePrice(tt.raw)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("parsePrice(%q) error = %v; want %v", tt.raw, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("parsePrice(%q) unexpected error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePrice(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestValidatorParseRating(t *testing.T) {
	v := NewValidator(newTestLogger())

	tests := []struct {
		raw  string
		want *float64
	}{
		{"4.85", ptr(4.85)},
		{"5.0", ptr(5.0)},
		{"3,5", ptr(3.5)},
		{"", nil},
		{"New", nil},
		{"6.0", nil}, // outside scale — dropped, not clamped
	}

	for _, tt := range tests {
		got := v.parseRating(tt.raw)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("parseRating(%q) = %v; want nil", tt.raw, *got)
		case tt.want != nil && got == nil:
			t.Errorf("parseRating(%q) = nil; want %v", tt.raw, *tt.want)
		case tt.want != nil && got != nil && *got != *tt.want:
			t.Errorf("parseRating(%q) = %v; want %v", tt.raw, *got, *tt.want)
		}
	}
}

func TestValidatorParseReviews(t *testing.T) {
	v := NewValidator(newTestLogger())

	tests := []struct {
		raw  string
		want *int64
	}{
		{"(12)", iptr(12)},
		{"(2.7K)", iptr(2700)},
		{"(1,2k)", iptr(1200)},
		{"431", iptr(431)},
		{"", nil},
		{"(no reviews)", nil},
	}

	for _, tt := range tests {
		got := v.parseReviews(tt.raw)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("parseReviews(%q) = %d; want nil", tt.raw, *got)
		case tt.want != nil && got == nil:
			t.Errorf("parseReviews(%q) = nil; want %d", tt.raw, *tt.want)
		case tt.want != nil && got != nil && *got != *tt.want:
			t.Errorf("parseReviews(%q) = %d; want %d", tt.raw, *got, *tt.want)
		}
	}
}

func TestValidateRejectsMissingMandatoryFields(t *testing.T) {
	v := NewValidator(newTestLogger())

	for _, field := range []string{"name", "url"} {
		card := validCard()
		switch field {
		case "name":
			card.Name = "   "
		case "url":
			card.URL = ""
		}

		p, err := v.Validate(card)
		if !errors.Is(err, ErrMissingField) {
			t.Errorf("Validate with empty %s: error = %v; want ErrMissingField", field, err)
		}
		if p != nil {
			t.Errorf("Validate with empty %s returned a record", field)
		}
	}
}

func TestValidateProducesWellFormedRecord(t *testing.T) {
	v := NewValidator(newTestLogger())

	p, err := v.Validate(validCard())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if p.Name != "Running shoes" || p.URL != "https://market.example/product/1" {
		t.Errorf("unexpected name/url: %q %q", p.Name, p.URL)
	}
	if p.Price < 0 {
		t.Errorf("price must be non-negative, got %f", p.Price)
	}
	if p.Rating == nil || *p.Rating < 0 || *p.Rating > 5 {
		t.Errorf("rating must be present and within [0,5], got %v", p.Rating)
	}
	if p.ReviewsCount == nil || *p.ReviewsCount != 120 {
		t.Errorf("reviews count = %v; want 120", p.ReviewsCount)
	}
	if _, err := time.Parse(models.TimestampLayout, p.ScrapedAt); err != nil {
		t.Errorf("scraped_at %q does not match layout: %v", p.ScrapedAt, err)
	}
}

func TestValidateKeepsRecordWithoutOptionalFields(t *testing.T) {
	v := NewValidator(newTestLogger())

	card := validCard()
	card.RawRating = ""
	card.RawReviews = ""

	p, err := v.Validate(card)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if p.Rating != nil || p.ReviewsCount != nil {
		t.Errorf("expected nil rating/reviews, got %v %v", p.Rating, p.ReviewsCount)
	}
}

func ptr(f float64) *float64 { return &f }
func iptr(n int64) *int64    { return &n }
