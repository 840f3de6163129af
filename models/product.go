package models

import "time"

// TimestampLayout is the fixed DD-MM-YYYY hh:mm:ss format used for the
// scraped_at column. A product's collection time is stored as text in
// exactly this shape.
const TimestampLayout = "02-01-2006 15:04:05"

// RawCard holds the untouched field texts read from one listing card in the
// feed, before any parsing or validation. A field the card did not expose is
// simply the empty string.
type RawCard struct {
	Name       string
	RawPrice   string
	URL        string
	RawRating  string
	RawReviews string
}

// Product is the validated record ready for storage. Rating and ReviewsCount
// are nil when the source card did not carry them — that is expected, not an
// error. A Product is never mutated after validation.
type Product struct {
	ID           int64
	Name         string
	Price        float64
	URL          string
	Rating       *float64
	ReviewsCount *int64
	ScrapedAt    string // TimestampLayout
}

// RunSummary aggregates the outcome of one collection run.
type RunSummary struct {
	Attempted int
	Failed    int
	Inserted  int
	Duration  time.Duration
}

// StoreReport holds the computed statistics over stored products, produced by
// the report service for the inspection utility.
type StoreReport struct {
	TotalRows    int
	WithRating   int
	AveragePrice float64
	MinPrice     float64
	MaxPrice     float64
	TopRated     []*Product
}
