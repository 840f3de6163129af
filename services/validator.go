package services

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"market-etl/models"
	"market-etl/utils"
)

// Validation failure kinds. Both are scoped to a single card: the collector
// logs them and moves on to the next card.
var (
	ErrMissingField = errors.New("missing required field")
	ErrPriceParse   = errors.New("unparseable price")
)

var (
	// numberRegexp captures a decimal number, dot or comma separated
	numberRegexp = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	// parensRegexp captures the parenthesized review count, e.g. "(2.7K)"
	parensRegexp = regexp.MustCompile(`\(([^)]+)\)`)
)

// Validator turns raw card fields into validated Products.
type Validator struct {
	logger *utils.Logger
}

// NewValidator creates a Validator with the given logger.
func NewValidator(logger *utils.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate parses and checks one raw card. Name, price and URL are
// mandatory; rating and reviews count are best-effort and become nil when
// unusable. The scraped_at timestamp is stamped at the moment validation
// succeeds.
func (v *Validator) Validate(raw *models.RawCard) (*models.Product, error) {
	name := normaliseText(raw.Name)
	url := strings.TrimSpace(raw.URL)

	if name == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}
	if url == "" {
		return nil, fmt.Errorf("%w: url", ErrMissingField)
	}

	price, err := v.parsePrice(raw.RawPrice)
	if err != nil {
		return nil, err
	}

	return &models.Product{
		Name:         name,
		Price:        price,
		URL:          url,
		Rating:       v.parseRating(raw.RawRating),
		ReviewsCount: v.parseReviews(raw.RawReviews),
		ScrapedAt:    time.Now().Format(models.TimestampLayout),
	}, nil
}

// parsePrice extracts a non-negative decimal from storefront price text.
// Examples:
//
//	"1 768 ₽"   → 1768
//	"2 999,50₽" → 2999.50
func (v *Validator) parsePrice(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: price", ErrMissingField)
	}
	if strings.HasPrefix(trimmed, "-") {
		return 0, fmt.Errorf("%w: negative value %q", ErrPriceParse, raw)
	}

	// Regular, thin and no-break spaces all appear as thousand separators.
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, trimmed)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	match := numberRegexp.FindString(cleaned)
	if match == "" {
		return 0, fmt.Errorf("%w: %q", ErrPriceParse, raw)
	}

	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrPriceParse, raw)
	}
	return price, nil
}

// parseRating extracts a 0.0–5.0 rating. Anything non-numeric or outside the
// scale means the card carries no usable rating: soft-failed with a warning,
// never fatal, and never clamped into range.
func (v *Validator) parseRating(raw string) *float64 {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	match := numberRegexp.FindString(raw)
	if match == "" {
		v.logger.Warn("[validator] non-numeric rating %q — keeping record without rating", raw)
		return nil
	}

	val, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil || val < 0 || val > 5 {
		v.logger.Warn("[validator] rating %q outside 0–5 — keeping record without rating", raw)
		return nil
	}
	return &val
}

// parseReviews extracts the review count magnitude. The storefront renders it
// parenthesized and abbreviates thousands, e.g. "(12)" or "(2.7K)" → 2700.
// Non-numeric input yields nil.
func (v *Validator) parseReviews(raw string) *int64 {
	inner := strings.TrimSpace(raw)
	if inner == "" {
		return nil
	}
	if m := parensRegexp.FindStringSubmatch(inner); len(m) == 2 {
		inner = strings.TrimSpace(m[1])
	}

	lowered := strings.ToLower(inner)
	if strings.HasSuffix(lowered, "k") {
		base := strings.ReplaceAll(strings.TrimSpace(lowered[:len(lowered)-1]), ",", ".")
		n, err := strconv.ParseFloat(base, 64)
		if err != nil {
			return nil
		}
		count := int64(math.Round(n * 1000))
		return &count
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, inner)
	if digits == "" {
		return nil
	}

	count, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil
	}
	return &count
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
