package storage

import (
	"database/sql"
	"fmt"

	"market-etl/models"
)

// scanProducts drains a products result set in column order
// (id, name, price, url, rating, reviews_count, scraped_at).
func scanProducts(rows *sql.Rows) ([]*models.Product, error) {
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		var rating sql.NullFloat64
		var reviews sql.NullInt64

		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.URL, &rating, &reviews, &p.ScrapedAt); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		if rating.Valid {
			r := rating.Float64
			p.Rating = &r
		}
		if reviews.Valid {
			n := reviews.Int64
			p.ReviewsCount = &n
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
