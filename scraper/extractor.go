package scraper

import "market-etl/models"

// extractCard reads the five source fields off one card. Each lookup is
// independent: a field the card cannot serve leaves its slot empty and is
// reported in the returned list, it never aborts the remaining lookups.
// Whether an empty mandatory slot sinks the card is the validator's call.
func extractCard(card Card) (*models.RawCard, []string) {
	raw := &models.RawCard{}
	var unreachable []string

	read := func(field string, dst *string) {
		val, err := card.Field(field)
		if err != nil {
			unreachable = append(unreachable, field)
			return
		}
		*dst = val
	}

	read(FieldName, &raw.Name)
	read(FieldPrice, &raw.RawPrice)
	read(FieldURL, &raw.URL)
	read(FieldRating, &raw.RawRating)
	read(FieldReviews, &raw.RawReviews)

	return raw, unreachable
}
