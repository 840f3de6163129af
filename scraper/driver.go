package scraper

// Card is one rendered listing entry in the feed. Field returns the text of
// a named sub-field (see the Field* constants) and errors when the card does
// not expose it.
type Card interface {
	Field(name string) (string, error)
}

// PageDriver abstracts the lazily-loading catalog page. Implementations own
// exactly one browser page for the lifetime of a run.
//
// Reveal commands the page to materialize more cards (scroll-triggered lazy
// load); VisibleCards enumerates the currently rendered cards in document
// order. The collector polls the two in turn until it has enough cards or
// the feed stops growing.
type PageDriver interface {
	Reveal() error
	VisibleCards() ([]Card, error)
}

// Named sub-fields a card can expose.
const (
	FieldName    = "name"
	FieldPrice   = "price"
	FieldURL     = "url"
	FieldRating  = "rating"
	FieldReviews = "reviews"
)
