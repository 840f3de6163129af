package market

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"market-etl/config"
	"market-etl/scraper"
	"market-etl/utils"
)

const (
	searchInputSelector = "#header-search"
	cardSelector        = `div[data-zone-name="productSnippet"]`
)

// cardSnapshotJS reads every product snippet currently in the DOM and returns
// its field texts in document order. The rating and review count share one
// snippet element ("(12) · 28 bought"), so both fields carry its text and the
// validator picks its part out of each.
const cardSnapshotJS = `
	(function() {
		var base = window.location.origin;
		var cards = document.querySelectorAll('div[data-zone-name="productSnippet"]');
		var out = [];

		for (var i = 0; i < cards.length; i++) {
			var card = cards[i];

			var link = card.querySelector('a[data-auto="snippet-link"]');
			var href = link ? link.getAttribute('href') : '';

			var title = card.querySelector('p[data-auto="snippet-title"]') ||
			            card.querySelector('[data-zone-name="title"]');
			var price = card.querySelector('span[data-auto="snippet-price-current"]');
			var reviews = card.querySelector('[data-zone-name="rating"] [data-auto="reviews"]');

			out.push({
				name:    title ? title.innerText.trim() : '',
				price:   price ? price.innerText.trim() : '',
				url:     href ? base + href : '',
				rating:  reviews ? reviews.innerText.trim() : '',
				reviews: reviews ? reviews.innerText.trim() : ''
			});
		}
		return out;
	})()
`

// Driver implements scraper.PageDriver on a real browser page via chromedp.
// One Driver owns one page for the whole run; Close releases it.
type Driver struct {
	logger *utils.Logger
	ctx    context.Context
	cancel context.CancelFunc

	opTimeout time.Duration
}

// Open launches the browser, navigates to the catalog and submits the search
// query. The returned Driver is ready for Reveal/VisibleCards polling; the
// caller must Close it on every exit path.
func Open(cfg *config.Config, logger *utils.Logger) (*Driver, error) {
	chromeBin := findChromeBinary(cfg.ChromeBin)
	logger.Info("[market] using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	d := &Driver{
		logger: logger,
		ctx:    ctx,
		cancel: func() {
			cancelCtx()
			cancelAlloc()
		},
		opTimeout: 90 * time.Second,
	}

	if err := d.openCatalog(cfg.CatalogURL, cfg.SearchQuery); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// openCatalog loads the storefront, submits the query and waits until the
// first result cards render.
func (d *Driver) openCatalog(url, query string) error {
	d.logger.Info("[market] opening %s — query %q", url, query)

	opCtx, cancel := context.WithTimeout(d.ctx, d.opTimeout)
	defer cancel()

	err := chromedp.Run(opCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(searchInputSelector, chromedp.ByQuery),
		chromedp.SendKeys(searchInputSelector, query+kb.Enter, chromedp.ByQuery),
		chromedp.WaitVisible(cardSelector, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("open catalog %q: %w", url, err)
	}

	d.logger.Info("[market] search submitted, first cards rendered")
	return nil
}

// Reveal scrolls to the bottom of the feed to trigger the next lazy-load
// batch. Settling is the collector's job.
func (d *Driver) Reveal() error {
	opCtx, cancel := context.WithTimeout(d.ctx, d.opTimeout)
	defer cancel()

	if err := chromedp.Run(opCtx,
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
	); err != nil {
		return fmt.Errorf("scroll feed: %w", err)
	}
	return nil
}

// VisibleCards snapshots the currently rendered product snippets in document
// order.
func (d *Driver) VisibleCards() ([]scraper.Card, error) {
	opCtx, cancel := context.WithTimeout(d.ctx, d.opTimeout)
	defer cancel()

	var snapshot []map[string]string
	if err := chromedp.Run(opCtx,
		chromedp.Evaluate(cardSnapshotJS, &snapshot),
	); err != nil {
		return nil, fmt.Errorf("snapshot cards: %w", err)
	}

	cards := make([]scraper.Card, len(snapshot))
	for i, fields := range snapshot {
		cards[i] = &snapshotCard{fields: fields}
	}
	return cards, nil
}

// Close releases the browser page and its allocator.
func (d *Driver) Close() {
	d.cancel()
}

// snapshotCard serves field lookups from the JS snapshot taken at enumeration
// time. A field the snippet did not render is not present.
type snapshotCard struct {
	fields map[string]string
}

func (c *snapshotCard) Field(name string) (string, error) {
	val, ok := c.fields[name]
	if !ok || val == "" {
		return "", fmt.Errorf("field %q not present on card", name)
	}
	return val, nil
}

// findChromeBinary locates the Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
