package scraper

import (
	"fmt"
	"time"

	"market-etl/config"
	"market-etl/models"
	"market-etl/services"
	"market-etl/utils"
)

// Collector drives the progressive reveal of the listing feed and funnels
// each revealed card through extraction and validation. Per-card failures
// are counted and logged, never escalated; only driver failures that make
// further progress impossible are returned as errors.
type Collector struct {
	driver    PageDriver
	validator *services.Validator
	logger    *utils.Logger

	settle          time.Duration
	stagnationLimit int
	maxReveals      int
}

// NewCollector creates a Collector for one run.
func NewCollector(driver PageDriver, validator *services.Validator, logger *utils.Logger, cfg *config.Config) *Collector {
	return &Collector{
		driver:          driver,
		validator:       validator,
		logger:          logger,
		settle:          time.Duration(cfg.SettleDelayMs) * time.Millisecond,
		stagnationLimit: cfg.StagnationLimit,
		maxReveals:      cfg.MaxReveals,
	}
}

// Collect reveals cards until target is reached or the feed stops growing,
// then extracts and validates the first min(visible, target) cards in
// document order. It returns the validated records plus the attempted and
// failed counters. Falling short of target through stagnation is a shortfall
// reported in the counters, not an error.
func (c *Collector) Collect(target int) ([]*models.Product, int, int, error) {
	if target <= 0 {
		return nil, 0, 0, nil
	}

	cards, err := c.reveal(target)
	if err != nil {
		return nil, 0, 0, err
	}

	// Working set: ordered prefix of the visible cards, bounded by target.
	if len(cards) > target {
		cards = cards[:target]
	}
	attempted := len(cards)

	records := make([]*models.Product, 0, attempted)
	failed := 0

	for i, card := range cards {
		raw, unreachable := extractCard(card)
		for _, field := range unreachable {
			c.logger.Debug("[collector] card #%d: field %q unreachable", i+1, field)
		}

		product, err := c.validator.Validate(raw)
		if err != nil {
			failed++
			c.logger.Warn("[collector] card #%d discarded: %v", i+1, err)
			continue
		}
		records = append(records, product)
	}

	c.logger.Info("[collector] extraction done — ok=%d, failed=%d (attempted %d of target %d)",
		len(records), failed, attempted, target)
	return records, attempted, failed, nil
}

// reveal loops scroll commands until enough cards are visible, the count
// stops growing for stagnationLimit consecutive rounds, or the hard reveal
// cap is hit. Each round has a single settle delay so asynchronous content
// can materialize before the recount.
func (c *Collector) reveal(target int) ([]Card, error) {
	var cards []Card
	lastCount := 0
	stagnant := 0

	for i := 1; i <= c.maxReveals; i++ {
		if err := c.driver.Reveal(); err != nil {
			return nil, fmt.Errorf("reveal #%d: %w", i, err)
		}
		time.Sleep(c.settle)

		var err error
		cards, err = c.driver.VisibleCards()
		if err != nil {
			return nil, fmt.Errorf("enumerate cards after reveal #%d: %w", i, err)
		}
		visible := len(cards)
		c.logger.Debug("[collector] reveal #%d — %d cards visible", i, visible)

		if visible >= target {
			c.logger.Info("[collector] reached target card count: %d", target)
			return cards, nil
		}

		if visible == lastCount {
			stagnant++
			if stagnant >= c.stagnationLimit {
				c.logger.Info("[collector] feed stopped growing at %d cards — stopping early", visible)
				return cards, nil
			}
		} else {
			stagnant = 0
			lastCount = visible
		}
	}

	c.logger.Warn("[collector] reveal cap of %d reached with %d cards", c.maxReveals, len(cards))
	return cards, nil
}
