// Package crawler fetches listing pages and turns them into resolved
// records.
package crawler

import (
	"context"
	"fmt"
	"time"

	"otocrawl/internal/config"
	"otocrawl/internal/logger"
	"otocrawl/internal/models"
	"otocrawl/internal/normalizer"
)

// Fetcher retrieves page content. *Scraper implements it.
type Fetcher interface {
	ScrapeWithMetrics(ctx context.Context, url string) (string, int, time.Duration, error)
}

// Stats counts what happened during a crawl.
type Stats struct {
	Pages         int
	PagesFailed   int
	Listings      int
	DetailsFailed int
	Skipped       int
}

// Result holds the records of a crawl in page order.
type Result struct {
	Records []*models.Record
	Stats   Stats
}

// Client drives a crawl: results pages, then each listing's detail page.
type Client struct {
	fetcher   Fetcher
	parser    *Parser
	processor *normalizer.Processor
	log       *logger.Logger
}

// NewClientWithDeps creates a new crawler client with injected dependencies.
func NewClientWithDeps(fetcher Fetcher, parser *Parser, processor *normalizer.Processor, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}

	return &Client{
		fetcher:   fetcher,
		parser:    parser,
		processor: processor,
		log:       log,
	}
}

// Crawl visits every page of the enabled sources. Pages that cannot be
// fetched or parsed are skipped. A listing whose detail page fails keeps
// its results page title and price. When ctx is cancelled the records
// gathered so far are returned together with the context error.
func (c *Client) Crawl(ctx context.Context, urls *URLManager) (*Result, error) {
	result := &Result{}

	for _, page := range urls.Pages() {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.Stats.Pages++

		entries, err := c.fetchPage(ctx, urls, page)
		if err != nil {
			result.Stats.PagesFailed++

			c.log.Warn("skipping page", "source", page.Source.Name, "page", page.Number, "error", err)

			continue
		}

		if len(entries) == 0 {
			c.log.Warn("no listings on page", "source", page.Source.Name, "page", page.Number)

			continue
		}

		c.log.Info("page fetched", "source", page.Source.Name, "page", page.Number, "listings", len(entries))

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			result.Stats.Listings++

			listing, detailErr := c.FetchListing(ctx, urls, page.Source, entry)
			if detailErr != nil {
				result.Stats.DetailsFailed++

				c.log.Debug("detail page unavailable", "link", entry.Link, "error", detailErr)
			}

			rec, err := c.processor.Process(listing)
			if err != nil {
				result.Stats.Skipped++

				c.log.Debug("listing skipped", "link", entry.Link, "error", err)

				continue
			}

			result.Records = append(result.Records, rec)
		}
	}

	return result, nil
}

func (c *Client) fetchPage(ctx context.Context, urls *URLManager, page Page) ([]models.ListingEntry, error) {
	html, status, duration, err := c.fetcher.ScrapeWithMetrics(ctx, page.URL)
	urls.RecordAttempt(page.URL, err, status, duration)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", page.URL, err)
	}

	entries, err := c.parser.ParseListingPage(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", page.URL, err)
	}

	return entries, nil
}

// FetchListing builds the raw listing of a results page entry. The
// returned listing is always usable; the error reports a detail page that
// could not be fetched or parsed.
func (c *Client) FetchListing(ctx context.Context, urls *URLManager, source config.SourceConfig, entry models.ListingEntry) (*models.RawListing, error) {
	listing := &models.RawListing{
		CardTitle: entry.Title,
		Price:     entry.Price,
	}

	if entry.Link == "" {
		return listing, nil
	}

	link, err := source.ResolveLink(entry.Link)
	if err != nil {
		return listing, err
	}

	listing.Link = link

	html, status, duration, err := c.fetcher.ScrapeWithMetrics(ctx, link)
	urls.RecordAttempt(link, err, status, duration)

	if err != nil {
		return listing, fmt.Errorf("failed to fetch %s: %w", link, err)
	}

	detail, err := c.parser.ParseDetailPage(html)
	if err != nil {
		return listing, fmt.Errorf("failed to parse %s: %w", link, err)
	}

	listing.Title = detail.Title
	listing.Attributes = detail.Attributes

	return listing, nil
}
