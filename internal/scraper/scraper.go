package scraper

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"egoryolkin/autosearcher/internal/catalog"
	"egoryolkin/autosearcher/logger"
	apperrors "egoryolkin/autosearcher/pkg/errors"

	"resty.dev/v3"
)

// Fixed listing parameters the endpoint expects on every page request
var fixedListingParams = map[string]string{
	"appType": "1",
	"curr":    "rub",
	"dest":    "-1257786",
	"locale":  "ru",
	"sort":    "popular",
	"spp":     "0",
}

// Filter holds the caller-supplied listing constraints. Price bounds are
// inclusive whole rubles; MinDiscount is a percentage passed through to the
// upstream query; MaxPages bounds the worst-case page count.
type Filter struct {
	PriceMin    int
	PriceMax    int
	MinDiscount int
	MaxPages    int
}

// DefaultFilter returns the wide-open defaults
func DefaultFilter() Filter {
	return Filter{
		PriceMin:    1,
		PriceMax:    1000000,
		MinDiscount: 0,
		MaxPages:    100,
	}
}

// Options configures the scraper
type Options struct {
	ListingURL  string // endpoint template, %s is the category shard
	PageTimeout time.Duration
}

// Scraper retrieves product records page by page for a resolved category.
// Pages are fetched strictly in order because later pages only matter while
// earlier ones have not signaled end-of-results.
type Scraper struct {
	client  *resty.Client
	catalog *catalog.Catalog
	opts    Options
	log     *logger.Logger
}

// New creates a scraper sharing the resilient HTTP client with the catalog
func New(client *resty.Client, cat *catalog.Catalog, opts Options) *Scraper {
	return &Scraper{
		client:  client,
		catalog: cat,
		opts:    opts,
		log:     logger.ForScraper(),
	}
}

// Scrape resolves the URL and accumulates records until the page cap is
// reached, a fetch fails after retries, or a page yields zero records.
// Every failure degrades to a smaller well-typed result instead of an
// error: an unresolved category yields an empty sequence, a failed page
// yields whatever was accumulated from earlier pages.
func (s *Scraper) Scrape(ctx context.Context, rawURL string, filter Filter) []ProductRecord {
	category, err := s.catalog.Resolve(ctx, rawURL)
	if err != nil {
		s.log.Error().
			Err(apperrors.NewResolve(rawURL)).
			Msg("Category resolution failed")
		return nil
	}

	var records []ProductRecord
	for page := 1; page <= filter.MaxPages; page++ {
		select {
		case <-ctx.Done():
			s.log.Warn().
				Str("category", category.Name).
				Int("page", page).
				Msg("Scrape cancelled, returning partial results")
			return records
		default:
		}

		payload, err := s.fetchPage(ctx, category, page, filter)
		if err != nil {
			s.log.Error().
				Err(err).
				Msg("Page fetch failed, returning partial results")
			break
		}

		pageRecords := extractRecords(payload, s.log)
		if len(pageRecords) == 0 {
			// the upstream's implicit end-of-results signal
			break
		}
		records = append(records, pageRecords...)
	}

	s.log.Info().
		Str("category", category.Name).
		Int("records", len(records)).
		Msg("Scrape finished")
	return records
}

// fetchPage requests one listing page through the retry-backed client
func (s *Scraper) fetchPage(ctx context.Context, category catalog.Category, page int, filter Filter) ([]byte, error) {
	url := fmt.Sprintf(s.opts.ListingURL, category.Shard)
	if category.Query != "" {
		url += "?" + category.Query
	}

	// PageTimeout bounds each attempt; the context only carries cancellation.
	// A whole-chain deadline would cut the retry budget short.
	resp, err := s.client.R().
		SetContext(ctx).
		SetTimeout(s.opts.PageTimeout).
		SetQueryParams(fixedListingParams).
		SetQueryParams(map[string]string{
			"page":     strconv.Itoa(page),
			"priceU":   fmt.Sprintf("%d;%d", filter.PriceMin*minorUnitsPerRuble, filter.PriceMax*minorUnitsPerRuble),
			"discount": strconv.Itoa(filter.MinDiscount),
		}).
		Get(url)
	if err != nil {
		return nil, apperrors.NewFetch(category.Name, page, err)
	}
	if resp.IsError() {
		return nil, apperrors.NewFetch(category.Name, page, fmt.Errorf("unexpected status code: %d", resp.StatusCode()))
	}

	return []byte(resp.String()), nil
}
