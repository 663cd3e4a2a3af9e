package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"egoryolkin/autosearcher/internal/scraper"
	"egoryolkin/autosearcher/logger"
	apperrors "egoryolkin/autosearcher/pkg/errors"
	"egoryolkin/autosearcher/services/publisher"
)

// Watch is one catalog URL scraped on every cycle with its own filter
type Watch struct {
	URL    string
	Filter scraper.Filter
}

// Scraper is the surface the worker needs; satisfied by *scraper.Scraper
type Scraper interface {
	Scrape(ctx context.Context, url string, filter scraper.Filter) []scraper.ProductRecord
}

// Worker runs the configured watches on an interval and publishes the
// scraped record batches
type Worker struct {
	ctx       context.Context
	scraper   Scraper
	watches   []Watch
	publisher publisher.Publisher
	log       *logger.Logger
	interval  time.Duration
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	s Scraper,
	watches []Watch,
	pub publisher.Publisher,
	interval time.Duration,
) *Worker {
	return &Worker{
		ctx:       ctx,
		scraper:   s,
		watches:   watches,
		publisher: pub,
		log:       logger.ForWorker(),
		interval:  interval,
	}
}

// Start runs scrape cycles until the context is cancelled
func (w *Worker) Start() error {
	for {
		start := time.Now()
		w.runWatches()
		w.log.Debug().
			Dur("elapsed", time.Since(start)).
			Msg("Scrape cycle finished")

		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-time.After(w.interval):
		}
	}
}

// runWatches scrapes all watches in parallel and then trims the streams.
// Watches are independent; the scraper itself fetches pages sequentially.
func (w *Worker) runWatches() {
	var wg sync.WaitGroup
	for _, watch := range w.watches {
		wg.Add(1)
		go func(watch Watch) {
			defer wg.Done()
			w.scrapeAndPublish(watch)
		}(watch)
	}
	wg.Wait()

	if err := w.publisher.TrimStreams(); err != nil {
		w.log.Error().
			Err(apperrors.NewPublisher("stream trimming failed", err)).
			Msg("Failed to trim streams")
	}
}

// scrapeAndPublish runs one watch and publishes its batch
func (w *Worker) scrapeAndPublish(watch Watch) {
	records := w.scraper.Scrape(w.ctx, watch.URL, watch.Filter)
	if len(records) == 0 {
		w.log.Info().
			Str("url", watch.URL).
			Msg("Watch produced no records")
		return
	}

	batch, err := json.Marshal(records)
	if err != nil {
		w.log.Error().
			Err(err).
			Str("url", watch.URL).
			Msg("Failed to marshal record batch")
		return
	}

	if err := w.publisher.Publish(watch.URL, batch); err != nil {
		pubErr := apperrors.NewPublisher("batch publish failed", err)
		w.log.Error().
			Err(pubErr).
			Bool("retryable", pubErr.IsRetryable()).
			Str("url", watch.URL).
			Msg("Failed to publish record batch")
		return
	}

	w.log.Info().
		Str("url", watch.URL).
		Int("records", len(records)).
		Msg("Published record batch")
}
