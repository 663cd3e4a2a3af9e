package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"egoryolkin/autosearcher/config"
	"egoryolkin/autosearcher/helpers"
	"egoryolkin/autosearcher/internal/catalog"
	"egoryolkin/autosearcher/internal/scraper"
	"egoryolkin/autosearcher/logger"
	"egoryolkin/autosearcher/services/cache"
	"egoryolkin/autosearcher/services/publisher"
	"egoryolkin/autosearcher/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("scrape_interval", cfg.ScrapeInterval).
		Int("watch_count", len(cfg.WatchURLs)).
		Msg("Starting application")

	if len(cfg.WatchURLs) == 0 {
		log.Fatal().Msg("No watch URLs configured, set WATCH_URLS")
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Shared HTTP client with retry and backoff
	httpClient := helpers.NewHTTPClient(helpers.HTTPOptions{
		RetryCount:   cfg.HTTPRetryCount,
		RetryWait:    cfg.HTTPRetryWait,
		RetryMaxWait: cfg.HTTPRetryMaxWait,
	})
	defer httpClient.Close()

	// Initialize cache service
	cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	// Initialize publisher
	redisPublisher := publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	defer redisPublisher.Close()

	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	// Build the catalog and scraper
	cat := catalog.New(httpClient, cacheService, catalog.Options{
		MenuURL:  cfg.MainMenuURL,
		Timeout:  cfg.CatalogTimeout,
		CacheTTL: cfg.CatalogCacheTTL,
	})
	s := scraper.New(httpClient, cat, scraper.Options{
		ListingURL:  cfg.CatalogAPIURL,
		PageTimeout: cfg.PageTimeout,
	})

	// Build watches from configuration
	watches := make([]worker.Watch, 0, len(cfg.WatchURLs))
	for _, url := range cfg.WatchURLs {
		watches = append(watches, worker.Watch{
			URL: url,
			Filter: scraper.Filter{
				PriceMin:    cfg.WatchPriceMin,
				PriceMax:    cfg.WatchPriceMax,
				MinDiscount: cfg.WatchMinDiscount,
				MaxPages:    cfg.WatchMaxPages,
			},
		})
	}

	// Create and start worker
	w := worker.NewWorker(ctx, s, watches, redisPublisher, cfg.ScrapeInterval)

	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting scrape worker")
		workerDone <- w.Start()
	}()

	// Wait for shutdown signal or worker error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	log.Info().Msg("Shutting down gracefully...")
}
