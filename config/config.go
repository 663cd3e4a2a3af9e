package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "egoryolkin/autosearcher/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr string

	// Wildberries endpoints
	MainMenuURL     string
	CatalogAPIURL   string // listing endpoint template, %s is the category shard
	CatalogCacheTTL time.Duration

	// HTTP transport configuration
	CatalogTimeout   time.Duration
	PageTimeout      time.Duration
	HTTPRetryCount   int
	HTTPRetryWait    time.Duration
	HTTPRetryMaxWait time.Duration

	// Watch configuration
	ScrapeInterval   time.Duration
	WatchURLs        []string
	WatchPriceMin    int
	WatchPriceMax    int
	WatchMinDiscount int
	WatchMaxPages    int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	cacheTTL, _ := strconv.Atoi(getEnv("CATALOG_CACHE_TTL_SECONDS", "3600"))
	catalogTimeout, _ := strconv.Atoi(getEnv("CATALOG_TIMEOUT_SECONDS", "15"))
	pageTimeout, _ := strconv.Atoi(getEnv("PAGE_TIMEOUT_SECONDS", "10"))
	retryCount, _ := strconv.Atoi(getEnv("HTTP_RETRY_COUNT", "5"))
	retryWait, _ := strconv.Atoi(getEnv("HTTP_RETRY_WAIT_MS", "500"))
	retryMaxWait, _ := strconv.Atoi(getEnv("HTTP_RETRY_MAX_WAIT_MS", "8000"))
	scrapeInterval, _ := strconv.Atoi(getEnv("SCRAPE_INTERVAL_SECONDS", "600"))
	priceMin, _ := strconv.Atoi(getEnv("WATCH_PRICE_MIN", "1"))
	priceMax, _ := strconv.Atoi(getEnv("WATCH_PRICE_MAX", "1000000"))
	minDiscount, _ := strconv.Atoi(getEnv("WATCH_MIN_DISCOUNT", "0"))
	maxPages, _ := strconv.Atoi(getEnv("WATCH_MAX_PAGES", "100"))

	return Config{
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "products"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLength,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		MainMenuURL:          getEnv("WB_MAIN_MENU_URL", "https://static-basket-01.wbbasket.ru/vol0/data/main-menu-ru-ru-v3.json"),
		CatalogAPIURL:        getEnv("WB_CATALOG_API_URL", "https://catalog.wb.ru/catalog/%s/v2/catalog"),
		CatalogCacheTTL:      time.Duration(cacheTTL) * time.Second,
		CatalogTimeout:       time.Duration(catalogTimeout) * time.Second,
		PageTimeout:          time.Duration(pageTimeout) * time.Second,
		HTTPRetryCount:       retryCount,
		HTTPRetryWait:        time.Duration(retryWait) * time.Millisecond,
		HTTPRetryMaxWait:     time.Duration(retryMaxWait) * time.Millisecond,
		ScrapeInterval:       time.Duration(scrapeInterval) * time.Second,
		WatchURLs:            splitList(getEnv("WATCH_URLS", "")),
		WatchPriceMin:        priceMin,
		WatchPriceMax:        priceMax,
		WatchMinDiscount:     minDiscount,
		WatchMaxPages:        maxPages,
		Environment:          getEnv("SEARCHER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the scraper cannot run with
func (c *Config) Validate() error {
	if c.RedisStreamCount < 1 {
		return apperrors.NewConfiguration(fmt.Sprintf("redis stream count must be at least 1, got %d", c.RedisStreamCount), nil)
	}
	if !strings.Contains(c.CatalogAPIURL, "%s") {
		return apperrors.NewConfiguration(fmt.Sprintf("catalog API URL must contain a %%s shard placeholder: %s", c.CatalogAPIURL), nil)
	}
	if c.HTTPRetryCount < 0 {
		return apperrors.NewConfiguration(fmt.Sprintf("http retry count must not be negative, got %d", c.HTTPRetryCount), nil)
	}
	if c.WatchMaxPages < 1 {
		return apperrors.NewConfiguration(fmt.Sprintf("watch max pages must be at least 1, got %d", c.WatchMaxPages), nil)
	}
	if c.WatchPriceMin > c.WatchPriceMax {
		return apperrors.NewConfiguration(fmt.Sprintf("watch price range is inverted: %d > %d", c.WatchPriceMin, c.WatchPriceMax), nil)
	}
	if c.ScrapeInterval <= 0 {
		return apperrors.NewConfiguration(fmt.Sprintf("scrape interval must be positive, got %s", c.ScrapeInterval), nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// splitList splits a comma separated environment value, dropping empty entries
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
