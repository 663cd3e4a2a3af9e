package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"egoryolkin/autosearcher/helpers"
	"egoryolkin/autosearcher/logger"
	apperrors "egoryolkin/autosearcher/pkg/errors"
	"egoryolkin/autosearcher/services/cache"

	"resty.dev/v3"
)

// domainMarker separates the scheme/host prefix from the catalog path in
// consumer-facing Wildberries URLs.
const domainMarker = "wildberries.ru"

// ErrNotFound is returned by Resolve when no leaf category matches the URL
var ErrNotFound = errors.New("category not found")

// Category is one leaf of the Wildberries catalog tree. Only leaves are
// addressable for product listings; shard and query are the opaque routing
// tokens the listing endpoint requires.
type Category struct {
	Name  string
	Path  string
	Shard string
	Query string
}

// node mirrors one entry of the main-menu JSON tree
type node struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Shard  string `json:"shard"`
	Query  string `json:"query"`
	Childs []node `json:"childs"`
}

// Options configures the catalog
type Options struct {
	MenuURL  string
	Timeout  time.Duration
	CacheKey string
	CacheTTL time.Duration
}

// Catalog fetches, caches and flattens the category tree, and resolves
// consumer URLs to leaf categories. The flattened sequence is populated at
// most once per process unless Invalidate is called; a failed fetch caches
// an empty sequence rather than being retried on every resolution.
type Catalog struct {
	client   *resty.Client
	cacheSvc cache.CacheService
	opts     Options
	log      *logger.Logger

	mu         sync.Mutex
	populated  bool
	categories []Category
}

// New creates a catalog backed by the shared HTTP client. cacheSvc may be
// nil; when present it keeps the raw menu payload across process restarts.
func New(client *resty.Client, cacheSvc cache.CacheService, opts Options) *Catalog {
	if opts.CacheKey == "" {
		opts.CacheKey = "wb_main_menu"
	}
	return &Catalog{
		client:   client,
		cacheSvc: cacheSvc,
		opts:     opts,
		log:      logger.ForCatalog(),
	}
}

// Categories returns the flattened leaf categories, populating them on first
// use. Holding the mutex across the populate means concurrent callers wait
// for the single in-flight fetch and reuse its result.
func (c *Catalog) Categories(ctx context.Context) []Category {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.populated {
		c.populateLocked(ctx)
	}
	return c.categories
}

// Invalidate drops the cached categories so the next call re-fetches the tree
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.populated = false
	c.categories = nil

	if c.cacheSvc != nil {
		if err := c.cacheSvc.Delete(c.opts.CacheKey); err != nil {
			c.log.Debug().Err(err).Msg("Failed to drop cached menu payload")
		}
	}
}

// Resolve matches a consumer-facing catalog URL against the cached leaf
// categories. The first exact path match wins, in tree traversal order.
func (c *Catalog) Resolve(ctx context.Context, rawURL string) (Category, error) {
	path, err := helpers.GetSplitPart(rawURL, domainMarker, 1)
	if err != nil {
		// No domain marker in the URL; match the string as given
		path = rawURL
	}

	for _, category := range c.Categories(ctx) {
		if category.Path == path {
			return category, nil
		}
	}
	return Category{}, ErrNotFound
}

// populateLocked fetches and flattens the tree. Callers must hold c.mu.
// Failure is not fatal: the empty sequence is cached so every subsequent
// resolution degrades to not-found instead of hammering the menu endpoint.
func (c *Catalog) populateLocked(ctx context.Context) {
	raw := c.fetchMenu(ctx)

	var roots []node
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &roots); err != nil {
			c.log.Error().
				Err(apperrors.NewCatalog("unparseable main menu payload", err)).
				Msg("Failed to parse category tree")
			roots = nil
		}
	}

	c.categories = flatten(roots)
	c.populated = true

	c.log.Info().
		Int("categories", len(c.categories)).
		Msg("Category catalog populated")
}

// fetchMenu returns the raw menu payload, preferring the cross-process cache
func (c *Catalog) fetchMenu(ctx context.Context) []byte {
	if c.cacheSvc != nil {
		if payload, err := c.cacheSvc.Get(c.opts.CacheKey); err == nil && len(payload) > 0 {
			c.log.Debug().Msg("Using cached main menu payload")
			return payload
		}
	}

	// Timeout bounds each attempt; the context only carries cancellation.
	// A whole-chain deadline would cut the retry budget short.
	resp, err := c.client.R().
		SetContext(ctx).
		SetTimeout(c.opts.Timeout).
		Get(c.opts.MenuURL)
	if err != nil {
		c.log.Error().
			Err(apperrors.NewCatalog("main menu request failed", err)).
			Msg("Failed to load category tree")
		return nil
	}
	if resp.IsError() {
		c.log.Error().
			Err(apperrors.NewCatalog(fmt.Sprintf("main menu returned status %d", resp.StatusCode()), nil)).
			Msg("Failed to load category tree")
		return nil
	}

	payload := []byte(resp.String())

	if c.cacheSvc != nil {
		if err := c.cacheSvc.Set(c.opts.CacheKey, payload, c.opts.CacheTTL); err != nil {
			c.log.Warn().
				Err(apperrors.NewCache("failed to store menu payload", err)).
				Msg("Menu payload not cached")
		}
	}

	return payload
}

// flatten walks the tree with an explicit work stack and keeps only leaves
// carrying a usable path. A node with children is expanded, never retained.
// The explicit stack bounds memory for deep or malformed trees and preserves
// document order, which makes duplicate-path resolution deterministic.
func flatten(roots []node) []Category {
	var categories []Category

	stack := make([]node, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(n.Childs) > 0 {
			for i := len(n.Childs) - 1; i >= 0; i-- {
				stack = append(stack, n.Childs[i])
			}
			continue
		}

		if n.URL == "" {
			continue
		}

		categories = append(categories, Category{
			Name:  n.Name,
			Path:  n.URL,
			Shard: n.Shard,
			Query: n.Query,
		})
	}

	return categories
}
