package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"egoryolkin/autosearcher/helpers"
	"egoryolkin/autosearcher/internal/catalog"
	"egoryolkin/autosearcher/internal/scraper"
	"egoryolkin/autosearcher/services/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fake Wildberries main menu with one resolvable leaf
const testMenuJSON = `[
	{
		"name": "Sport",
		"childs": [
			{"name": "Bikes", "url": "/catalog/sport/bikes", "shard": "bikes14", "query": "cat=1234"}
		]
	}
]`

// capturePublisher records published batches in memory
type capturePublisher struct {
	mu       sync.Mutex
	messages map[string][]byte
}

func (p *capturePublisher) Publish(category string, message []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages[category] = append([]byte(nil), message...)
	return nil
}

func (p *capturePublisher) TrimStreams() error { return nil }
func (p *capturePublisher) Close() error       { return nil }

func listingItem(id int, basic, product int64) string {
	return fmt.Sprintf(
		`{"id":%d,"name":"Product %d","brand":"Brand","rating":4.2,"feedbacks":7,"sizes":[{"price":{"basic":%d,"product":%d}}]}`,
		id, id, basic, product)
}

func TestScrapePipelineEndToEnd(t *testing.T) {
	menuServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testMenuJSON))
	}))
	defer menuServer.Close()

	// Two pages of products, then the end-of-results empty page
	listingServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/catalog/bikes14/v2/catalog", r.URL.Path)
		assert.Equal(t, "1234", r.URL.Query().Get("cat"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			fmt.Fprintf(w, `{"data":{"products":[%s,%s]}}`,
				listingItem(101, 150000, 120000), listingItem(102, 99000, 99000))
		case 2:
			fmt.Fprintf(w, `{"data":{"products":[%s]}}`, listingItem(103, 500000, 450000))
		default:
			w.Write([]byte(`{"data":{"products":[]}}`))
		}
	}))
	defer listingServer.Close()

	client := helpers.NewHTTPClient(helpers.HTTPOptions{
		RetryCount:   2,
		RetryWait:    time.Millisecond,
		RetryMaxWait: 5 * time.Millisecond,
	})

	cat := catalog.New(client, nil, catalog.Options{
		MenuURL: menuServer.URL,
		Timeout: time.Second,
	})
	s := scraper.New(client, cat, scraper.Options{
		ListingURL:  listingServer.URL + "/catalog/%s/v2/catalog",
		PageTimeout: time.Second,
	})

	watchURL := "https://www.wildberries.ru/catalog/sport/bikes"
	records := s.Scrape(context.Background(), watchURL, scraper.Filter{
		PriceMin: 1,
		PriceMax: 1000000,
		MaxPages: 10,
	})

	require.Len(t, records, 3)
	assert.Equal(t, int64(101), records[0].ID)
	assert.Equal(t, 1500, records[0].ListPrice)
	assert.Equal(t, 1200, records[0].SalePrice)
	assert.Equal(t, "https://www.wildberries.ru/catalog/103/detail.aspx", records[2].DetailURL)

	// Run the same scrape through the worker and verify the published batch.
	// One cycle is enough; cancel before the second interval fires.
	pub := &capturePublisher{messages: make(map[string][]byte)}
	ctx, cancel := context.WithCancel(context.Background())
	w := worker.NewWorker(
		ctx,
		s,
		[]worker.Watch{{URL: watchURL, Filter: scraper.Filter{PriceMin: 1, PriceMax: 1000000, MaxPages: 10}}},
		pub,
		time.Hour,
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start()
	}()
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker cycle did not finish")
	}

	batchData, ok := pub.messages[watchURL]
	require.True(t, ok, "worker should have published a batch")

	var batch []scraper.ProductRecord
	require.NoError(t, json.Unmarshal(batchData, &batch))
	assert.Len(t, batch, 3)
}
