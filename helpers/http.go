package helpers

import (
	"slices"
	"time"

	"resty.dev/v3"
)

// Retryable server-side status codes. Everything else fails immediately.
var retryableStatusCodes = []int{502, 503, 504}

// Default browser-like headers for upstream requests
var (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"
)

// HTTPOptions configures the shared resty transport
type HTTPOptions struct {
	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
}

// NewHTTPClient creates the shared HTTP client used for every upstream call.
// Retries apply to connection-level failures and to 502/503/504 responses,
// with exponential backoff between RetryWait and RetryMaxWait. Per-call
// deadlines are supplied by callers through the request context.
func NewHTTPClient(opts HTTPOptions) *resty.Client {
	client := resty.New().
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryMaxWait).
		SetHeader("User-Agent", defaultUserAgent).
		SetHeader("Accept", "*/*")

	client.AddRetryConditions(func(resp *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		if resp == nil {
			return false
		}
		return slices.Contains(retryableStatusCodes, resp.StatusCode())
	})

	return client
}
