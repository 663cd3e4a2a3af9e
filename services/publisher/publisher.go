package publisher

// Publisher represents a service for publishing scraped product batches
type Publisher interface {
	// Publish publishes one category's record batch
	Publish(category string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
