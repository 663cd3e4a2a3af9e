package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeCatalog represents category tree fetch/parse errors
	ErrorTypeCatalog ErrorType = "catalog"
	// ErrorTypeResolve represents URL-to-category resolution errors
	ErrorTypeResolve ErrorType = "resolve"
	// ErrorTypeFetch represents listing page fetch errors
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeExtraction represents per-item extraction errors
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a scraper-specific error
type ScrapeError struct {
	Type     ErrorType
	Category string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Category, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is worth retrying on a later run
func (e *ScrapeError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeCatalog, ErrorTypeFetch, ErrorTypeCache, ErrorTypePublisher:
		return true
	default:
		return false
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, category, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:     errType,
		Category: category,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewCatalog creates a new catalog error
func NewCatalog(message string, err error) *ScrapeError {
	return New(ErrorTypeCatalog, "", message, err)
}

// NewResolve creates a new resolution error
func NewResolve(url string) *ScrapeError {
	return New(ErrorTypeResolve, "", fmt.Sprintf("no category matches %s", url), nil)
}

// NewFetch creates a new page fetch error
func NewFetch(category string, page int, err error) *ScrapeError {
	return New(ErrorTypeFetch, category, fmt.Sprintf("page %d fetch failed", page), err)
}

// NewExtraction creates a new extraction error
func NewExtraction(category, message string, err error) *ScrapeError {
	return New(ErrorTypeExtraction, category, message, err)
}

// NewCache creates a new cache error
func NewCache(message string, err error) *ScrapeError {
	return New(ErrorTypeCache, "", message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(message string, err error) *ScrapeError {
	return New(ErrorTypePublisher, "", message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}
