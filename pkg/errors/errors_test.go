package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrapeErrorFormatting(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewFetch("Bikes", 2, cause)

	assert.Contains(t, err.Error(), "[fetch]")
	assert.Contains(t, err.Error(), "Bikes")
	assert.Contains(t, err.Error(), "page 2")
	assert.Equal(t, cause, err.Unwrap())

	bare := NewResolve("https://www.wildberries.ru/catalog/unknown")
	assert.Contains(t, bare.Error(), "[resolve]")
	assert.Nil(t, bare.Unwrap())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, NewCatalog("menu down", nil).IsRetryable())
	assert.True(t, NewFetch("Bikes", 1, nil).IsRetryable())
	assert.True(t, NewCache("miss", nil).IsRetryable())
	assert.True(t, NewPublisher("stream full", nil).IsRetryable())

	assert.False(t, NewResolve("url").IsRetryable())
	assert.False(t, NewExtraction("Bikes", "bad item", nil).IsRetryable())
	assert.False(t, NewConfiguration("bad value", nil).IsRetryable())
}
