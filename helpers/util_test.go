package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSplitPart(t *testing.T) {
	part, err := GetSplitPart("https://www.wildberries.ru/catalog/sport/bikes", "wildberries.ru", 1)
	assert.NoError(t, err)
	assert.Equal(t, "/catalog/sport/bikes", part)

	_, err = GetSplitPart("https://example.com/catalog", "wildberries.ru", 1)
	assert.Error(t, err)
}
