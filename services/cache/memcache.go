package cache

import (
	"time"

	"egoryolkin/autosearcher/logger"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheService implements CacheService using memcache
type MemcacheService struct {
	client *memcache.Client
	log    *logger.Logger
}

// NewMemcacheService creates a new memcache service
func NewMemcacheService(serverAddr string) *MemcacheService {
	log := logger.ForCache()
	log.Debug().Str("addr", serverAddr).Msg("Memcache client created")
	return &MemcacheService{
		client: memcache.New(serverAddr),
		log:    log,
	}
}

// Get retrieves a value from memcache
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(key)
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

// Set stores a value in memcache with an expiration time
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.log.Debug().
		Str("key", key).
		Int("bytes", len(value)).
		Dur("ttl", expiration).
		Msg("Storing cache entry")
	return m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(expiration.Seconds()),
	})
}

// Delete removes a value from memcache
func (m *MemcacheService) Delete(key string) error {
	return m.client.Delete(key)
}
