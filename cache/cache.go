package cache

import (
	"time"

	"social-dashboard/config"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"
)

// Cache keeps recently read persisted records in memory, keyed by storage key.
type Cache struct {
	client *ristretto.Cache
	ttl    time.Duration
}

// New creates a new cache instance with the given configuration
func New(cfg config.CacheConfig) (*Cache, error) {
	maxCost := int64(cfg.MaxSizeMB) * 1024 * 1024

	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64(cfg.CounterSize),
		MaxCost:     maxCost,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("max_size_mb", cfg.MaxSizeMB).
		Int("ttl_seconds", cfg.TTLSeconds).
		Msg("Record cache initialized")

	return &Cache{
		client: client,
		ttl:    time.Duration(cfg.TTLSeconds) * time.Second,
	}, nil
}

// Get returns the cached raw record for key.
func (c *Cache) Get(key string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	v, ok := c.client.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set stores a raw record and waits until it is visible to Get.
// The cost of a record is its length in bytes.
func (c *Cache) Set(key, value string) bool {
	if c == nil || c.client == nil {
		return false
	}
	ok := c.client.SetWithTTL(key, value, int64(len(value))+1, c.ttl)
	c.client.Wait()
	return ok
}

// Delete removes a key from the cache
func (c *Cache) Delete(key string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(key)
}

// Close cleanly shuts down the cache
func (c *Cache) Close() {
	if c != nil && c.client != nil {
		c.client.Close()
		log.Info().Msg("Record cache closed")
	}
}

// MetricsSnapshot is the JSON view of the cache counters.
type MetricsSnapshot struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	KeysAdded   uint64  `json:"keys_added"`
	KeysEvicted uint64  `json:"keys_evicted"`
	SetsDropped uint64  `json:"sets_dropped"`
	HitRatio    float64 `json:"hit_ratio"`
	TTLSeconds  int     `json:"ttl_seconds"`
}

// GetMetricsSnapshot returns current cache metrics as a snapshot
func (c *Cache) GetMetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return MetricsSnapshot{}
	}
	if c.client == nil || c.client.Metrics == nil {
		return MetricsSnapshot{TTLSeconds: int(c.ttl.Seconds())}
	}

	m := c.client.Metrics
	return MetricsSnapshot{
		Hits:        m.Hits(),
		Misses:      m.Misses(),
		KeysAdded:   m.KeysAdded(),
		KeysEvicted: m.KeysEvicted(),
		SetsDropped: m.SetsDropped(),
		HitRatio:    m.Ratio(),
		TTLSeconds:  int(c.ttl.Seconds()),
	}
}
