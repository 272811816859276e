package storage

import (
	"context"

	"social-dashboard/cache"
)

// CachedBackend serves reads from the record cache and falls through to the durable
// backend on a miss. Writes go to the durable backend first; the cached entry is
// dropped whatever the outcome so a failed write never leaves a stale hit behind.
type CachedBackend struct {
	next  Backend
	cache *cache.Cache
}

func NewCachedBackend(next Backend, c *cache.Cache) *CachedBackend {
	return &CachedBackend{next: next, cache: c}
}

func (b *CachedBackend) Get(ctx context.Context, key string) (string, bool, error) {
	if v, ok := b.cache.Get(key); ok {
		return v, true, nil
	}

	v, ok, err := b.next.Get(ctx, key)
	if err != nil || !ok {
		return v, ok, err
	}
	b.cache.Set(key, v)
	return v, true, nil
}

func (b *CachedBackend) Set(ctx context.Context, key, value string) error {
	defer b.cache.Delete(key)
	return b.next.Set(ctx, key, value)
}

func (b *CachedBackend) Delete(ctx context.Context, key string) error {
	defer b.cache.Delete(key)
	return b.next.Delete(ctx, key)
}
