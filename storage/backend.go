// Package storage persists dashboard state as JSON documents in a string key/value store
// and reads them back defensively: a record that cannot be parsed or validated is evicted
// and replaced by a known-good fallback.
package storage

import "context"

// Backend is a durable string key/value store.
type Backend interface {
	// Get returns the raw value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Persisted keys.
const (
	KeyBrandProfile   = "brandProfile"
	KeyScheduledPosts = "scheduledPosts"
	KeyFollowerData   = "followerData"
	KeyEngagementData = "engagementData"
	KeyOnboarding     = "hasCompletedOnboarding"
)
