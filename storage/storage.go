package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"social-dashboard/metrics"
	"social-dashboard/model"
	"social-dashboard/validator"

	"github.com/rs/zerolog/log"
)

// Load reads key and returns its decoded value. It never fails: an absent key yields
// fallback, and a value that cannot be parsed, validated or decoded is evicted from the
// backend before fallback is returned.
func Load[T any](ctx context.Context, b Backend, key string, fallback T, validate validator.Func) T {
	var out T
	if !loadInto(ctx, b, key, validate, &out) {
		return fallback
	}
	return out
}

// LoadBrandProfile loads the brand profile decoded over the defaults, so fields added
// since the record was written are always present.
func LoadBrandProfile(ctx context.Context, b Backend) model.BrandProfile {
	profile := model.DefaultBrandProfile()
	if !loadInto(ctx, b, KeyBrandProfile, validator.BrandProfile, &profile) {
		return model.DefaultBrandProfile()
	}
	if profile.BrandVoice == nil {
		profile.BrandVoice = []string{}
	}
	return profile
}

func loadInto(ctx context.Context, b Backend, key string, validate validator.Func, target interface{}) bool {
	raw, ok, err := b.Get(ctx, key)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to read persisted record, using fallback")
		return false
	}
	if !ok || raw == "" {
		return false
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		evict(ctx, b, key, "parse", err)
		return false
	}
	if err := validate(parsed); err != nil {
		evict(ctx, b, key, "invalid", err)
		return false
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		evict(ctx, b, key, "decode", err)
		return false
	}
	return true
}

func evict(ctx context.Context, b Backend, key, reason string, cause error) {
	log.Warn().Err(cause).Str("key", key).Str("reason", reason).Msg("Discarding persisted record")
	metrics.RecordsEvicted.WithLabelValues(key, reason).Inc()

	if err := b.Delete(ctx, key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to remove corrupted record")
	}
}

// Save serializes value and writes it under key.
func Save(ctx context.Context, b Backend, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := b.Set(ctx, key, string(data)); err != nil {
		metrics.PersistenceFailures.WithLabelValues(key).Inc()
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// SaveValidated writes value under key only if the encoded record passes validate, the
// same check Load applies when reading it back.
func SaveValidated(ctx context.Context, b Backend, key string, value interface{}, validate validator.Func) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	var parsed interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := validate(parsed); err != nil {
		return fmt.Errorf("%s: %w: %w", key, ErrInvalidRecord, err)
	}

	if err := b.Set(ctx, key, string(data)); err != nil {
		metrics.PersistenceFailures.WithLabelValues(key).Inc()
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Entry is one key of a multi-key write.
type Entry struct {
	Key   string
	Value interface{}
}

// SaveAll writes every entry or none of them: when a write fails, keys already written
// are restored to the raw values they held before the call.
func SaveAll(ctx context.Context, b Backend, entries ...Entry) error {
	encoded := make([]string, len(entries))
	for i, e := range entries {
		data, err := json.Marshal(e.Value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", e.Key, err)
		}
		encoded[i] = string(data)
	}

	type previous struct {
		raw     string
		present bool
	}
	prev := make([]previous, len(entries))
	for i, e := range entries {
		raw, ok, err := b.Get(ctx, e.Key)
		if err != nil {
			return fmt.Errorf("read %s before write: %w", e.Key, err)
		}
		prev[i] = previous{raw: raw, present: ok}
	}

	for i, e := range entries {
		if err := b.Set(ctx, e.Key, encoded[i]); err != nil {
			metrics.PersistenceFailures.WithLabelValues(e.Key).Inc()
			for j := i - 1; j >= 0; j-- {
				restore(ctx, b, entries[j].Key, prev[j].raw, prev[j].present)
			}
			return fmt.Errorf("write %s: %w", e.Key, err)
		}
	}
	return nil
}

func restore(ctx context.Context, b Backend, key, raw string, present bool) {
	var err error
	if present {
		err = b.Set(ctx, key, raw)
	} else {
		err = b.Delete(ctx, key)
	}
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to roll back partial write")
	}
}

// OnboardingCompleted reports whether the onboarding flag is present.
func OnboardingCompleted(ctx context.Context, b Backend) (bool, error) {
	raw, ok, err := b.Get(ctx, KeyOnboarding)
	if err != nil {
		return false, err
	}
	return ok && raw != "", nil
}

// MarkOnboardingCompleted persists the onboarding flag.
func MarkOnboardingCompleted(ctx context.Context, b Backend) error {
	if err := b.Set(ctx, KeyOnboarding, "true"); err != nil {
		metrics.PersistenceFailures.WithLabelValues(KeyOnboarding).Inc()
		return fmt.Errorf("write %s: %w", KeyOnboarding, err)
	}
	return nil
}
