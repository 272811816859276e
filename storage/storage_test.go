package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"social-dashboard/cache"
	"social-dashboard/config"
	"social-dashboard/model"
	"social-dashboard/validator"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

var errDiskFull = errors.New("disk full")

// faultyBackend fails writes for the configured keys.
type faultyBackend struct {
	Backend
	failSet map[string]bool
	failGet bool
}

func (f *faultyBackend) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errDiskFull
	}
	return f.Backend.Get(ctx, key)
}

func (f *faultyBackend) Set(ctx context.Context, key, value string) error {
	if f.failSet[key] {
		return errDiskFull
	}
	return f.Backend.Set(ctx, key, value)
}

func setupTestRedis(t *testing.T) (*RedisBackend, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() {
		client.Close()
		s.Close()
	})
	return NewRedisBackend(client, "test:", time.Second), s
}

func backends(t *testing.T) map[string]Backend {
	rb, _ := setupTestRedis(t)
	c, err := cache.New(config.CacheConfig{MaxSizeMB: 1, TTLSeconds: 60, CounterSize: 100})
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	t.Cleanup(c.Close)
	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"redis":  rb,
		"cached": NewCachedBackend(NewMemoryBackend(), c),
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			profile := model.BrandProfile{
				CompanyDescription: "Acme",
				TargetAudience:     "Founders",
				BrandVoice:         []string{"Witty", "Bold"},
				KnowledgeBase:      "We ship fast",
				InstagramConnected: true,
			}
			if err := Save(ctx, b, KeyBrandProfile, profile); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if got := LoadBrandProfile(ctx, b); !reflect.DeepEqual(got, profile) {
				t.Errorf("LoadBrandProfile() = %+v, want %+v", got, profile)
			}

			posts := model.SeedPosts()
			if err := Save(ctx, b, KeyScheduledPosts, posts); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			gotPosts := Load(ctx, b, KeyScheduledPosts, []model.ScheduledPost(nil), validator.Posts)
			if !reflect.DeepEqual(gotPosts, posts) {
				t.Errorf("Load(posts) = %+v, want %+v", gotPosts, posts)
			}

			followers := model.SeedFollowerData()
			Save(ctx, b, KeyFollowerData, followers)
			if got := Load(ctx, b, KeyFollowerData, []model.FollowerPoint(nil), validator.FollowerSeries); !reflect.DeepEqual(got, followers) {
				t.Errorf("Load(followers) = %+v, want %+v", got, followers)
			}

			engagement := model.SeedEngagementData()
			Save(ctx, b, KeyEngagementData, engagement)
			if got := Load(ctx, b, KeyEngagementData, []model.EngagementPoint(nil), validator.EngagementSeries); !reflect.DeepEqual(got, engagement) {
				t.Errorf("Load(engagement) = %+v, want %+v", got, engagement)
			}
		})
	}
}

func TestLoad_AbsentReturnsFallback(t *testing.T) {
	b := NewMemoryBackend()
	fallback := model.SeedPosts()

	got := Load(context.Background(), b, KeyScheduledPosts, fallback, validator.Posts)
	if !reflect.DeepEqual(got, fallback) {
		t.Errorf("Expected fallback, got %+v", got)
	}
}

func TestLoad_FailsClosedOnCorruption(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"Unparseable", `{not json`},
		{"Post missing platform", `[{"id":1,"day":"Monday","scheduledTime":"9:00 AM","isABTest":false,"content":"x"}]`},
		{"Wrong top-level type", `{"id":1}`},
		{"Fractional id passes validator but fails decode", `[{"id":1.5,"platform":"LinkedIn","day":"Monday","scheduledTime":"9:00 AM","isABTest":false,"content":"x"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			b := NewMemoryBackend()
			b.Set(ctx, KeyScheduledPosts, tt.raw)

			fallback := model.SeedPosts()
			got := Load(ctx, b, KeyScheduledPosts, fallback, validator.Posts)

			if !reflect.DeepEqual(got, fallback) {
				t.Errorf("Expected fallback, got %+v", got)
			}
			if _, ok, _ := b.Get(ctx, KeyScheduledPosts); ok {
				t.Error("Corrupted key should be evicted")
			}
		})
	}
}

func TestLoad_ReadErrorReturnsFallback(t *testing.T) {
	b := &faultyBackend{Backend: NewMemoryBackend(), failGet: true}
	got := Load(context.Background(), b, KeyEngagementData, model.SeedEngagementData(), validator.EngagementSeries)
	if !reflect.DeepEqual(got, model.SeedEngagementData()) {
		t.Errorf("Expected fallback on read error, got %+v", got)
	}
}

func TestLoadBrandProfile_MergesDefaults(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	b.Set(ctx, KeyBrandProfile, `{"companyDescription":"Acme","linkedInConnected":true}`)

	got := LoadBrandProfile(ctx, b)

	want := model.DefaultBrandProfile()
	want.CompanyDescription = "Acme"
	want.LinkedInConnected = true
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadBrandProfile() = %+v, want %+v", got, want)
	}
}

func TestLoadBrandProfile_NullIsEvicted(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	b.Set(ctx, KeyBrandProfile, `null`)

	if got := LoadBrandProfile(ctx, b); !reflect.DeepEqual(got, model.DefaultBrandProfile()) {
		t.Errorf("Expected defaults, got %+v", got)
	}
	if _, ok, _ := b.Get(ctx, KeyBrandProfile); ok {
		t.Error("null profile should be evicted")
	}
}

func TestSave_WriteFailure(t *testing.T) {
	b := &faultyBackend{Backend: NewMemoryBackend(), failSet: map[string]bool{KeyScheduledPosts: true}}

	err := Save(context.Background(), b, KeyScheduledPosts, model.SeedPosts())
	if !errors.Is(err, errDiskFull) {
		t.Errorf("Expected wrapped write error, got %v", err)
	}
}

func TestSaveValidated(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	good := []model.FollowerPoint{{Name: "Mon", LinkedIn: 10, Instagram: 20}}
	if err := SaveValidated(ctx, b, KeyFollowerData, good, validator.FollowerSeries); err != nil {
		t.Fatalf("SaveValidated() error = %v", err)
	}

	bad := []model.FollowerPoint{{Name: "Mon", LinkedIn: -1, Instagram: 20}}
	err := SaveValidated(ctx, b, KeyFollowerData, bad, validator.FollowerSeries)
	if !errors.Is(err, ErrInvalidRecord) || !errors.Is(err, validator.ErrInvalidCount) {
		t.Fatalf("Expected ErrInvalidRecord wrapping ErrInvalidCount, got %v", err)
	}

	got := Load(ctx, b, KeyFollowerData, []model.FollowerPoint(nil), validator.FollowerSeries)
	if !reflect.DeepEqual(got, good) {
		t.Errorf("Rejected write replaced stored record: %+v", got)
	}
}

func TestSaveAll_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()
	mem.Set(ctx, KeyFollowerData, `[{"name":"Mon","LinkedIn":1,"Instagram":2}]`)

	b := &faultyBackend{Backend: mem, failSet: map[string]bool{KeyEngagementData: true}}

	err := SaveAll(ctx, b,
		Entry{Key: KeyFollowerData, Value: model.SeedFollowerData()},
		Entry{Key: KeyEngagementData, Value: model.SeedEngagementData()},
	)
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("Expected write error, got %v", err)
	}

	raw, _, _ := mem.Get(ctx, KeyFollowerData)
	if raw != `[{"name":"Mon","LinkedIn":1,"Instagram":2}]` {
		t.Errorf("Follower data not restored, got %s", raw)
	}
	if _, ok, _ := mem.Get(ctx, KeyEngagementData); ok {
		t.Error("Engagement data should still be absent")
	}
}

func TestSaveAll_RemovesKeysThatDidNotExist(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()
	b := &faultyBackend{Backend: mem, failSet: map[string]bool{KeyEngagementData: true}}

	SaveAll(ctx, b,
		Entry{Key: KeyFollowerData, Value: model.SeedFollowerData()},
		Entry{Key: KeyEngagementData, Value: model.SeedEngagementData()},
	)

	if _, ok, _ := mem.Get(ctx, KeyFollowerData); ok {
		t.Error("Follower data written by the failed call should be removed")
	}
}

func TestCachedBackend_InvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	c, err := cache.New(config.CacheConfig{MaxSizeMB: 1, TTLSeconds: 60, CounterSize: 100})
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	defer c.Close()

	mem := NewMemoryBackend()
	b := NewCachedBackend(mem, c)

	b.Set(ctx, KeyFollowerData, "v1")
	if v, _, _ := b.Get(ctx, KeyFollowerData); v != "v1" {
		t.Fatalf("Expected v1, got %q", v)
	}
	if _, cached := c.Get(KeyFollowerData); !cached {
		t.Error("Read should populate the cache")
	}

	b.Set(ctx, KeyFollowerData, "v2")
	if v, _, _ := b.Get(ctx, KeyFollowerData); v != "v2" {
		t.Errorf("Expected v2 after write, got %q", v)
	}

	b.Delete(ctx, KeyFollowerData)
	if _, ok, _ := b.Get(ctx, KeyFollowerData); ok {
		t.Error("Deleted key should miss")
	}
}

func TestRedisBackend_Prefix(t *testing.T) {
	ctx := context.Background()
	b, s := setupTestRedis(t)

	if err := b.Set(ctx, KeyOnboarding, "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, err := s.Get("test:" + KeyOnboarding); err != nil || got != "true" {
		t.Errorf("Expected prefixed key in redis, got %q, %v", got, err)
	}

	done, err := OnboardingCompleted(ctx, b)
	if err != nil || !done {
		t.Errorf("OnboardingCompleted() = %v, %v", done, err)
	}
}

func TestOnboardingFlag(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	done, err := OnboardingCompleted(ctx, b)
	if err != nil || done {
		t.Fatalf("Fresh profile should not have completed onboarding: %v, %v", done, err)
	}

	if err := MarkOnboardingCompleted(ctx, b); err != nil {
		t.Fatalf("MarkOnboardingCompleted() error = %v", err)
	}
	if done, _ := OnboardingCompleted(ctx, b); !done {
		t.Error("Flag should be present after marking")
	}
}
