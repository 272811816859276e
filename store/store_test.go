package store

import (
	"context"
	"errors"
	"math/rand/v2"
	"reflect"
	"sync"
	"testing"
	"time"

	"social-dashboard/abtest"
	"social-dashboard/metrics"
	"social-dashboard/model"
	"social-dashboard/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var errWriteFailed = errors.New("quota exceeded")

// flakyBackend fails writes to selected keys and counts writes per key.
type flakyBackend struct {
	storage.Backend

	mu      sync.Mutex
	failSet map[string]bool
	writes  map[string]int
}

func newFlakyBackend(failing ...string) *flakyBackend {
	f := &flakyBackend{
		Backend: storage.NewMemoryBackend(),
		failSet: map[string]bool{},
		writes:  map[string]int{},
	}
	for _, k := range failing {
		f.failSet[k] = true
	}
	return f
}

func (f *flakyBackend) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	fail := f.failSet[key]
	if !fail {
		f.writes[key]++
	}
	f.mu.Unlock()

	if fail {
		return errWriteFailed
	}
	return f.Backend.Set(ctx, key, value)
}

func (f *flakyBackend) setFailing(key string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSet[key] = fail
}

func (f *flakyBackend) writeCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes[key]
}

func newTestStore(t *testing.T, b storage.Backend, opts ...Option) *Store {
	t.Helper()
	base := []Option{
		WithDismissAfter(0),
		WithRefreshDelay(10 * time.Millisecond),
		WithSimulator(abtest.NewSimulatorWithSource(rand.NewPCG(1, 1))),
		WithRandSource(rand.NewPCG(2, 2)),
	}
	s := New(context.Background(), b, append(base, opts...)...)
	t.Cleanup(s.Close)
	return s
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestNew_HydratesSeedsOnFreshBackend(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend())
	st := s.Snapshot()

	if st.CurrentView != model.ViewDashboard {
		t.Errorf("Expected Dashboard view, got %s", st.CurrentView)
	}
	if !reflect.DeepEqual(st.Posts, model.SeedPosts()) {
		t.Errorf("Expected seed posts, got %+v", st.Posts)
	}
	if !reflect.DeepEqual(st.BrandProfile, model.DefaultBrandProfile()) {
		t.Errorf("Expected default profile, got %+v", st.BrandProfile)
	}
	if len(st.FollowerData) != 7 || len(st.EngagementData) != 4 {
		t.Errorf("Unexpected seed series lengths %d/%d", len(st.FollowerData), len(st.EngagementData))
	}
}

func TestNew_EvictsCorruptedPosts(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend()
	b.Set(ctx, storage.KeyScheduledPosts, `[{"id":1,"day":"Monday","scheduledTime":"9:00 AM","isABTest":false,"content":"x"}]`)

	s := newTestStore(t, b)

	if !reflect.DeepEqual(s.Posts(), model.SeedPosts()) {
		t.Error("Corrupted posts should fall back to seeds")
	}
	if _, ok, _ := b.Get(ctx, storage.KeyScheduledPosts); ok {
		t.Error("Corrupted key should be removed from the backend")
	}
}

func TestSaveBrandProfile_FailureKeepsState(t *testing.T) {
	ctx := context.Background()
	b := newFlakyBackend(storage.KeyBrandProfile)
	s := newTestStore(t, b)
	before := s.Snapshot()

	failures := testutil.ToFloat64(metrics.StoreActions.WithLabelValues("save_brand_profile", metrics.OutcomeFailure))

	err := s.SaveBrandProfile(ctx, model.BrandProfile{CompanyDescription: "Acme", BrandVoice: []string{"Bold"}})
	if !errors.Is(err, errWriteFailed) {
		t.Fatalf("Expected write error, got %v", err)
	}

	after := s.Snapshot()
	if !reflect.DeepEqual(after.BrandProfile, before.BrandProfile) {
		t.Errorf("Profile changed after failed write: %+v", after.BrandProfile)
	}
	if after.Notification == nil || after.Notification.Type != model.NotificationError || after.Notification.Message != MsgProfileFailed {
		t.Errorf("Expected failure notification, got %+v", after.Notification)
	}
	if got := testutil.ToFloat64(metrics.StoreActions.WithLabelValues("save_brand_profile", metrics.OutcomeFailure)); got != failures+1 {
		t.Errorf("Expected failure counter to grow by one, got %v -> %v", failures, got)
	}
}

func TestSaveBrandProfile_Success(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend()
	s := newTestStore(t, b)

	profile := model.BrandProfile{CompanyDescription: "Acme", BrandVoice: []string{"Bold"}, TwitterConnected: true}
	if err := s.SaveBrandProfile(ctx, profile); err != nil {
		t.Fatalf("SaveBrandProfile() error = %v", err)
	}

	st := s.Snapshot()
	if !reflect.DeepEqual(st.BrandProfile, profile) {
		t.Errorf("Profile = %+v, want %+v", st.BrandProfile, profile)
	}
	if st.Notification == nil || st.Notification.Message != MsgProfileSaved {
		t.Errorf("Expected success notification, got %+v", st.Notification)
	}
	if got := storage.LoadBrandProfile(ctx, b); !reflect.DeepEqual(got, profile) {
		t.Errorf("Persisted profile = %+v", got)
	}
}

func TestUpdateConnectionStatus_ChangesOnlyOneFlag(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemoryBackend())

	profile := model.BrandProfile{
		CompanyDescription: "Acme",
		TargetAudience:     "Developers",
		BrandVoice:         []string{"Witty", "Concise"},
		KnowledgeBase:      "Docs",
		LinkedInConnected:  true,
	}
	if err := s.SaveBrandProfile(ctx, profile); err != nil {
		t.Fatalf("SaveBrandProfile() error = %v", err)
	}

	if err := s.UpdateConnectionStatus(ctx, model.PlatformInstagram, true); err != nil {
		t.Fatalf("UpdateConnectionStatus() error = %v", err)
	}

	want := profile
	want.InstagramConnected = true
	if got := s.Snapshot().BrandProfile; !reflect.DeepEqual(got, want) {
		t.Errorf("Profile = %+v, want %+v", got, want)
	}
}

func TestAddPost(t *testing.T) {
	ctx := context.Background()
	post := model.ScheduledPost{
		ID: 99, Platform: model.PlatformTwitter, Day: model.Sunday, ScheduledTime: "8:00 PM",
		Body: model.SingleContent{Content: "Weekend thread"},
	}

	t.Run("Success appends and persists", func(t *testing.T) {
		b := storage.NewMemoryBackend()
		s := newTestStore(t, b)

		if err := s.AddPost(ctx, post); err != nil {
			t.Fatalf("AddPost() error = %v", err)
		}
		posts := s.Posts()
		if len(posts) != len(model.SeedPosts())+1 || !reflect.DeepEqual(posts[len(posts)-1], post) {
			t.Errorf("Post not appended: %+v", posts)
		}
		if n := s.Snapshot().Notification; n == nil || n.Message != MsgPostScheduled {
			t.Errorf("Expected scheduled notification, got %+v", n)
		}

		reloaded := newTestStore(t, b)
		if !reflect.DeepEqual(reloaded.Posts(), posts) {
			t.Error("Persisted posts differ from committed posts")
		}
	})

	t.Run("Write failure does not add", func(t *testing.T) {
		s := newTestStore(t, newFlakyBackend(storage.KeyScheduledPosts))

		err := s.AddPost(ctx, post)
		if !errors.Is(err, errWriteFailed) {
			t.Fatalf("Expected write error, got %v", err)
		}
		if !reflect.DeepEqual(s.Posts(), model.SeedPosts()) {
			t.Error("Posts changed after failed write")
		}
		if n := s.Snapshot().Notification; n == nil || n.Message != MsgPostFailed {
			t.Errorf("Expected failure notification, got %+v", n)
		}
	})
}

func TestUpdatePost_Targeting(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown id is a no-op", func(t *testing.T) {
		b := newFlakyBackend()
		s := newTestStore(t, b)
		before := s.Posts()

		ghost := model.ScheduledPost{ID: 12345, Platform: model.PlatformTwitter, Day: model.Monday, Body: model.SingleContent{Content: "x"}}
		if err := s.UpdatePost(ctx, ghost); err != nil {
			t.Fatalf("UpdatePost() error = %v", err)
		}
		if !reflect.DeepEqual(s.Posts(), before) {
			t.Error("Collection changed for unknown id")
		}
		if b.writeCount(storage.KeyScheduledPosts) != 0 {
			t.Error("No write expected for unknown id")
		}
	})

	t.Run("Matching id replaces only that element", func(t *testing.T) {
		s := newTestStore(t, storage.NewMemoryBackend())
		before := s.Posts()

		edited := before[2]
		edited.Body = model.SingleContent{Content: "Edited"}
		edited.ScheduledTime = "6:00 PM"
		if err := s.UpdatePost(ctx, edited); err != nil {
			t.Fatalf("UpdatePost() error = %v", err)
		}

		after := s.Posts()
		if len(after) != len(before) {
			t.Fatalf("Length changed: %d -> %d", len(before), len(after))
		}
		for i := range after {
			want := before[i]
			if i == 2 {
				want = edited
			}
			if !reflect.DeepEqual(after[i], want) {
				t.Errorf("Post %d = %+v, want %+v", i, after[i], want)
			}
		}
	})

	t.Run("Write failure keeps old element", func(t *testing.T) {
		s := newTestStore(t, newFlakyBackend(storage.KeyScheduledPosts))
		before := s.Posts()

		edited := before[0]
		edited.Body = model.SingleContent{Content: "Edited"}
		if err := s.UpdatePost(ctx, edited); !errors.Is(err, errWriteFailed) {
			t.Fatalf("Expected write error, got %v", err)
		}
		if !reflect.DeepEqual(s.Posts(), before) {
			t.Error("Posts changed after failed write")
		}
		if n := s.Snapshot().Notification; n == nil || n.Message != MsgPostUpdateFailed {
			t.Errorf("Expected update failure notification, got %+v", n)
		}
	})
}

func TestUpdatePost_ResolvedResultsAreFinal(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemoryBackend())

	first, err := s.ResolveABTest(ctx, 3)
	if err != nil {
		t.Fatalf("ResolveABTest() error = %v", err)
	}
	resolved, _ := first.ABTest()
	other := model.WinnerTie
	if resolved.Result.Winner == model.WinnerTie {
		other = model.WinnerA
	}

	tests := []struct {
		name string
		body model.PostBody
	}{
		{"Back to pending", model.ABTest{VariantA: resolved.VariantA, VariantB: resolved.VariantB}},
		{"Different winner", model.ABTest{
			VariantA: resolved.VariantA, VariantB: resolved.VariantB,
			Result: &model.ABResult{Winner: other, A: resolved.Result.A, B: resolved.Result.B},
		}},
		{"Different counters", model.ABTest{
			VariantA: resolved.VariantA, VariantB: resolved.VariantB,
			Result: &model.ABResult{Winner: resolved.Result.Winner, A: model.Performance{Likes: 1}, B: resolved.Result.B},
		}},
		{"Converted to single post", model.SingleContent{Content: "plain"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edited := first
			edited.Body = tt.body
			err := s.UpdatePost(ctx, edited)
			if !errors.Is(err, ErrResultsFinal) || !IsUserError(err) {
				t.Fatalf("Expected ErrResultsFinal, got %v", err)
			}
		})
	}

	again, err := s.ResolveABTest(ctx, 3)
	if err != nil {
		t.Fatalf("ResolveABTest() error = %v", err)
	}
	if !reflect.DeepEqual(first, again) {
		t.Errorf("Results changed after rejected edits: %+v vs %+v", first, again)
	}

	// Editing around the results is still allowed.
	moved := first.Clone()
	moved.Day = model.Saturday
	if err := s.UpdatePost(ctx, moved); err != nil {
		t.Errorf("UpdatePost() keeping results error = %v", err)
	}
}

func TestPostWrites_RejectRecordsTheLoaderWouldEvict(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend()
	s := newTestStore(t, b)

	created, err := s.CreatePost(ctx, model.PostDraft{Day: model.Monday, Platform: model.PlatformLinkedIn, Content: "Keep me"})
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	before := s.Posts()

	pending := before[3]
	test, _ := pending.ABTest()
	test.Result = &model.ABResult{
		Winner: model.WinnerA,
		A:      model.Performance{Likes: -1},
		B:      model.Performance{Likes: 5},
	}
	pending.Body = test

	if err := s.UpdatePost(ctx, pending); !errors.Is(err, storage.ErrInvalidRecord) || !IsUserError(err) {
		t.Fatalf("UpdatePost() error = %v, want ErrInvalidRecord", err)
	}

	bad := pending
	bad.ID = created.ID + 1
	if err := s.AddPost(ctx, bad); !errors.Is(err, storage.ErrInvalidRecord) {
		t.Fatalf("AddPost() error = %v, want ErrInvalidRecord", err)
	}

	if !reflect.DeepEqual(s.Posts(), before) {
		t.Error("Rejected writes changed the collection")
	}

	reloaded := newTestStore(t, b)
	if !reflect.DeepEqual(reloaded.Posts(), before) {
		t.Errorf("Reload lost posts: got %d, want %d", len(reloaded.Posts()), len(before))
	}
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	fixed := time.UnixMilli(1_700_000_000_000)
	s := newTestStore(t, storage.NewMemoryBackend(), WithClock(func() time.Time { return fixed }))

	first, err := s.CreatePost(ctx, model.PostDraft{Day: model.Monday, Platform: model.PlatformLinkedIn, Content: "One"})
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	second, err := s.CreatePost(ctx, model.PostDraft{
		Day: model.Tuesday, Platform: model.PlatformInstagram, IsABTest: true,
		VariantA: &model.Variant{Content: "a"}, VariantB: &model.Variant{Content: "b"},
	})
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	if first.ID != fixed.UnixMilli() {
		t.Errorf("Expected id from clock, got %d", first.ID)
	}
	if second.ID != first.ID+1 {
		t.Errorf("Ids must be strictly increasing: %d then %d", first.ID, second.ID)
	}
	if test, ok := second.ABTest(); !ok || !test.Pending() {
		t.Errorf("A/B post should start pending: %+v", second)
	}

	_, err = s.CreatePost(ctx, model.PostDraft{Day: model.Monday, Platform: "Myspace"})
	if !errors.Is(err, model.ErrInvalidPlatform) || !IsUserError(err) {
		t.Errorf("Expected invalid platform user error, got %v", err)
	}
	if len(s.Posts()) != len(model.SeedPosts())+2 {
		t.Errorf("Unexpected post count %d", len(s.Posts()))
	}
}

func TestCreatePost_ClockBehindExistingIDs(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend(), WithClock(func() time.Time { return time.UnixMilli(1) }))

	post, err := s.CreatePost(context.Background(), model.PostDraft{Day: model.Friday, Platform: model.PlatformTwitter, Content: "x"})
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	for _, p := range model.SeedPosts() {
		if post.ID <= p.ID {
			t.Errorf("New id %d collides with seed id %d", post.ID, p.ID)
		}
	}
}

func TestResolveABTest(t *testing.T) {
	ctx := context.Background()
	const pendingID = 3

	t.Run("Resolves once and persists", func(t *testing.T) {
		b := storage.NewMemoryBackend()
		s := newTestStore(t, b)

		first, err := s.ResolveABTest(ctx, pendingID)
		if err != nil {
			t.Fatalf("ResolveABTest() error = %v", err)
		}
		test, ok := first.ABTest()
		if !ok || test.Pending() || !test.Result.Winner.Resolved() {
			t.Fatalf("Expected resolved test, got %+v", first)
		}
		if n := s.Snapshot().Notification; n == nil || n.Message != MsgABResultsReady {
			t.Errorf("Expected results notification, got %+v", n)
		}

		second, err := s.ResolveABTest(ctx, pendingID)
		if err != nil {
			t.Fatalf("ResolveABTest() error = %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Second resolution regenerated results: %+v vs %+v", first, second)
		}

		reloaded := newTestStore(t, b)
		again, err := reloaded.ResolveABTest(ctx, pendingID)
		if err != nil {
			t.Fatalf("ResolveABTest() after reload error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Error("Persisted result differs from the first resolution")
		}
	})

	t.Run("Write failure leaves test pending", func(t *testing.T) {
		b := newFlakyBackend(storage.KeyScheduledPosts)
		s := newTestStore(t, b)

		if _, err := s.ResolveABTest(ctx, pendingID); !errors.Is(err, errWriteFailed) {
			t.Fatalf("Expected write error, got %v", err)
		}
		for _, p := range s.Posts() {
			if p.ID == pendingID {
				if test, _ := p.ABTest(); !test.Pending() {
					t.Error("Unpersisted result must not be committed")
				}
			}
		}

		b.setFailing(storage.KeyScheduledPosts, false)
		if _, err := s.ResolveABTest(ctx, pendingID); err != nil {
			t.Errorf("Retry after recovery failed: %v", err)
		}
	})

	t.Run("Unknown id", func(t *testing.T) {
		s := newTestStore(t, storage.NewMemoryBackend())
		if _, err := s.ResolveABTest(ctx, 404); !errors.Is(err, ErrPostNotFound) {
			t.Errorf("Expected ErrPostNotFound, got %v", err)
		}
	})

	t.Run("Single post", func(t *testing.T) {
		s := newTestStore(t, storage.NewMemoryBackend())
		if _, err := s.ResolveABTest(ctx, 1); !errors.Is(err, abtest.ErrNotABTest) {
			t.Errorf("Expected ErrNotABTest, got %v", err)
		}
	})

	t.Run("Seeded resolved test is returned unchanged", func(t *testing.T) {
		s := newTestStore(t, storage.NewMemoryBackend())
		got, err := s.ResolveABTest(ctx, 4)
		if err != nil {
			t.Fatalf("ResolveABTest() error = %v", err)
		}
		if !reflect.DeepEqual(got, model.SeedPosts()[1]) {
			t.Errorf("Resolved seed post changed: %+v", got)
		}
	})
}

func TestSchedulePostScenario(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend())
	draft := model.PostDraft{Day: model.Monday, Platform: model.PlatformLinkedIn, Content: "Hello"}

	s.SchedulePost(draft)

	st := s.Snapshot()
	if st.CurrentView != model.ViewScheduler {
		t.Errorf("Expected Scheduler view, got %s", st.CurrentView)
	}
	if st.PostToSchedule == nil || !reflect.DeepEqual(*st.PostToSchedule, draft) {
		t.Errorf("Handoff slot = %+v, want %+v", st.PostToSchedule, draft)
	}

	s.ClearPostToSchedule()

	st = s.Snapshot()
	if st.PostToSchedule != nil {
		t.Errorf("Handoff slot should be empty, got %+v", st.PostToSchedule)
	}
	if st.CurrentView != model.ViewScheduler {
		t.Errorf("Clearing the slot must not change the view, got %s", st.CurrentView)
	}
}

func TestUpdateAnalyticsData_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	b := newFlakyBackend(storage.KeyEngagementData)
	s := newTestStore(t, b)
	before := s.Snapshot()

	data := model.AnalyticsData{
		FollowerData:   []model.FollowerPoint{{Name: "Mon", LinkedIn: 1, Instagram: 2}},
		EngagementData: []model.EngagementPoint{{Name: "Week 1", Rate: 9.9}},
	}
	if err := s.UpdateAnalyticsData(ctx, data); !errors.Is(err, errWriteFailed) {
		t.Fatalf("Expected write error, got %v", err)
	}

	after := s.Snapshot()
	if !reflect.DeepEqual(after.FollowerData, before.FollowerData) || !reflect.DeepEqual(after.EngagementData, before.EngagementData) {
		t.Error("Series changed after failed write")
	}
	if _, ok, _ := b.Get(ctx, storage.KeyFollowerData); ok {
		t.Error("Follower series written by the failed update should be rolled back")
	}
	if after.Notification == nil || after.Notification.Message != MsgAnalyticsFailed {
		t.Errorf("Expected analytics failure notification, got %+v", after.Notification)
	}

	b.setFailing(storage.KeyEngagementData, false)
	if err := s.UpdateAnalyticsData(ctx, data); err != nil {
		t.Fatalf("UpdateAnalyticsData() error = %v", err)
	}
	after = s.Snapshot()
	if !reflect.DeepEqual(after.FollowerData, data.FollowerData) || !reflect.DeepEqual(after.EngagementData, data.EngagementData) {
		t.Errorf("Series not committed: %+v", after)
	}
}

func TestRefreshAnalytics(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemoryBackend())
	before := s.Snapshot()

	if err := s.RefreshAnalytics(ctx); err != nil {
		t.Fatalf("RefreshAnalytics() error = %v", err)
	}

	after := s.Snapshot()
	if after.AnalyticsRefreshing {
		t.Error("Refreshing flag should be cleared")
	}
	if after.Notification == nil || after.Notification.Message != MsgAnalyticsRefresh {
		t.Errorf("Expected refresh notification, got %+v", after.Notification)
	}
	if len(after.FollowerData) != len(before.FollowerData) || len(after.EngagementData) != len(before.EngagementData) {
		t.Fatal("Refresh must not change series length")
	}
	for i, p := range after.FollowerData {
		old := before.FollowerData[i]
		if p.Name != old.Name {
			t.Errorf("Point %d renamed %s -> %s", i, old.Name, p.Name)
		}
		if d := p.LinkedIn - old.LinkedIn; d < -followerJitter || d > followerJitter || p.LinkedIn < 0 {
			t.Errorf("LinkedIn moved out of range: %d -> %d", old.LinkedIn, p.LinkedIn)
		}
	}
	for i, p := range after.EngagementData {
		if p.Rate < minRate {
			t.Errorf("Rate %d below floor: %v", i, p.Rate)
		}
	}
}

func TestRefreshAnalytics_SingleFlight(t *testing.T) {
	ctx := context.Background()
	b := newFlakyBackend()
	s := newTestStore(t, b, WithRefreshDelay(100*time.Millisecond))

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.RefreshAnalytics(ctx)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Caller %d error = %v", i, err)
		}
	}
	if n := b.writeCount(storage.KeyFollowerData); n != 1 {
		t.Errorf("Expected one refresh to be applied, got %d writes", n)
	}
}

func TestRefreshAnalytics_CancelledByClose(t *testing.T) {
	s := New(context.Background(), storage.NewMemoryBackend(), WithRefreshDelay(time.Hour), WithDismissAfter(0))
	before := s.Snapshot()

	done := make(chan error, 1)
	go func() { done <- s.RefreshAnalytics(context.Background()) }()

	if !waitFor(t, time.Second, func() bool { return s.Snapshot().AnalyticsRefreshing }) {
		t.Fatal("Refresh never started")
	}
	s.Close()

	select {
	case err := <-done:
		if !errors.Is(err, ErrRefreshCancelled) {
			t.Errorf("Expected ErrRefreshCancelled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Refresh did not stop on Close")
	}

	after := s.Snapshot()
	if after.AnalyticsRefreshing || !reflect.DeepEqual(after.FollowerData, before.FollowerData) {
		t.Error("Cancelled refresh must not change analytics")
	}
	if err := s.RefreshAnalytics(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed after Close, got %v", err)
	}
}

func TestRefreshAnalytics_CallerContext(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend(), WithRefreshDelay(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := s.RefreshAnalytics(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline error, got %v", err)
	}
}

func TestNotification_AutoDismiss(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend(), WithDismissAfter(20*time.Millisecond))

	s.ShowNotification(model.Success("hi"))
	if s.Snapshot().Notification == nil {
		t.Fatal("Notification should be visible")
	}
	if !waitFor(t, time.Second, func() bool { return s.Snapshot().Notification == nil }) {
		t.Error("Notification was not dismissed")
	}
}

func TestNotification_NewOneRestartsTimer(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend(), WithDismissAfter(150*time.Millisecond))

	s.ShowNotification(model.Success("first"))
	time.Sleep(100 * time.Millisecond)
	s.ShowNotification(model.Failure("second"))
	time.Sleep(100 * time.Millisecond)

	n := s.Snapshot().Notification
	if n == nil || n.Message != "second" {
		t.Fatalf("Second notification cleared by the first timer: %+v", n)
	}
	if !waitFor(t, time.Second, func() bool { return s.Snapshot().Notification == nil }) {
		t.Error("Second notification was not dismissed")
	}
}

func TestNotification_Clear(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend(), WithDismissAfter(time.Hour))

	s.ShowNotification(model.Success("hi"))
	s.ClearNotification()
	if s.Snapshot().Notification != nil {
		t.Error("Notification should be cleared")
	}
}

func TestOnboardingFlow(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend()
	s := newTestStore(t, b)

	s.LaunchApp(ctx)
	st := s.Snapshot()
	if !st.IsAppLaunched || !st.ShowOnboarding {
		t.Fatalf("Fresh profile should launch into onboarding: %+v", st)
	}

	s.CompleteOnboarding(ctx)
	if s.Snapshot().ShowOnboarding {
		t.Error("Onboarding should be hidden after completion")
	}

	next := newTestStore(t, b)
	next.LaunchApp(ctx)
	if next.Snapshot().ShowOnboarding {
		t.Error("Completed onboarding should not reappear")
	}

	next.StartOnboarding()
	if !next.Snapshot().ShowOnboarding {
		t.Error("StartOnboarding should show onboarding")
	}
}

func TestCompleteOnboarding_WriteFailureStillHides(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFlakyBackend(storage.KeyOnboarding))

	s.StartOnboarding()
	s.CompleteOnboarding(ctx)
	if s.Snapshot().ShowOnboarding {
		t.Error("Onboarding should be hidden even when the flag cannot be saved")
	}
}

func TestViewAndSidebar(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend(), WithSidebarOpen(false))

	if s.Snapshot().IsSidebarOpen {
		t.Error("Sidebar option ignored")
	}
	s.SetSidebarOpen(true)
	s.SetCurrentView(model.ViewSettings)

	st := s.Snapshot()
	if !st.IsSidebarOpen || st.CurrentView != model.ViewSettings {
		t.Errorf("Unexpected state %+v", st)
	}
}

func TestSnapshot_IsIsolated(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend())

	st := s.Snapshot()
	st.Posts[0].Body = model.SingleContent{Content: "mutated"}
	st.BrandProfile.BrandVoice = append(st.BrandProfile.BrandVoice, "Loud")
	st.FollowerData[0].LinkedIn = -1

	fresh := s.Snapshot()
	if fresh.Posts[0].Content() == "mutated" || len(fresh.BrandProfile.BrandVoice) != 0 || fresh.FollowerData[0].LinkedIn == -1 {
		t.Error("Snapshot shares memory with the store")
	}
}

func TestStore_RedisBackedPersistence(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	b := storage.NewRedisBackend(client, "dash:", time.Second)

	s := newTestStore(t, b)
	if err := s.UpdateConnectionStatus(ctx, model.PlatformLinkedIn, true); err != nil {
		t.Fatalf("UpdateConnectionStatus() error = %v", err)
	}
	if _, err := s.ResolveABTest(ctx, 3); err != nil {
		t.Fatalf("ResolveABTest() error = %v", err)
	}

	if !mr.Exists("dash:" + storage.KeyBrandProfile) {
		t.Error("Profile not stored under the prefixed key")
	}

	reloaded := newTestStore(t, b)
	st := reloaded.Snapshot()
	if !st.BrandProfile.LinkedInConnected {
		t.Error("Connection flag lost across stores")
	}
	if !reflect.DeepEqual(st.Posts, s.Posts()) {
		t.Error("Resolved post lost across stores")
	}
}
