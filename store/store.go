// Package store holds the dashboard's application state. A Store is hydrated from a
// storage backend when it is built; every action that changes durable data writes to
// the backend first and commits in memory only when the write succeeded.
package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"social-dashboard/abtest"
	"social-dashboard/metrics"
	"social-dashboard/model"
	"social-dashboard/storage"
	"social-dashboard/validator"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultDismissAfter = 2500 * time.Millisecond
	DefaultRefreshDelay = time.Second
)

// Notification messages.
const (
	MsgProfileSaved     = "Brand profile saved!"
	MsgProfileFailed    = "Failed to save settings."
	MsgPostScheduled    = "Post scheduled successfully!"
	MsgPostFailed       = "Failed to schedule post."
	MsgPostUpdateFailed = "Failed to update post data."
	MsgAnalyticsFailed  = "Failed to refresh analytics."
	MsgAnalyticsRefresh = "Analytics data has been refreshed!"
	MsgABResultsReady   = "A/B test results are in!"
)

// State is a point-in-time view of the dashboard.
type State struct {
	CurrentView         model.View              `json:"currentView"`
	IsAppLaunched       bool                    `json:"isAppLaunched"`
	IsSidebarOpen       bool                    `json:"isSidebarOpen"`
	ShowOnboarding      bool                    `json:"showOnboarding"`
	BrandProfile        model.BrandProfile      `json:"brandProfile"`
	Posts               []model.ScheduledPost   `json:"posts"`
	FollowerData        []model.FollowerPoint   `json:"followerData"`
	EngagementData      []model.EngagementPoint `json:"engagementData"`
	PostToSchedule      *model.PostDraft        `json:"postToSchedule"`
	Notification        *model.Notification     `json:"notification"`
	AnalyticsRefreshing bool                    `json:"analyticsRefreshing"`
}

func (st State) clone() State {
	out := st
	out.BrandProfile = st.BrandProfile.Clone()
	out.Posts = model.ClonePosts(st.Posts)
	out.FollowerData = append([]model.FollowerPoint{}, st.FollowerData...)
	out.EngagementData = append([]model.EngagementPoint{}, st.EngagementData...)
	out.PostToSchedule = st.PostToSchedule.Clone()
	if st.Notification != nil {
		n := *st.Notification
		out.Notification = &n
	}
	return out
}

// Store is the single writer of dashboard state. All methods are safe for concurrent
// use; actions are applied one at a time.
type Store struct {
	mu      sync.Mutex
	backend storage.Backend
	state   State

	sim          *abtest.Simulator
	rng          *rand.Rand
	now          func() time.Time
	dismissAfter time.Duration
	refreshDelay time.Duration

	lastID       int64
	dismissGen   uint64
	dismissTimer *time.Timer

	refresh singleflight.Group
	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
}

// New builds a store hydrated from backend. Records that are missing or fail
// validation are replaced by the built-in seed data. ctx bounds the hydration reads.
func New(ctx context.Context, backend storage.Backend, opts ...Option) *Store {
	s := &Store{
		backend:      backend,
		now:          time.Now,
		dismissAfter: DefaultDismissAfter,
		refreshDelay: DefaultRefreshDelay,
		state: State{
			CurrentView:   model.ViewDashboard,
			IsSidebarOpen: true,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sim == nil {
		s.sim = abtest.NewSimulator()
	}
	if s.rng == nil {
		seed := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.state.BrandProfile = storage.LoadBrandProfile(ctx, backend)
	s.state.Posts = storage.Load(ctx, backend, storage.KeyScheduledPosts, model.SeedPosts(), validator.Posts)
	s.state.FollowerData = storage.Load(ctx, backend, storage.KeyFollowerData, model.SeedFollowerData(), validator.FollowerSeries)
	s.state.EngagementData = storage.Load(ctx, backend, storage.KeyEngagementData, model.SeedEngagementData(), validator.EngagementSeries)

	for _, p := range s.state.Posts {
		if p.ID > s.lastID {
			s.lastID = p.ID
		}
	}

	log.Info().
		Int("posts", len(s.state.Posts)).
		Bool("profile_configured", s.state.BrandProfile.IsConfigured()).
		Msg("State store hydrated")

	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Posts returns a copy of the scheduled posts.
func (s *Store) Posts() []model.ScheduledPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.ClonePosts(s.state.Posts)
}

func (s *Store) SetCurrentView(view model.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentView = view
	record("set_view", nil)
}

func (s *Store) SetSidebarOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsSidebarOpen = open
	record("set_sidebar", nil)
}

// LaunchApp leaves the landing page. Onboarding is shown unless the backend holds the
// completion flag; an unreadable flag is treated as absent.
func (s *Store) LaunchApp(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.IsAppLaunched = true

	done, err := storage.OnboardingCompleted(ctx, s.backend)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read onboarding status")
	}
	if !done {
		s.state.ShowOnboarding = true
	}
	record("launch", nil)
}

func (s *Store) StartOnboarding() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ShowOnboarding = true
	record("start_onboarding", nil)
}

// CompleteOnboarding hides onboarding and persists the completion flag. A failed write
// is logged; onboarding is hidden for this session either way.
func (s *Store) CompleteOnboarding(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := storage.MarkOnboardingCompleted(ctx, s.backend)
	if err != nil {
		log.Error().Err(err).Msg("Could not save onboarding status")
	}
	s.state.ShowOnboarding = false
	record("complete_onboarding", err)
}

// SaveBrandProfile persists profile and then replaces the in-memory profile.
func (s *Store) SaveBrandProfile(ctx context.Context, profile model.BrandProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.saveBrandProfileLocked(ctx, profile)
	record("save_brand_profile", err)
	return err
}

// UpdateConnectionStatus flips one platform connection flag through SaveBrandProfile.
func (s *Store) UpdateConnectionStatus(ctx context.Context, platform model.Platform, connected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.saveBrandProfileLocked(ctx, s.state.BrandProfile.WithConnection(platform, connected))
	record("update_connection", err)
	return err
}

func (s *Store) saveBrandProfileLocked(ctx context.Context, profile model.BrandProfile) error {
	profile = profile.Clone()
	if err := storage.Save(ctx, s.backend, storage.KeyBrandProfile, profile); err != nil {
		log.Error().Err(err).Msg("Could not save brand profile")
		s.notifyLocked(model.Failure(MsgProfileFailed))
		return err
	}
	s.state.BrandProfile = profile
	s.notifyLocked(model.Success(MsgProfileSaved))
	return nil
}

// AddPost appends post, persists the whole collection, and commits on success.
func (s *Store) AddPost(ctx context.Context, post model.ScheduledPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.addPostLocked(ctx, post)
	record("add_post", err)
	return err
}

// CreatePost completes draft with a fresh id and adds it. A/B posts start pending.
func (s *Store) CreatePost(ctx context.Context, draft model.PostDraft) (model.ScheduledPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, err := draft.ToPost(s.nextIDLocked())
	if err != nil {
		record("create_post", err)
		return model.ScheduledPost{}, err
	}
	if err := s.addPostLocked(ctx, post); err != nil {
		record("create_post", err)
		return model.ScheduledPost{}, err
	}
	record("create_post", nil)
	return post.Clone(), nil
}

func (s *Store) addPostLocked(ctx context.Context, post model.ScheduledPost) error {
	updated := append(model.ClonePosts(s.state.Posts), post.Clone())

	if err := storage.SaveValidated(ctx, s.backend, storage.KeyScheduledPosts, updated, validator.Posts); err != nil {
		if errors.Is(err, storage.ErrInvalidRecord) {
			log.Warn().Err(err).Int64("post_id", post.ID).Msg("Rejected invalid post")
			return err
		}
		log.Error().Err(err).Int64("post_id", post.ID).Msg("Could not save posts")
		s.notifyLocked(model.Failure(MsgPostFailed))
		return err
	}
	s.state.Posts = updated
	if post.ID > s.lastID {
		s.lastID = post.ID
	}
	s.notifyLocked(model.Success(MsgPostScheduled))
	return nil
}

// nextIDLocked derives an id from the clock, bumped past the last one handed out.
func (s *Store) nextIDLocked() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// UpdatePost replaces the post with the same id. An unknown id leaves the collection
// untouched and is not an error.
func (s *Store) UpdatePost(ctx context.Context, post model.ScheduledPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.updatePostLocked(ctx, post)
	record("update_post", err)
	return err
}

func (s *Store) updatePostLocked(ctx context.Context, post model.ScheduledPost) (bool, error) {
	idx := s.indexLocked(post.ID)
	if idx < 0 {
		return false, nil
	}

	if err := keepsResults(s.state.Posts[idx], post); err != nil {
		return false, err
	}

	updated := model.ClonePosts(s.state.Posts)
	updated[idx] = post.Clone()

	if err := storage.SaveValidated(ctx, s.backend, storage.KeyScheduledPosts, updated, validator.Posts); err != nil {
		if errors.Is(err, storage.ErrInvalidRecord) {
			log.Warn().Err(err).Int64("post_id", post.ID).Msg("Rejected invalid post update")
			return false, err
		}
		log.Error().Err(err).Int64("post_id", post.ID).Msg("Could not update posts")
		s.notifyLocked(model.Failure(MsgPostUpdateFailed))
		return false, err
	}
	s.state.Posts = updated
	return true, nil
}

// keepsResults rejects an edit that would drop or rewrite the results of a resolved
// A/B test. Content and schedule may still change.
func keepsResults(current, next model.ScheduledPost) error {
	cur, ok := current.ABTest()
	if !ok || cur.Pending() {
		return nil
	}
	nt, ok := next.ABTest()
	if !ok || nt.Result == nil || *nt.Result != *cur.Result {
		return fmt.Errorf("post %d: %w", current.ID, ErrResultsFinal)
	}
	return nil
}

func (s *Store) indexLocked(id int64) int {
	for i, p := range s.state.Posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// ResolveABTest returns the results of an A/B test post. The first request for a pending
// test generates and persists the results; later requests return the stored ones.
func (s *Store) ResolveABTest(ctx context.Context, id int64) (model.ScheduledPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		record("resolve_ab_test", ErrPostNotFound)
		return model.ScheduledPost{}, fmt.Errorf("post %d: %w", id, ErrPostNotFound)
	}

	resolved, changed, err := s.sim.Resolve(s.state.Posts[idx])
	if err != nil {
		record("resolve_ab_test", err)
		return model.ScheduledPost{}, fmt.Errorf("post %d: %w", id, err)
	}
	if !changed {
		metrics.StoreActions.WithLabelValues("resolve_ab_test", metrics.OutcomeNoop).Inc()
		return resolved, nil
	}

	if _, err := s.updatePostLocked(ctx, resolved); err != nil {
		record("resolve_ab_test", err)
		return model.ScheduledPost{}, err
	}

	test, _ := resolved.ABTest()
	metrics.ABTestsResolved.WithLabelValues(string(resolved.Platform), string(test.Winner())).Inc()
	log.Info().
		Int64("post_id", id).
		Str("platform", string(resolved.Platform)).
		Str("winner", string(test.Winner())).
		Msg("A/B test resolved")

	s.notifyLocked(model.Success(MsgABResultsReady))
	record("resolve_ab_test", nil)
	return resolved.Clone(), nil
}

// UpdateAnalyticsData persists both series and commits them together.
func (s *Store) UpdateAnalyticsData(ctx context.Context, data model.AnalyticsData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.updateAnalyticsLocked(ctx, data)
	record("update_analytics", err)
	return err
}

func (s *Store) updateAnalyticsLocked(ctx context.Context, data model.AnalyticsData) error {
	data = data.Clone()
	err := storage.SaveAll(ctx, s.backend,
		storage.Entry{Key: storage.KeyFollowerData, Value: data.FollowerData},
		storage.Entry{Key: storage.KeyEngagementData, Value: data.EngagementData},
	)
	if err != nil {
		log.Error().Err(err).Msg("Could not save analytics data")
		s.notifyLocked(model.Failure(MsgAnalyticsFailed))
		return err
	}
	s.state.FollowerData = data.FollowerData
	s.state.EngagementData = data.EngagementData
	return nil
}

// SchedulePost hands draft to the scheduler and switches to it.
func (s *Store) SchedulePost(draft model.PostDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PostToSchedule = draft.Clone()
	s.state.CurrentView = model.ViewScheduler
	record("schedule_post", nil)
}

func (s *Store) ClearPostToSchedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PostToSchedule = nil
	record("clear_post_to_schedule", nil)
}

// ShowNotification replaces the active notification and restarts the dismiss timer.
func (s *Store) ShowNotification(n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLocked(n)
}

func (s *Store) ClearNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearNotificationLocked()
}

func (s *Store) notifyLocked(n model.Notification) {
	s.state.Notification = &n
	s.dismissGen++

	if s.dismissTimer != nil {
		s.dismissTimer.Stop()
		s.dismissTimer = nil
	}
	if s.dismissAfter <= 0 || s.closed {
		return
	}

	gen := s.dismissGen
	s.dismissTimer = time.AfterFunc(s.dismissAfter, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// A newer notification owns the slot now.
		if s.dismissGen == gen {
			s.state.Notification = nil
			s.dismissTimer = nil
		}
	})
}

func (s *Store) clearNotificationLocked() {
	s.state.Notification = nil
	s.dismissGen++
	if s.dismissTimer != nil {
		s.dismissTimer.Stop()
		s.dismissTimer = nil
	}
}

// Close stops the dismiss timer and cancels a running analytics refresh.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.dismissTimer != nil {
		s.dismissTimer.Stop()
		s.dismissTimer = nil
	}
	s.mu.Unlock()

	s.cancel()
	log.Info().Msg("State store closed")
}

func record(action string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	metrics.StoreActions.WithLabelValues(action, outcome).Inc()
}

// IsUserError reports whether err was caused by the caller's input rather than the backend.
func IsUserError(err error) bool {
	return errors.Is(err, model.ErrInvalidPlatform) ||
		errors.Is(err, model.ErrInvalidDay) ||
		errors.Is(err, model.ErrMissingVariants) ||
		errors.Is(err, model.ErrNegativeCount) ||
		errors.Is(err, storage.ErrInvalidRecord) ||
		errors.Is(err, ErrResultsFinal) ||
		errors.Is(err, abtest.ErrNotABTest)
}
