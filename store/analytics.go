package store

import (
	"context"
	"math"
	"time"

	"social-dashboard/model"

	"github.com/rs/zerolog/log"
)

const (
	followerJitter = 100
	rateJitter     = 0.5
	minRate        = 0.5
)

// RefreshAnalytics simulates fetching fresh analytics: after the refresh delay the
// current series are nudged and saved. Only one refresh runs at a time; a caller that
// arrives while one is in flight waits for it and receives its result instead of
// starting another. Cancelling ctx stops the wait, not the shared refresh; Close does.
func (s *Store) RefreshAnalytics(ctx context.Context) error {
	ch := s.refresh.DoChan("analytics", func() (interface{}, error) {
		return nil, s.runRefresh()
	})

	select {
	case res := <-ch:
		if res.Shared {
			log.Debug().Msg("Joined in-flight analytics refresh")
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) runRefresh() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.state.AnalyticsRefreshing = true
	s.mu.Unlock()

	log.Info().Dur("delay", s.refreshDelay).Msg("Refreshing analytics data")

	timer := time.NewTimer(s.refreshDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-s.ctx.Done():
		s.mu.Lock()
		s.state.AnalyticsRefreshing = false
		s.mu.Unlock()
		record("refresh_analytics", ErrRefreshCancelled)
		return ErrRefreshCancelled
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AnalyticsRefreshing = false

	data := s.perturbLocked()
	if err := s.updateAnalyticsLocked(s.ctx, data); err != nil {
		record("refresh_analytics", err)
		return err
	}
	s.notifyLocked(model.Success(MsgAnalyticsRefresh))
	record("refresh_analytics", nil)
	return nil
}

// perturbLocked nudges every existing point; series length and names never change.
func (s *Store) perturbLocked() model.AnalyticsData {
	followers := make([]model.FollowerPoint, len(s.state.FollowerData))
	for i, p := range s.state.FollowerData {
		p.LinkedIn = max(0, p.LinkedIn+s.followerDelta())
		p.Instagram = max(0, p.Instagram+s.followerDelta())
		followers[i] = p
	}

	engagement := make([]model.EngagementPoint, len(s.state.EngagementData))
	for i, p := range s.state.EngagementData {
		p.Rate = math.Max(minRate, p.Rate+s.rng.Float64()*2*rateJitter-rateJitter)
		engagement[i] = p
	}

	return model.AnalyticsData{FollowerData: followers, EngagementData: engagement}
}

// followerDelta draws from [-100, 100).
func (s *Store) followerDelta() int {
	return s.rng.IntN(2*followerJitter) - followerJitter
}
