package store

import (
	"math/rand/v2"
	"time"

	"social-dashboard/abtest"
)

// Option customizes a Store at construction.
type Option func(*Store)

// WithDismissAfter sets how long a notification stays visible. Zero disables auto-dismiss.
func WithDismissAfter(d time.Duration) Option {
	return func(s *Store) { s.dismissAfter = d }
}

// WithRefreshDelay sets the simulated latency of an analytics refresh.
func WithRefreshDelay(d time.Duration) Option {
	return func(s *Store) { s.refreshDelay = d }
}

func WithSimulator(sim *abtest.Simulator) Option {
	return func(s *Store) { s.sim = sim }
}

// WithClock replaces the clock used to derive post ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRandSource seeds the analytics perturbation.
func WithRandSource(src rand.Source) Option {
	return func(s *Store) { s.rng = rand.New(src) }
}

// WithSidebarOpen sets the initial sidebar state.
func WithSidebarOpen(open bool) Option {
	return func(s *Store) { s.state.IsSidebarOpen = open }
}
