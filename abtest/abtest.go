// Package abtest decides the outcome of A/B-tested posts. A test is resolved once, the
// first time its results are requested, from synthetic engagement numbers.
package abtest

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"social-dashboard/model"
)

var ErrNotABTest = errors.New("post is not an A/B test")

const (
	// winnerMultiplier scales the winning variant's metrics.
	winnerMultiplier = 1.5

	oddsA = 0.45
	oddsB = 0.45 // remainder is a tie
)

type baseRange struct {
	likes, comments, shares float64
}

// Instagram skews toward likes, LinkedIn and Twitter toward shares.
var baseRanges = map[model.Platform]baseRange{
	model.PlatformInstagram: {likes: 150, comments: 20, shares: 10},
	model.PlatformLinkedIn:  {likes: 50, comments: 15, shares: 25},
	model.PlatformTwitter:   {likes: 50, comments: 15, shares: 25},
}

var jitter = baseRange{likes: 50, comments: 10, shares: 5}

// Simulator draws synthetic A/B results. It is safe for concurrent use.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator returns a simulator seeded from the clock.
func NewSimulator() *Simulator {
	now := uint64(time.Now().UnixNano())
	return NewSimulatorWithSource(rand.NewPCG(now, now>>1|1))
}

// NewSimulatorWithSource returns a simulator drawing from src, for reproducible runs.
func NewSimulatorWithSource(src rand.Source) *Simulator {
	return &Simulator{rng: rand.New(src)}
}

// Generate draws a winner and one performance record per variant for platform.
func (s *Simulator) Generate(platform model.Platform) model.ABResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var winner model.Winner
	switch draw := s.rng.Float64(); {
	case draw < oddsA:
		winner = model.WinnerA
	case draw < oddsA+oddsB:
		winner = model.WinnerB
	default:
		winner = model.WinnerTie
	}

	base, ok := baseRanges[platform]
	if !ok {
		base = baseRanges[model.PlatformLinkedIn]
	}

	return model.ABResult{
		Winner: winner,
		A:      s.performance(base, winner == model.WinnerA),
		B:      s.performance(base, winner == model.WinnerB),
	}
}

func (s *Simulator) performance(base baseRange, isWinner bool) model.Performance {
	m := 1.0
	if isWinner {
		m = winnerMultiplier
	}
	return model.Performance{
		Likes:    int((base.likes + s.rng.Float64()*jitter.likes) * m),
		Comments: int((base.comments + s.rng.Float64()*jitter.comments) * m),
		Shares:   int((base.shares + s.rng.Float64()*jitter.shares) * m),
	}
}

// Resolve returns post with results attached and true when the test was pending.
// A resolved test is returned unchanged with false; results are never regenerated.
func (s *Simulator) Resolve(post model.ScheduledPost) (model.ScheduledPost, bool, error) {
	test, ok := post.ABTest()
	if !ok {
		return post, false, ErrNotABTest
	}
	if !test.Pending() {
		return post.Clone(), false, nil
	}

	result := s.Generate(post.Platform)
	test.Result = &result

	resolved := post
	resolved.Body = test
	return resolved, true, nil
}
