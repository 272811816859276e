package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMissingContent     = errors.New("single post requires content")
	ErrMissingVariants    = errors.New("A/B test requires both variants")
	ErrUnknownWinner      = errors.New("unknown A/B test winner")
	ErrMissingPerformance = errors.New("resolved A/B test requires performance for both variants")
	ErrNegativeCount      = errors.New("performance counters must not be negative")
	ErrInvalidPlatform    = errors.New("invalid platform")
	ErrInvalidDay         = errors.New("invalid day")
)

// Winner is the outcome designation of an A/B test. Pending is only a wire value;
// in memory a pending test is an ABTest with a nil Result.
type Winner string

const (
	WinnerA       Winner = "A"
	WinnerB       Winner = "B"
	WinnerTie     Winner = "Tie"
	WinnerPending Winner = "Pending"
)

// Resolved reports whether w is a final outcome.
func (w Winner) Resolved() bool {
	return w == WinnerA || w == WinnerB || w == WinnerTie
}

// Performance holds the engagement counters of one variant.
type Performance struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

// Valid reports whether every counter is non-negative.
func (p Performance) Valid() bool {
	return p.Likes >= 0 && p.Comments >= 0 && p.Shares >= 0
}

// Total is the combined engagement used to compare variants.
func (p Performance) Total() int {
	return p.Likes + p.Comments + p.Shares
}

// Variant is one of the two contents competing in an A/B test.
type Variant struct {
	Content string `json:"content"`
}

// ABResult is the terminal outcome of an A/B test. Both performance records are
// always present, so a resolved test without metrics cannot be represented.
type ABResult struct {
	Winner Winner
	A      Performance
	B      Performance
}

// PostBody is either SingleContent or ABTest.
type PostBody interface {
	isPostBody()
}

// SingleContent is the body of a regular post.
type SingleContent struct {
	Content string
}

// ABTest is the body of a post carrying two competing variants.
// Result is nil while the test is pending.
type ABTest struct {
	VariantA Variant
	VariantB Variant
	Result   *ABResult
}

func (SingleContent) isPostBody() {}
func (ABTest) isPostBody()        {}

// Pending reports whether the test has not been resolved yet.
func (t ABTest) Pending() bool {
	return t.Result == nil
}

// Winner returns the wire designation of the test outcome.
func (t ABTest) Winner() Winner {
	if t.Result == nil {
		return WinnerPending
	}
	return t.Result.Winner
}

// ScheduledPost is a post placed on the weekly calendar.
type ScheduledPost struct {
	ID            int64
	Platform      Platform
	Day           Weekday
	ScheduledTime string
	Body          PostBody
}

// IsABTest reports whether the post carries two variants.
func (p ScheduledPost) IsABTest() bool {
	_, ok := p.Body.(ABTest)
	return ok
}

// ABTest returns the A/B body of the post, if it has one.
func (p ScheduledPost) ABTest() (ABTest, bool) {
	t, ok := p.Body.(ABTest)
	return t, ok
}

// Content returns the text shown on the calendar card: the single content or variant A.
func (p ScheduledPost) Content() string {
	switch b := p.Body.(type) {
	case SingleContent:
		return b.Content
	case ABTest:
		return b.VariantA.Content
	}
	return ""
}

// Clone returns a deep copy of p.
func (p ScheduledPost) Clone() ScheduledPost {
	if t, ok := p.Body.(ABTest); ok && t.Result != nil {
		r := *t.Result
		t.Result = &r
		p.Body = t
	}
	return p
}

// ClonePosts deep-copies a post collection.
func ClonePosts(posts []ScheduledPost) []ScheduledPost {
	out := make([]ScheduledPost, len(posts))
	for i, p := range posts {
		out[i] = p.Clone()
	}
	return out
}

type variantWire struct {
	Content     string       `json:"content"`
	Performance *Performance `json:"performance,omitempty"`
}

type postWire struct {
	ID            int64        `json:"id"`
	Platform      Platform     `json:"platform"`
	ScheduledTime string       `json:"scheduledTime"`
	Day           Weekday      `json:"day"`
	IsABTest      bool         `json:"isABTest"`
	Content       *string      `json:"content,omitempty"`
	VariantA      *variantWire `json:"variantA,omitempty"`
	VariantB      *variantWire `json:"variantB,omitempty"`
	Winner        *Winner      `json:"winner,omitempty"`
}

// MarshalJSON flattens the post into the persisted record shape.
func (p ScheduledPost) MarshalJSON() ([]byte, error) {
	w := postWire{
		ID:            p.ID,
		Platform:      p.Platform,
		ScheduledTime: p.ScheduledTime,
		Day:           p.Day,
	}

	switch b := p.Body.(type) {
	case SingleContent:
		content := b.Content
		w.Content = &content
	case ABTest:
		w.IsABTest = true
		w.VariantA = &variantWire{Content: b.VariantA.Content}
		w.VariantB = &variantWire{Content: b.VariantB.Content}
		winner := b.Winner()
		w.Winner = &winner
		if b.Result != nil {
			a, bb := b.Result.A, b.Result.B
			w.VariantA.Performance = &a
			w.VariantB.Performance = &bb
		}
	default:
		return nil, fmt.Errorf("post %d: %w", p.ID, ErrMissingContent)
	}

	return json.Marshal(w)
}

// UnmarshalJSON rebuilds the tagged body from the persisted record shape.
// A null winner is read as pending.
func (p *ScheduledPost) UnmarshalJSON(data []byte) error {
	var w postWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	post := ScheduledPost{
		ID:            w.ID,
		Platform:      w.Platform,
		Day:           w.Day,
		ScheduledTime: w.ScheduledTime,
	}

	if !w.IsABTest {
		if w.Content == nil {
			return fmt.Errorf("post %d: %w", w.ID, ErrMissingContent)
		}
		post.Body = SingleContent{Content: *w.Content}
		*p = post
		return nil
	}

	if w.VariantA == nil || w.VariantB == nil {
		return fmt.Errorf("post %d: %w", w.ID, ErrMissingVariants)
	}
	test := ABTest{
		VariantA: Variant{Content: w.VariantA.Content},
		VariantB: Variant{Content: w.VariantB.Content},
	}

	if w.Winner != nil && *w.Winner != WinnerPending {
		if !w.Winner.Resolved() {
			return fmt.Errorf("post %d: %w: %q", w.ID, ErrUnknownWinner, *w.Winner)
		}
		if w.VariantA.Performance == nil || w.VariantB.Performance == nil {
			return fmt.Errorf("post %d: %w", w.ID, ErrMissingPerformance)
		}
		if !w.VariantA.Performance.Valid() || !w.VariantB.Performance.Valid() {
			return fmt.Errorf("post %d: %w", w.ID, ErrNegativeCount)
		}
		test.Result = &ABResult{
			Winner: *w.Winner,
			A:      *w.VariantA.Performance,
			B:      *w.VariantB.Performance,
		}
	}

	post.Body = test
	*p = post
	return nil
}

// PostDraft is a partially filled post used to pre-populate the scheduler form.
type PostDraft struct {
	Day           Weekday  `json:"day,omitempty"`
	Platform      Platform `json:"platform,omitempty"`
	ScheduledTime string   `json:"scheduledTime,omitempty"`
	IsABTest      bool     `json:"isABTest,omitempty"`
	Content       string   `json:"content,omitempty"`
	VariantA      *Variant `json:"variantA,omitempty"`
	VariantB      *Variant `json:"variantB,omitempty"`
}

// DefaultScheduledTime is used when a draft does not carry a time.
const DefaultScheduledTime = "10:00 AM"

// Clone returns a copy of d that shares no pointers.
func (d *PostDraft) Clone() *PostDraft {
	if d == nil {
		return nil
	}
	out := *d
	if d.VariantA != nil {
		a := *d.VariantA
		out.VariantA = &a
	}
	if d.VariantB != nil {
		b := *d.VariantB
		out.VariantB = &b
	}
	return &out
}

// ToPost completes the draft into a new post with the given id. A/B posts start pending.
func (d PostDraft) ToPost(id int64) (ScheduledPost, error) {
	if !d.Platform.Valid() {
		return ScheduledPost{}, fmt.Errorf("%w: %q", ErrInvalidPlatform, d.Platform)
	}
	if !d.Day.Valid() {
		return ScheduledPost{}, fmt.Errorf("%w: %q", ErrInvalidDay, d.Day)
	}

	post := ScheduledPost{
		ID:            id,
		Platform:      d.Platform,
		Day:           d.Day,
		ScheduledTime: d.ScheduledTime,
	}
	if post.ScheduledTime == "" {
		post.ScheduledTime = DefaultScheduledTime
	}

	if d.IsABTest {
		if d.VariantA == nil || d.VariantB == nil {
			return ScheduledPost{}, ErrMissingVariants
		}
		post.Body = ABTest{VariantA: *d.VariantA, VariantB: *d.VariantB}
	} else {
		post.Body = SingleContent{Content: d.Content}
	}
	return post, nil
}
