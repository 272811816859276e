// Package validator checks the shape of persisted records before they are trusted.
// Every function takes a value produced by json.Unmarshal into an interface{} and
// returns nil when the value is acceptable.
package validator

import (
	"fmt"
	"math"

	"social-dashboard/model"
)

// Func validates one decoded JSON value.
type Func func(v interface{}) error

// BrandProfile accepts any non-null object; missing fields are backfilled from defaults.
func BrandProfile(v interface{}) error {
	if _, ok := v.(map[string]interface{}); !ok {
		return ErrNotObject
	}
	return nil
}

// Flag accepts any value; presence alone carries the meaning.
func Flag(v interface{}) error {
	return nil
}

// Post validates one scheduled post record.
func Post(v interface{}) error {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return ErrNotObject
	}

	if !isNumber(obj["id"]) {
		return ErrInvalidID
	}
	platform, ok := obj["platform"].(string)
	if !ok || !model.Platform(platform).Valid() {
		return ErrInvalidPlatform
	}
	day, ok := obj["day"].(string)
	if !ok || !model.Weekday(day).Valid() {
		return ErrInvalidDay
	}
	if !isString(obj["scheduledTime"]) {
		return ErrInvalidTime
	}
	isABTest, ok := obj["isABTest"].(bool)
	if !ok {
		return ErrInvalidABFlag
	}

	if !isABTest {
		if !isString(obj["content"]) {
			return ErrInvalidContent
		}
		return nil
	}

	variantA, okA := variant(obj["variantA"])
	variantB, okB := variant(obj["variantB"])
	if !okA || !okB {
		return ErrInvalidVariant
	}

	raw, present := obj["winner"]
	if !present {
		return ErrInvalidWinner
	}
	if raw == nil {
		return nil
	}
	winner, ok := raw.(string)
	if !ok {
		return ErrInvalidWinner
	}
	switch model.Winner(winner) {
	case model.WinnerPending:
		return nil
	case model.WinnerA, model.WinnerB, model.WinnerTie:
		if err := performance(variantA["performance"]); err != nil {
			return fmt.Errorf("variantA: %w", err)
		}
		if err := performance(variantB["performance"]); err != nil {
			return fmt.Errorf("variantB: %w", err)
		}
		return nil
	default:
		return ErrInvalidWinner
	}
}

// FollowerPoint validates one follower growth bucket.
func FollowerPoint(v interface{}) error {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return ErrNotObject
	}
	if !isString(obj["name"]) {
		return ErrInvalidName
	}
	if !isCount(obj["LinkedIn"]) || !isCount(obj["Instagram"]) {
		return ErrInvalidCount
	}
	return nil
}

// EngagementPoint validates one engagement rate bucket.
func EngagementPoint(v interface{}) error {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return ErrNotObject
	}
	if !isString(obj["name"]) {
		return ErrInvalidName
	}
	if !isNumber(obj["rate"]) {
		return ErrInvalidRate
	}
	return nil
}

// Posts validates a post collection.
func Posts(v interface{}) error {
	return Each(Post)(v)
}

// FollowerSeries validates the follower growth series.
func FollowerSeries(v interface{}) error {
	return Each(FollowerPoint)(v)
}

// EngagementSeries validates the engagement rate series.
func EngagementSeries(v interface{}) error {
	return Each(EngagementPoint)(v)
}

// Each lifts an element validator to arrays. An empty array is valid.
func Each(item Func) Func {
	return func(v interface{}) error {
		items, ok := v.([]interface{})
		if !ok {
			return ErrNotArray
		}
		for i, it := range items {
			if err := item(it); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		return nil
	}
}

func variant(v interface{}) (map[string]interface{}, bool) {
	obj, ok := v.(map[string]interface{})
	if !ok || !isString(obj["content"]) {
		return nil, false
	}
	return obj, true
}

func performance(v interface{}) error {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return ErrInvalidPerformance
	}
	for _, key := range []string{"likes", "comments", "shares"} {
		if !isCount(obj[key]) {
			return ErrInvalidPerformance
		}
	}
	return nil
}

func isString(v interface{}) bool {
	_, ok := v.(string)
	return ok
}

func isNumber(v interface{}) bool {
	f, ok := v.(float64)
	return ok && !math.IsNaN(f) && !math.IsInf(f, 0)
}

// isCount reports whether v is a non-negative whole number.
func isCount(v interface{}) bool {
	f, ok := v.(float64)
	return ok && f >= 0 && f == math.Trunc(f) && !math.IsInf(f, 0)
}
