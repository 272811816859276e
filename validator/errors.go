package validator

import "errors"

var (
	ErrNotObject          = errors.New("value is not an object")
	ErrNotArray           = errors.New("value is not an array")
	ErrInvalidID          = errors.New("id must be a number")
	ErrInvalidPlatform    = errors.New("platform must be one of LinkedIn, Instagram, Twitter")
	ErrInvalidDay         = errors.New("day must be a weekday name")
	ErrInvalidTime        = errors.New("scheduledTime must be a string")
	ErrInvalidABFlag      = errors.New("isABTest must be a boolean")
	ErrInvalidContent     = errors.New("content must be a string")
	ErrInvalidVariant     = errors.New("variant must be an object with string content")
	ErrInvalidWinner      = errors.New("winner must be A, B, Tie, Pending or null")
	ErrInvalidPerformance = errors.New("performance must hold non-negative integer likes, comments and shares")
	ErrInvalidName        = errors.New("name must be a string")
	ErrInvalidCount       = errors.New("follower counts must be non-negative integers")
	ErrInvalidRate        = errors.New("rate must be a number")
)
