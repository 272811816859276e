package handler

import "errors"

var (
	ErrInvalidJSON          = errors.New("invalid JSON body")
	ErrInvalidView          = errors.New("unknown view")
	ErrInvalidPlatform      = errors.New("unknown platform")
	ErrInvalidPostID        = errors.New("invalid post id")
	ErrPostIDMismatch       = errors.New("post id in body does not match the path")
	ErrPlatformNotConnected = errors.New("platform is not connected")
	ErrMissingField         = errors.New("required field is missing")
	ErrGeneratorDisabled    = errors.New("AI generation is not configured")
	ErrCacheDisabled        = errors.New("cache is disabled")
	ErrInvalidSize          = errors.New("invalid size parameter")
	ErrInvalidLevel         = errors.New("invalid level parameter")
	ErrReferralDisabled     = errors.New("referral link not configured")
)
