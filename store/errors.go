package store

import "errors"

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrRefreshCancelled = errors.New("analytics refresh cancelled")
	ErrClosed           = errors.New("store is closed")
	ErrResultsFinal     = errors.New("A/B test results are final")
)
