package generator

import "errors"

var (
	ErrMissingBrandProfile = errors.New("brand profile is required, please complete it in Settings")
	ErrEmptyResponse       = errors.New("model returned an empty response")
	ErrMalformedPayload    = errors.New("model response does not match the expected shape")
)

// Error is a failed generation. Error() is safe to show to the user; the cause is kept
// for logs and errors.Is.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }
