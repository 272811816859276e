package storage

import "errors"

// ErrInvalidRecord is returned when a value would not pass its own loader's validation.
var ErrInvalidRecord = errors.New("record rejected by validator")
