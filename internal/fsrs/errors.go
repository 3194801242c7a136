package fsrs

import "errors"

// Sentinel errors for the fsrs package.
var (
	ErrInvalidParameters = errors.New("fsrs: parameters out of bounds")
	ErrInvalidRetention  = errors.New("fsrs: retention must be in (0, 1)")
	ErrInvalidElapsed    = errors.New("fsrs: elapsed days must not be negative")
	ErrInvalidMemory     = errors.New("fsrs: memory state out of range")
)
