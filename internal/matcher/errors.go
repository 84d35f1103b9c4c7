package matcher

import "errors"

var (
	// ErrNoPattern is returned when a matcher is built without any pattern.
	ErrNoPattern = errors.New("no pattern given")

	// ErrInvalidPattern is returned when a pattern fails to compile.
	ErrInvalidPattern = errors.New("invalid pattern")
)
