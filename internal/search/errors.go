package search

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownOutputKind is returned when parsing an unknown kind name.
var ErrUnknownOutputKind = errors.New("unknown output kind")

// SourceError reports a failure that is local to one source: it could not be
// read, decoded or matched. Other sources can still be searched.
type SourceError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// RenderError reports that results could not be written to the destination.
type RenderError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to print results for %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err should end the whole run: render failures and
// cancellation are fatal, source errors are not.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var rerr *RenderError
	if errors.As(err, &rerr) {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
