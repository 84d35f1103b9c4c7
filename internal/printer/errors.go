package printer

import (
	"fmt"
	"io"
)

// WriteError reports that the destination rejected output.
type WriteError struct {
	Err error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// countingWriter tracks how many bytes reached the destination.
type countingWriter struct {
	w     io.Writer
	total uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.total += uint64(n)
	if err != nil {
		return n, &WriteError{Err: err}
	}
	return n, nil
}
