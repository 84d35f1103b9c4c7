package walk

import (
	"io"
	"os"
)

// StdinLabel is the name printed for standard input.
const StdinLabel = "<stdin>"

// Open opens path for searching and returns the name to print for it.
// Stdin opens standard input, which is never closed.
func Open(path string) (io.ReadCloser, string, error) {
	if path == Stdin {
		return io.NopCloser(os.Stdin), StdinLabel, nil
	}
	f, err := os.Open(path) //nolint:gosec // paths come from the command line
	if err != nil {
		return nil, path, err
	}
	return f, path, nil
}
