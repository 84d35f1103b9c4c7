package searcher

import "errors"

// ErrRead wraps failures reported by the underlying reader.
var ErrRead = errors.New("read failed")
