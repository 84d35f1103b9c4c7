package printer

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// WriteStats writes the human readable statistics block.
func WriteStats(w io.Writer, stats *Stats, elapsed time.Duration) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%d matches\n", stats.Matches)
	fmt.Fprintf(&b, "%d matched lines\n", stats.MatchedLines)
	fmt.Fprintf(&b, "%d files contained matches\n", stats.SearchesWithMatch)
	fmt.Fprintf(&b, "%d files searched\n", stats.Searches)
	fmt.Fprintf(&b, "%d bytes printed\n", stats.BytesPrinted)
	fmt.Fprintf(&b, "%d bytes searched\n", stats.BytesSearched)
	fmt.Fprintf(&b, "%0.6f seconds spent searching\n", stats.Elapsed.Seconds())
	fmt.Fprintf(&b, "%0.6f seconds\n", elapsed.Seconds())

	if _, err := io.WriteString(w, b.String()); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}
