package search

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/riomyers/ripgrep/internal/matcher"
	"github.com/riomyers/ripgrep/internal/printer"
	"github.com/riomyers/ripgrep/internal/searcher"
	"github.com/riomyers/ripgrep/internal/transcode"
)

// Outcome is the result of searching one source.
type Outcome struct {
	// HasMatch is true when the source contained at least one match, for
	// every output kind including Quiet.
	HasMatch bool

	// Count is the tally printed by the Count and CountMatches kinds. It is
	// zero for other kinds.
	Count uint64

	// BinaryOffset is the offset of the first NUL byte seen, or -1.
	BinaryOffset int64

	// Stats are the statistics of this search alone.
	Stats *printer.Stats
}

// Worker searches sources one at a time and prints the results to the
// destination it was built with. It owns a snapshot of the builder's Config,
// the printer resolved from that Config, and the running statistics.
//
// A Worker is not safe for concurrent use. Parallel searches build one
// Worker per goroutine from the same Builder and reduce the statistics
// afterwards.
//
// Design decision: the output family and kind are resolved once in Build
// rather than on every search because:
//  1. Search stays a straight pipeline with no branching on Output
//  2. A Worker can never change its output format halfway through a run
type Worker struct {
	cfg      Config
	searcher *searcher.Searcher
	matcher  matcher.Matcher
	writer   writer
	stats    *printer.Stats
	logger   *slog.Logger
}

// Config returns the configuration captured at build time.
func (w *Worker) Config() Config {
	return w.cfg
}

// Stats returns the running statistics, or nil when stats are disabled.
func (w *Worker) Stats() *printer.Stats {
	return w.stats
}

// Search searches r, identified by path, and prints results.
//
// The source is decoded first: a forced encoding wraps r in a decoder, and
// without one a BOM sniffer turns UTF-16 with a BOM into UTF-8 and strips a
// UTF-8 BOM. The searcher then drives the reporter chosen at build time.
// Summary kinds stop reading as soon as the answer is known.
//
// Source failures, such as decoding, read and matcher errors, are returned
// as *SourceError and print failures as *RenderError. Neither updates the
// running statistics, so the totals only ever describe complete searches.
func (w *Worker) Search(ctx context.Context, path string, r io.Reader) (Outcome, error) {
	if w.cfg.Encoding != nil {
		r = transcode.NewReader(r, w.cfg.Encoding, w.cfg.StrictEncoding)
	} else {
		r = transcode.NewBOMReader(r)
	}

	sink := w.writer.sink(path, w.matcher)
	if err := w.searcher.SearchReader(ctx, w.matcher, r, sink); err != nil {
		return Outcome{BinaryOffset: -1}, w.wrapError(path, err)
	}

	stats := sink.Stats().Clone()
	if w.stats != nil {
		w.stats.Add(stats)
	}

	outcome := Outcome{
		HasMatch:     sink.HasMatch(),
		Count:        sink.Count(),
		BinaryOffset: sink.BinaryOffset(),
		Stats:        stats,
	}
	w.logger.Debug("searched source",
		"path", path,
		"matched", outcome.HasMatch,
		"matched_lines", stats.MatchedLines,
		"bytes", stats.BytesSearched,
		"elapsed", stats.Elapsed,
	)
	if outcome.BinaryOffset >= 0 {
		w.logger.Debug("binary data found", "path", path, "offset", outcome.BinaryOffset)
	}
	return outcome, nil
}

func (w *Worker) wrapError(path string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var werr *printer.WriteError
	if errors.As(err, &werr) {
		return &RenderError{Path: path, Err: err}
	}
	return &SourceError{Path: path, Err: err}
}
