package search

import (
	"time"

	"github.com/riomyers/ripgrep/internal/matcher"
	"github.com/riomyers/ripgrep/internal/printer"
	"github.com/riomyers/ripgrep/internal/searcher"
	"github.com/riomyers/ripgrep/internal/style"
)

// reporter is the sink of one search. Besides receiving search events it
// reports what it saw once the search finished.
type reporter interface {
	searcher.Sink
	HasMatch() bool
	Count() uint64
	BinaryOffset() int64
	Stats() *printer.Stats
}

// writer owns a printer bound to one destination and hands out a reporter
// per search.
type writer interface {
	sink(path string, m matcher.Matcher) reporter
}

// newWriter resolves the output family once.
func newWriter(out Output, w style.Writer) writer {
	switch o := out.(type) {
	case JSONOutput:
		return &jsonWriter{printer: o.Builder.Build(w)}
	case StandardOutput:
		return &standardWriter{printer: o.Builder.Build(w), kind: o.Kind}
	default:
		return newWriter(DefaultOutput(), w)
	}
}

type standardWriter struct {
	printer *printer.Standard
	kind    OutputKind
}

func (w *standardWriter) sink(path string, m matcher.Matcher) reporter {
	if w.kind == Classic {
		return classicReporter{w.printer.Sink(path, m)}
	}
	return &summaryReporter{
		kind:         w.kind,
		printer:      w.printer,
		path:         path,
		matcher:      m,
		binaryOffset: -1,
	}
}

type jsonWriter struct {
	printer *printer.JSON
}

func (w *jsonWriter) sink(path string, m matcher.Matcher) reporter {
	return jsonReporter{w.printer.Sink(path, m)}
}

type classicReporter struct {
	*printer.StandardSink
}

func (classicReporter) Count() uint64 {
	return 0
}

type jsonReporter struct {
	*printer.JSONSink
}

func (jsonReporter) Count() uint64 {
	return 0
}

// summaryReporter implements every standard kind other than Classic. It
// never prints individual lines; it counts them and prints at most one line
// per source.
//
// The kinds differ in what they count and when they stop:
//   - Count counts matching lines
//   - CountMatches counts every submatch, and an inverted line counts once
//   - FilesWithMatches prints the path and stops at the first match
//   - FilesWithoutMatch stops at the first match and prints the path only
//     when the source had none
//   - Quiet stops at the first match and never prints
//
// Design decision: one reporter covers all of them instead of one type per
// kind because the kinds share the counting and only the final print and
// the stop condition differ.
type summaryReporter struct {
	kind    OutputKind
	printer *printer.Standard
	path    string
	matcher matcher.Matcher

	start        time.Time
	printedStart uint64
	binaryOffset int64
	stats        printer.Stats
}

func (r *summaryReporter) HasMatch() bool {
	return r.stats.MatchedLines > 0
}

// Count returns the tally printed by the count kinds.
func (r *summaryReporter) Count() uint64 {
	switch r.kind {
	case Count:
		return r.stats.MatchedLines
	case CountMatches:
		return r.stats.Matches
	default:
		return 0
	}
}

func (r *summaryReporter) BinaryOffset() int64 {
	return r.binaryOffset
}

func (r *summaryReporter) Stats() *printer.Stats {
	return &r.stats
}

func (r *summaryReporter) Begin() (bool, error) {
	r.start = time.Now()
	r.printedStart = r.printer.BytesPrinted()
	r.stats = printer.Stats{Searches: 1}
	return true, nil
}

func (r *summaryReporter) Matched(m *searcher.Match) (bool, error) {
	n, err := matcher.Count(r.matcher, m.Line)
	if err != nil {
		return false, err
	}
	r.stats.MatchedLines++
	// An inverted match has no submatches and counts once.
	r.stats.Matches += max(n, 1)

	switch r.kind {
	case FilesWithMatches:
		if err := r.printer.WritePath(r.path); err != nil {
			return false, err
		}
		return false, nil
	case FilesWithoutMatch, Quiet:
		return false, nil
	default:
		return true, nil
	}
}

func (r *summaryReporter) Context(*searcher.Context) (bool, error) {
	return true, nil
}

func (r *summaryReporter) ContextBreak() (bool, error) {
	return true, nil
}

func (r *summaryReporter) BinaryData(offset int64) (bool, error) {
	if r.binaryOffset < 0 {
		r.binaryOffset = offset
	}
	return true, nil
}

func (r *summaryReporter) Finish(f *searcher.Finish) error {
	var err error
	switch r.kind {
	case Count, CountMatches:
		err = r.printer.WriteCount(r.path, r.Count())
	case FilesWithoutMatch:
		if r.stats.MatchedLines == 0 {
			err = r.printer.WritePath(r.path)
		}
	}

	r.stats.Elapsed = time.Since(r.start)
	r.stats.BytesSearched = uint64(max(f.BytesSearched, 0))
	r.stats.BytesPrinted = r.printer.BytesPrinted() - r.printedStart
	if r.stats.MatchedLines > 0 {
		r.stats.SearchesWithMatch = 1
	}
	return err
}
