package printer

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"time"
	"unicode/utf8"

	"github.com/riomyers/ripgrep/internal/matcher"
	"github.com/riomyers/ripgrep/internal/searcher"
)

// JSONBuilder configures the JSON Lines printer.
type JSONBuilder struct {
	// Pretty indents every record. The output is then no longer one record
	// per line.
	Pretty bool

	// AlwaysBeginEnd emits begin and end records even for sources without
	// any match.
	AlwaysBeginEnd bool
}

// JSONOption configures a JSONBuilder.
type JSONOption func(*JSONBuilder)

// WithPrettyPrint enables indented records.
func WithPrettyPrint() JSONOption {
	return func(b *JSONBuilder) {
		b.Pretty = true
	}
}

// WithAlwaysBeginEnd emits begin and end records for every source.
func WithAlwaysBeginEnd() JSONOption {
	return func(b *JSONBuilder) {
		b.AlwaysBeginEnd = true
	}
}

// NewJSONBuilder returns a builder producing compact records.
func NewJSONBuilder(opts ...JSONOption) JSONBuilder {
	var b JSONBuilder
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Build creates a JSON printer writing to w.
func (b JSONBuilder) Build(w io.Writer) *JSON {
	return &JSON{cfg: b, wtr: &countingWriter{w: w}}
}

// JSON prints one self-describing record per search event.
type JSON struct {
	cfg JSONBuilder
	wtr *countingWriter
}

// BytesPrinted returns the total number of bytes written so far.
func (p *JSON) BytesPrinted() uint64 {
	return p.wtr.total
}

// Sink returns a sink that emits the records of searching path with m.
func (p *JSON) Sink(path string, m matcher.Matcher) *JSONSink {
	return &JSONSink{p: p, path: path, m: m, binaryOffset: -1}
}

func (p *JSON) write(msg message) error {
	var (
		data []byte
		err  error
	)
	if p.cfg.Pretty {
		data, err = json.MarshalIndent(msg, "", "  ")
	} else {
		data, err = json.Marshal(msg)
	}
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = p.wtr.Write(data)
	return err
}

// message is the envelope of every record.
type message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// arbitraryData holds text that may not be valid UTF-8.
type arbitraryData struct {
	Text  *string `json:"text,omitempty"`
	Bytes *string `json:"bytes,omitempty"`
}

func newArbitraryData(b []byte) arbitraryData {
	if utf8.Valid(b) {
		s := string(b)
		return arbitraryData{Text: &s}
	}
	s := base64.StdEncoding.EncodeToString(b)
	return arbitraryData{Bytes: &s}
}

type beginData struct {
	Path arbitraryData `json:"path"`
}

type endData struct {
	Path         arbitraryData `json:"path"`
	BinaryOffset *int64        `json:"binary_offset"`
	Stats        Stats         `json:"stats"`
}

type submatch struct {
	Match arbitraryData `json:"match"`
	Start int           `json:"start"`
	End   int           `json:"end"`
}

type lineData struct {
	Path           arbitraryData `json:"path"`
	Lines          arbitraryData `json:"lines"`
	LineNumber     *uint64       `json:"line_number"`
	AbsoluteOffset int64         `json:"absolute_offset"`
	Submatches     []submatch    `json:"submatches"`
}

type summaryData struct {
	ElapsedTotal jsonDuration `json:"elapsed_total"`
	Stats        Stats        `json:"stats"`
}

// JSONSink emits the records of one search.
type JSONSink struct {
	p    *JSON
	path string
	m    matcher.Matcher

	start        time.Time
	printedStart uint64
	begun        bool
	binaryOffset int64
	stats        Stats
}

// HasMatch reports whether the search reported at least one matching line.
func (s *JSONSink) HasMatch() bool {
	return s.stats.MatchedLines > 0
}

// Stats returns the statistics of this search. They are complete after Finish.
func (s *JSONSink) Stats() *Stats {
	return &s.stats
}

// BinaryOffset returns the offset of the first NUL byte, or -1.
func (s *JSONSink) BinaryOffset() int64 {
	return s.binaryOffset
}

// Begin implements searcher.Sink.
func (s *JSONSink) Begin() (bool, error) {
	s.start = time.Now()
	s.printedStart = s.p.wtr.total
	s.stats = Stats{Searches: 1}
	if s.p.cfg.AlwaysBeginEnd {
		if err := s.begin(); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Matched implements searcher.Sink.
func (s *JSONSink) Matched(m *searcher.Match) (bool, error) {
	if err := s.begin(); err != nil {
		return false, err
	}

	subs, err := s.submatches(m.Line)
	if err != nil {
		return false, err
	}
	s.stats.MatchedLines++
	s.stats.Matches += uint64(max(len(subs), 1))

	err = s.p.write(message{Type: "match", Data: s.lineData(m.Line, m.Terminated, m.LineNumber, m.AbsoluteOffset, subs)})
	return err == nil, err
}

// Context implements searcher.Sink.
func (s *JSONSink) Context(c *searcher.Context) (bool, error) {
	if err := s.begin(); err != nil {
		return false, err
	}

	// Context lines of an inverted search can still contain matches.
	subs, err := s.submatches(c.Line)
	if err != nil {
		return false, err
	}
	err = s.p.write(message{Type: "context", Data: s.lineData(c.Line, c.Terminated, c.LineNumber, c.AbsoluteOffset, subs)})
	return err == nil, err
}

// ContextBreak implements searcher.Sink. Records carry line numbers, so
// breaks are implied.
func (s *JSONSink) ContextBreak() (bool, error) {
	return true, nil
}

// BinaryData implements searcher.Sink.
func (s *JSONSink) BinaryData(offset int64) (bool, error) {
	if s.binaryOffset < 0 {
		s.binaryOffset = offset
	}
	return true, nil
}

// Finish implements searcher.Sink.
func (s *JSONSink) Finish(f *searcher.Finish) error {
	s.stats.Elapsed = time.Since(s.start)
	s.stats.BytesSearched = uint64(max(f.BytesSearched, 0))
	if s.stats.MatchedLines > 0 {
		s.stats.SearchesWithMatch = 1
	}
	if !s.begun {
		return nil
	}

	end := endData{Path: newArbitraryData([]byte(s.path))}
	if f.BinaryOffset >= 0 {
		off := f.BinaryOffset
		end.BinaryOffset = &off
	}
	s.stats.BytesPrinted = s.p.wtr.total - s.printedStart
	end.Stats = s.stats
	if err := s.p.write(message{Type: "end", Data: end}); err != nil {
		return err
	}
	s.stats.BytesPrinted = s.p.wtr.total - s.printedStart
	return nil
}

func (s *JSONSink) begin() error {
	if s.begun {
		return nil
	}
	s.begun = true
	return s.p.write(message{Type: "begin", Data: beginData{Path: newArbitraryData([]byte(s.path))}})
}

func (s *JSONSink) submatches(line []byte) ([]submatch, error) {
	subs := []submatch{}
	err := s.m.FindIter(line, func(m matcher.Match) bool {
		subs = append(subs, submatch{
			Match: newArbitraryData(line[m.Start:m.End]),
			Start: m.Start,
			End:   m.End,
		})
		return true
	})
	return subs, err
}

// lineData builds a match or context record. The line terminator is only
// reported when the source had one.
func (s *JSONSink) lineData(line []byte, terminated bool, number uint64, offset int64, subs []submatch) lineData {
	text := bytes.Clone(line)
	if terminated {
		text = append(text, '\n')
	}
	d := lineData{
		Path:           newArbitraryData([]byte(s.path)),
		Lines:          newArbitraryData(text),
		AbsoluteOffset: offset,
		Submatches:     subs,
	}
	if number > 0 {
		n := number
		d.LineNumber = &n
	}
	return d
}

// WriteJSONSummary writes the final summary record.
func WriteJSONSummary(w io.Writer, stats *Stats, elapsed time.Duration) error {
	data, err := json.Marshal(message{
		Type: "summary",
		Data: summaryData{ElapsedTotal: newJSONDuration(elapsed), Stats: *stats},
	})
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}
