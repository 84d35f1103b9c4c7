package printer

import (
	"bytes"
	"strconv"
	"time"

	"github.com/riomyers/ripgrep/internal/matcher"
	"github.com/riomyers/ripgrep/internal/searcher"
	"github.com/riomyers/ripgrep/internal/style"
)

// Default separators of the standard format.
const (
	DefaultFieldSeparator   = ":"
	DefaultContextSeparator = "-"
	DefaultGroupSeparator   = "--"
)

// StandardBuilder configures the standard printer. It is a plain value, so
// copying a builder snapshots its configuration.
type StandardBuilder struct {
	// Heading prints the path once above the matches of each file instead of
	// prefixing every line with it.
	Heading bool

	// Path prefixes output with the path of the source. Summary lines written
	// by WriteCount also honor it.
	Path bool

	// LineNumber prefixes lines with their 1-based line number.
	LineNumber bool

	// Column prefixes matching lines with the 1-based byte column of the
	// first match.
	Column bool

	// OnlyMatching prints each match on its own line instead of the whole line.
	OnlyMatching bool

	// MaxColumns replaces lines longer than this many bytes with a notice.
	// Zero means no limit.
	MaxColumns int

	// Separator is printed between fields of matching lines.
	Separator string

	// ContextSeparator is printed between fields of context lines.
	ContextSeparator string

	// GroupSeparator is printed between non-adjacent context groups.
	GroupSeparator string

	// Null terminates paths with a NUL byte instead of a separator or newline.
	Null bool

	// IncludeZero makes count summaries report sources without matches.
	IncludeZero bool

	// DetachedHeadings leaves out the blank line between file groups in
	// heading mode. Callers merging the output of several printers set it
	// and separate the groups themselves.
	DetachedHeadings bool
}

// StandardOption configures a StandardBuilder.
type StandardOption func(*StandardBuilder)

// WithHeading enables heading mode.
func WithHeading(yes bool) StandardOption {
	return func(b *StandardBuilder) {
		b.Heading = yes
	}
}

// WithPath toggles path prefixes.
func WithPath(yes bool) StandardOption {
	return func(b *StandardBuilder) {
		b.Path = yes
	}
}

// WithLineNumber toggles line number prefixes.
func WithLineNumber(yes bool) StandardOption {
	return func(b *StandardBuilder) {
		b.LineNumber = yes
	}
}

// WithColumn toggles column prefixes.
func WithColumn(yes bool) StandardOption {
	return func(b *StandardBuilder) {
		b.Column = yes
	}
}

// WithOnlyMatching prints only the matched parts of lines.
func WithOnlyMatching(yes bool) StandardOption {
	return func(b *StandardBuilder) {
		b.OnlyMatching = yes
	}
}

// WithMaxColumns sets the long line limit.
func WithMaxColumns(n int) StandardOption {
	return func(b *StandardBuilder) {
		if n >= 0 {
			b.MaxColumns = n
		}
	}
}

// WithNull terminates paths with NUL bytes.
func WithNull(yes bool) StandardOption {
	return func(b *StandardBuilder) {
		b.Null = yes
	}
}

// WithIncludeZero reports zero counts in count summaries.
func WithIncludeZero(yes bool) StandardOption {
	return func(b *StandardBuilder) {
		b.IncludeZero = yes
	}
}

// WithDetachedHeadings leaves group separation in heading mode to the caller.
func WithDetachedHeadings(yes bool) StandardOption {
	return func(b *StandardBuilder) {
		b.DetachedHeadings = yes
	}
}

// NewStandardBuilder returns a builder with paths enabled and the default
// separators, modified by opts.
func NewStandardBuilder(opts ...StandardOption) StandardBuilder {
	b := StandardBuilder{
		Path:             true,
		Separator:        DefaultFieldSeparator,
		ContextSeparator: DefaultContextSeparator,
		GroupSeparator:   DefaultGroupSeparator,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Build creates a Standard printer writing to w.
func (b StandardBuilder) Build(w style.Writer) *Standard {
	if b.Separator == "" {
		b.Separator = DefaultFieldSeparator
	}
	if b.ContextSeparator == "" {
		b.ContextSeparator = DefaultContextSeparator
	}
	if b.GroupSeparator == "" {
		b.GroupSeparator = DefaultGroupSeparator
	}
	return &Standard{
		cfg:   b,
		style: w,
		wtr:   &countingWriter{w: w},
	}
}

// Standard prints results in the classic grep format.
type Standard struct {
	cfg   StandardBuilder
	style style.Writer
	wtr   *countingWriter

	// headings counts files that printed a heading, for the blank line
	// between file groups.
	headings uint64
}

// BytesPrinted returns the total number of bytes written so far.
func (p *Standard) BytesPrinted() uint64 {
	return p.wtr.total
}

// WritePath prints path on its own line.
func (p *Standard) WritePath(path string) error {
	var buf bytes.Buffer
	buf.WriteString(p.style.Render(style.RolePath, path))
	if p.cfg.Null {
		buf.WriteByte(0)
	} else {
		buf.WriteByte('\n')
	}
	_, err := p.wtr.Write(buf.Bytes())
	return err
}

// WriteCount prints a count line, prefixed by path when paths are enabled.
// A zero count prints nothing unless IncludeZero is set.
func (p *Standard) WriteCount(path string, n uint64) error {
	if n == 0 && !p.cfg.IncludeZero {
		return nil
	}
	var buf bytes.Buffer
	if p.cfg.Path && path != "" {
		buf.WriteString(p.style.Render(style.RolePath, path))
		if p.cfg.Null {
			buf.WriteByte(0)
		} else {
			buf.WriteString(p.style.Render(style.RoleSeparator, p.cfg.Separator))
		}
	}
	buf.WriteString(strconv.FormatUint(n, 10))
	buf.WriteByte('\n')
	_, err := p.wtr.Write(buf.Bytes())
	return err
}

// Sink returns a sink that prints the results of searching path with m.
func (p *Standard) Sink(path string, m matcher.Matcher) *StandardSink {
	return &StandardSink{p: p, path: path, m: m, binaryOffset: -1}
}

// StandardSink prints the events of one search as they arrive.
type StandardSink struct {
	p    *Standard
	path string
	m    matcher.Matcher

	start        time.Time
	printedStart uint64
	wroteHeading bool
	binaryOffset int64
	stats        Stats

	buf  bytes.Buffer
	subs []matcher.Match
}

// HasMatch reports whether the search reported at least one matching line.
func (s *StandardSink) HasMatch() bool {
	return s.stats.MatchedLines > 0
}

// Stats returns the statistics of this search. They are complete after Finish.
func (s *StandardSink) Stats() *Stats {
	return &s.stats
}

// BinaryOffset returns the offset of the first NUL byte, or -1.
func (s *StandardSink) BinaryOffset() int64 {
	return s.binaryOffset
}

// Begin implements searcher.Sink.
func (s *StandardSink) Begin() (bool, error) {
	s.start = time.Now()
	s.printedStart = s.p.wtr.total
	s.stats = Stats{Searches: 1}
	return true, nil
}

// Matched implements searcher.Sink.
func (s *StandardSink) Matched(m *searcher.Match) (bool, error) {
	subs, err := s.findAll(m.Line)
	if err != nil {
		return false, err
	}

	s.stats.MatchedLines++
	if len(subs) == 0 {
		// Inverted matches have no submatches but still count once.
		s.stats.Matches++
	} else {
		s.stats.Matches += uint64(len(subs))
	}

	if err := s.heading(); err != nil {
		return false, err
	}

	if s.p.cfg.OnlyMatching {
		for _, sub := range subs {
			s.buf.Reset()
			s.prefix(m.LineNumber, sub.Start+1, s.p.cfg.Separator, true)
			s.buf.WriteString(s.p.style.Render(style.RoleMatch, string(m.Line[sub.Start:sub.End])))
			s.buf.WriteByte('\n')
			if _, err := s.p.wtr.Write(s.buf.Bytes()); err != nil {
				return false, err
			}
		}
		return true, nil
	}

	column := 1
	if len(subs) > 0 {
		column = subs[0].Start + 1
	}
	s.buf.Reset()
	s.prefix(m.LineNumber, column, s.p.cfg.Separator, true)
	if s.omit(m.Line) {
		s.buf.WriteString("[Omitted long line with ")
		s.buf.WriteString(strconv.Itoa(len(subs)))
		s.buf.WriteString(" matches]")
	} else {
		s.highlight(m.Line, subs)
	}
	s.buf.WriteByte('\n')
	if _, err := s.p.wtr.Write(s.buf.Bytes()); err != nil {
		return false, err
	}
	return true, nil
}

// Context implements searcher.Sink.
func (s *StandardSink) Context(c *searcher.Context) (bool, error) {
	if s.p.cfg.OnlyMatching {
		return true, nil
	}
	if err := s.heading(); err != nil {
		return false, err
	}

	s.buf.Reset()
	s.prefix(c.LineNumber, 0, s.p.cfg.ContextSeparator, false)
	if s.omit(c.Line) {
		s.buf.WriteString("[Omitted long context line]")
	} else {
		s.buf.Write(c.Line)
	}
	s.buf.WriteByte('\n')
	_, err := s.p.wtr.Write(s.buf.Bytes())
	return err == nil, err
}

// ContextBreak implements searcher.Sink.
func (s *StandardSink) ContextBreak() (bool, error) {
	line := s.p.style.Render(style.RoleSeparator, s.p.cfg.GroupSeparator) + "\n"
	_, err := s.p.wtr.Write([]byte(line))
	return err == nil, err
}

// BinaryData implements searcher.Sink.
func (s *StandardSink) BinaryData(offset int64) (bool, error) {
	if s.binaryOffset < 0 {
		s.binaryOffset = offset
	}
	return true, nil
}

// Finish implements searcher.Sink.
func (s *StandardSink) Finish(f *searcher.Finish) error {
	s.stats.Elapsed = time.Since(s.start)
	s.stats.BytesSearched = uint64(max(f.BytesSearched, 0))
	s.stats.BytesPrinted = s.p.wtr.total - s.printedStart
	if s.stats.MatchedLines > 0 {
		s.stats.SearchesWithMatch = 1
	}
	return nil
}

func (s *StandardSink) findAll(line []byte) ([]matcher.Match, error) {
	s.subs = s.subs[:0]
	err := s.m.FindIter(line, func(m matcher.Match) bool {
		s.subs = append(s.subs, m)
		return true
	})
	return s.subs, err
}

// heading prints the path above the first line of a file in heading mode.
func (s *StandardSink) heading() error {
	if !s.p.cfg.Heading || !s.p.cfg.Path || s.wroteHeading || s.path == "" {
		return nil
	}
	s.wroteHeading = true

	var buf bytes.Buffer
	if s.p.headings > 0 && !s.p.cfg.DetachedHeadings {
		buf.WriteByte('\n')
	}
	s.p.headings++
	buf.WriteString(s.p.style.Render(style.RolePath, s.path))
	if s.p.cfg.Null {
		buf.WriteByte(0)
	}
	buf.WriteByte('\n')
	_, err := s.p.wtr.Write(buf.Bytes())
	return err
}

// prefix writes the path, line and column fields into the line buffer.
func (s *StandardSink) prefix(lineNumber uint64, column int, sep string, matched bool) {
	renderedSep := s.p.style.Render(style.RoleSeparator, sep)
	if s.p.cfg.Path && !s.p.cfg.Heading && s.path != "" {
		s.buf.WriteString(s.p.style.Render(style.RolePath, s.path))
		if s.p.cfg.Null {
			s.buf.WriteByte(0)
		} else {
			s.buf.WriteString(renderedSep)
		}
	}
	if s.p.cfg.LineNumber && lineNumber > 0 {
		s.buf.WriteString(s.p.style.Render(style.RoleLine, strconv.FormatUint(lineNumber, 10)))
		s.buf.WriteString(renderedSep)
	}
	if s.p.cfg.Column && matched {
		s.buf.WriteString(s.p.style.Render(style.RoleColumn, strconv.Itoa(column)))
		s.buf.WriteString(renderedSep)
	}
}

func (s *StandardSink) highlight(line []byte, subs []matcher.Match) {
	last := 0
	for _, sub := range subs {
		if sub.Len() == 0 {
			continue
		}
		s.buf.Write(line[last:sub.Start])
		s.buf.WriteString(s.p.style.Render(style.RoleMatch, string(line[sub.Start:sub.End])))
		last = sub.End
	}
	s.buf.Write(line[last:])
}

func (s *StandardSink) omit(line []byte) bool {
	return s.p.cfg.MaxColumns > 0 && len(line) > s.p.cfg.MaxColumns
}
