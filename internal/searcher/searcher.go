package searcher

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/riomyers/ripgrep/internal/matcher"
)

// BinaryDetection selects what happens when a NUL byte is found.
type BinaryDetection int

const (
	// BinaryQuit stops searching the source at the first NUL byte.
	BinaryQuit BinaryDetection = iota
	// BinaryNone treats binary data like any other text.
	BinaryNone
	// BinaryConvert replaces NUL bytes with line terminators and keeps going.
	BinaryConvert
)

// String returns the name used by the --binary flag.
func (b BinaryDetection) String() string {
	switch b {
	case BinaryNone:
		return "none"
	case BinaryConvert:
		return "convert"
	default:
		return "quit"
	}
}

// ParseBinaryDetection converts a --binary flag value.
func ParseBinaryDetection(s string) (BinaryDetection, error) {
	switch s {
	case "", "quit":
		return BinaryQuit, nil
	case "none", "text":
		return BinaryNone, nil
	case "convert":
		return BinaryConvert, nil
	default:
		return BinaryQuit, fmt.Errorf("unknown binary detection mode %q", s)
	}
}

// DefaultBufferSize is the initial size of the line reader buffer.
const DefaultBufferSize = 64 * 1024

// Searcher holds line-oriented search configuration. It carries no per-search
// state, so one Searcher may be reused for any number of sources.
type Searcher struct {
	lineNumbers   bool
	beforeContext int
	afterContext  int
	invertMatch   bool
	binary        BinaryDetection
	maxCount      uint64
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLineNumbers enables line number tracking.
func WithLineNumbers(yes bool) Option {
	return func(s *Searcher) {
		s.lineNumbers = yes
	}
}

// WithBeforeContext sets how many lines before each match are reported.
func WithBeforeContext(n int) Option {
	return func(s *Searcher) {
		if n >= 0 {
			s.beforeContext = n
		}
	}
}

// WithAfterContext sets how many lines after each match are reported.
func WithAfterContext(n int) Option {
	return func(s *Searcher) {
		if n >= 0 {
			s.afterContext = n
		}
	}
}

// WithInvertMatch reports lines that do not match instead of lines that do.
func WithInvertMatch(yes bool) Option {
	return func(s *Searcher) {
		s.invertMatch = yes
	}
}

// WithBinaryDetection sets the binary data policy.
func WithBinaryDetection(b BinaryDetection) Option {
	return func(s *Searcher) {
		s.binary = b
	}
}

// WithMaxCount stops each search after n matching lines. Zero means no limit.
func WithMaxCount(n uint64) Option {
	return func(s *Searcher) {
		s.maxCount = n
	}
}

// New creates a Searcher. Without options it reports matching lines only,
// without line numbers, and quits at the first NUL byte.
func New(opts ...Option) *Searcher {
	s := &Searcher{
		binary: BinaryQuit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LineNumbers reports whether line numbers are tracked.
func (s *Searcher) LineNumbers() bool {
	return s.lineNumbers
}

// InvertMatch reports whether the search is inverted.
func (s *Searcher) InvertMatch() bool {
	return s.invertMatch
}

// HasContext reports whether any context lines are requested.
func (s *Searcher) HasContext() bool {
	return s.beforeContext > 0 || s.afterContext > 0
}

// bufferedLine is a copy of a line kept for before-context.
type bufferedLine struct {
	line       []byte
	index      uint64
	offset     int64
	terminated bool
}

// run holds the state of a single SearchReader call.
type run struct {
	s    *Searcher
	m    matcher.Matcher
	sink Sink

	lineIndex   uint64 // 1-based index of the current line
	consumed    int64
	binary      int64
	lastEmitted uint64 // index of the last line given to the sink, 0 if none
	afterLeft   int
	matched     uint64
	finishing   bool // max count reached, only after-context remains
	before      []bufferedLine
}

// SearchReader searches r with m and reports events to sink. It checks ctx
// between lines. Read and matcher failures are returned without calling
// Finish; a stop requested by the sink still calls Finish.
func (s *Searcher) SearchReader(ctx context.Context, m matcher.Matcher, r io.Reader, sink Sink) error {
	st := &run{s: s, m: m, sink: sink, binary: -1}

	ok, err := sink.Begin()
	if err != nil {
		return err
	}
	if ok {
		if err := st.scan(ctx, r); err != nil {
			return err
		}
	}

	return sink.Finish(&Finish{
		BytesSearched: st.consumed,
		BinaryOffset:  st.binary,
	})
}

// scan reads lines until EOF or until the sink asks to stop.
func (st *run) scan(ctx context.Context, r io.Reader) error {
	var conv *nulConverter
	if st.s.binary == BinaryConvert {
		conv = &nulConverter{r: r, first: -1}
		r = conv
	}

	br := bufio.NewReaderSize(r, DefaultBufferSize)
	var buf []byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, rerr := readLine(br, buf[:0])
		buf = line
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return fmt.Errorf("%w: %w", ErrRead, rerr)
		}
		if len(line) == 0 && rerr != nil {
			return nil
		}

		offset := st.consumed
		st.consumed += int64(len(line))
		st.lineIndex++

		if conv != nil && conv.first >= 0 && st.binary < 0 {
			st.binary = conv.first
			ok, err := st.sink.BinaryData(st.binary)
			if err != nil || !ok {
				return err
			}
		}

		content := bytes.TrimSuffix(line, []byte{'\n'})
		terminated := len(content) < len(line)
		if st.s.binary == BinaryQuit {
			if i := bytes.IndexByte(content, 0); i >= 0 {
				st.binary = offset + int64(i)
				st.consumed = offset
				_, err := st.sink.BinaryData(st.binary)
				return err
			}
		}

		cont, err := st.line(content, offset, terminated)
		if err != nil || !cont {
			return err
		}
		if rerr != nil {
			return nil
		}
	}
}

// line classifies one line and emits the events it causes. It returns false
// when the search should stop.
func (st *run) line(content []byte, offset int64, terminated bool) (bool, error) {
	ok, err := matcher.IsMatch(st.m, content)
	if err != nil {
		return false, err
	}
	if st.s.invertMatch {
		ok = !ok
	}

	if ok && !st.finishing {
		return st.emitMatch(content, offset, terminated)
	}

	if st.afterLeft > 0 {
		st.afterLeft--
		cont, err := st.emitContext(ContextAfter, content, st.lineIndex, offset, terminated)
		if err != nil || !cont {
			return false, err
		}
		return !(st.finishing && st.afterLeft == 0), nil
	}
	if st.finishing {
		return false, nil
	}

	st.remember(content, offset, terminated)
	return true, nil
}

func (st *run) emitMatch(content []byte, offset int64, terminated bool) (bool, error) {
	first := st.lineIndex
	if len(st.before) > 0 {
		first = st.before[0].index
	}
	if cont, err := st.contextBreak(first); err != nil || !cont {
		return false, err
	}

	for _, b := range st.before {
		cont, err := st.emitContext(ContextBefore, b.line, b.index, b.offset, b.terminated)
		if err != nil || !cont {
			return false, err
		}
	}
	st.before = st.before[:0]

	st.lastEmitted = st.lineIndex
	cont, err := st.sink.Matched(&Match{
		Line:           content,
		LineNumber:     st.number(st.lineIndex),
		AbsoluteOffset: offset,
		Terminated:     terminated,
	})
	if err != nil || !cont {
		return false, err
	}

	st.afterLeft = st.s.afterContext
	st.matched++
	if st.s.maxCount > 0 && st.matched >= st.s.maxCount {
		st.finishing = true
		return st.afterLeft > 0, nil
	}
	return true, nil
}

func (st *run) emitContext(kind ContextKind, content []byte, index uint64, offset int64, terminated bool) (bool, error) {
	st.lastEmitted = index
	return st.sink.Context(&Context{
		Kind:           kind,
		Line:           content,
		LineNumber:     st.number(index),
		AbsoluteOffset: offset,
		Terminated:     terminated,
	})
}

// contextBreak reports a break when context is enabled and the next emitted
// line does not directly follow the previous one.
func (st *run) contextBreak(next uint64) (bool, error) {
	if !st.s.HasContext() || st.lastEmitted == 0 || next <= st.lastEmitted+1 {
		return true, nil
	}
	return st.sink.ContextBreak()
}

// remember keeps a copy of a non-emitted line for before-context.
func (st *run) remember(content []byte, offset int64, terminated bool) {
	n := st.s.beforeContext
	if n == 0 {
		return
	}
	if len(st.before) == n {
		copy(st.before, st.before[1:])
		st.before = st.before[:n-1]
	}
	st.before = append(st.before, bufferedLine{
		line:       bytes.Clone(content),
		index:      st.lineIndex,
		offset:     offset,
		terminated: terminated,
	})
}

func (st *run) number(index uint64) uint64 {
	if !st.s.lineNumbers {
		return 0
	}
	return index
}

// readLine appends the next line, including its terminator, to buf.
func readLine(br *bufio.Reader, buf []byte) ([]byte, error) {
	for {
		chunk, err := br.ReadSlice('\n')
		buf = append(buf, chunk...)
		if !errors.Is(err, bufio.ErrBufferFull) {
			return buf, err
		}
	}
}

// nulConverter replaces NUL bytes with line terminators and records the
// offset of the first one.
type nulConverter struct {
	r     io.Reader
	n     int64
	first int64
}

func (c *nulConverter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	for i := 0; i < n; i++ {
		if p[i] == 0 {
			if c.first < 0 {
				c.first = c.n + int64(i)
			}
			p[i] = '\n'
		}
	}
	c.n += int64(n)
	return n, err
}
