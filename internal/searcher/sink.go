package searcher

// Match is a line that satisfied the matcher (or failed it, when the search
// is inverted). Line does not include the line terminator and is only valid
// for the duration of the Matched call.
type Match struct {
	Line           []byte
	LineNumber     uint64 // zero when line numbers are disabled
	AbsoluteOffset int64
	Terminated     bool // the source ended the line with a terminator
}

// ContextKind identifies which side of a match a context line belongs to.
type ContextKind int

const (
	// ContextBefore is a line preceding a match.
	ContextBefore ContextKind = iota
	// ContextAfter is a line following a match.
	ContextAfter
)

// String returns the kind name used in structured output.
func (k ContextKind) String() string {
	if k == ContextAfter {
		return "after"
	}
	return "before"
}

// Context is a non-matching line reported because it is near a match.
type Context struct {
	Kind           ContextKind
	Line           []byte
	LineNumber     uint64
	AbsoluteOffset int64
	Terminated     bool
}

// Finish summarizes a completed search.
type Finish struct {
	// BytesSearched is the number of bytes consumed before the search ended.
	BytesSearched int64

	// BinaryOffset is the offset of the first NUL byte seen, or -1.
	BinaryOffset int64
}

// Sink receives search events. Returning false from any method other than
// Finish stops the search; Finish is still called afterwards. Returning an
// error aborts the search immediately and Finish is not called.
type Sink interface {
	Begin() (bool, error)
	Matched(m *Match) (bool, error)
	Context(c *Context) (bool, error)
	ContextBreak() (bool, error)
	BinaryData(offset int64) (bool, error)
	Finish(f *Finish) error
}
