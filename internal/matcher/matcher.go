package matcher

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Match is the byte span of a single match inside a haystack.
// Start is inclusive and End is exclusive.
type Match struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the match.
func (m Match) Len() int {
	return m.End - m.Start
}

// Matcher reports whether and where a pattern occurs in a byte region.
// Implementations must be safe to call repeatedly within one search; the
// haystack never contains a line terminator.
type Matcher interface {
	// Find returns the leftmost match in haystack.
	Find(haystack []byte) (Match, bool, error)

	// FindIter calls fn for each successive non-overlapping match in haystack.
	// Iteration stops early when fn returns false.
	FindIter(haystack []byte, fn func(Match) bool) error
}

// IsMatch reports whether m matches anywhere in haystack.
func IsMatch(m Matcher, haystack []byte) (bool, error) {
	_, ok, err := m.Find(haystack)
	return ok, err
}

// Count returns the number of non-overlapping matches of m in haystack.
func Count(m Matcher, haystack []byte) (uint64, error) {
	var n uint64
	err := m.FindIter(haystack, func(Match) bool {
		n++
		return true
	})
	return n, err
}

// Options configures a RegexMatcher.
type Options struct {
	// Patterns are alternated; a line matches when any of them matches.
	Patterns []string

	// FixedStrings treats every pattern as a literal string.
	FixedStrings bool

	// IgnoreCase matches case-insensitively.
	IgnoreCase bool

	// SmartCase matches case-insensitively unless a pattern contains an
	// uppercase letter. IgnoreCase takes precedence.
	SmartCase bool

	// WordRegexp only accepts matches surrounded by word boundaries.
	WordRegexp bool

	// LineRegexp only accepts matches spanning the whole line.
	LineRegexp bool
}

// RegexMatcher is a Matcher backed by the standard regexp package.
type RegexMatcher struct {
	re *regexp.Regexp
}

// NewRegexMatcher compiles the given options into a RegexMatcher.
func NewRegexMatcher(opts Options) (*RegexMatcher, error) {
	if len(opts.Patterns) == 0 {
		return nil, ErrNoPattern
	}

	parts := make([]string, len(opts.Patterns))
	for i, p := range opts.Patterns {
		if opts.FixedStrings {
			p = regexp.QuoteMeta(p)
		}
		parts[i] = "(?:" + p + ")"
	}
	expr := strings.Join(parts, "|")

	switch {
	case opts.LineRegexp:
		expr = "^(?:" + expr + ")$"
	case opts.WordRegexp:
		expr = `\b(?:` + expr + `)\b`
	}

	if opts.IgnoreCase || (opts.SmartCase && !hasUppercase(opts.Patterns)) {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}
	return &RegexMatcher{re: re}, nil
}

// String returns the compiled expression.
func (m *RegexMatcher) String() string {
	return m.re.String()
}

// Find implements Matcher.
func (m *RegexMatcher) Find(haystack []byte) (Match, bool, error) {
	loc := m.re.FindIndex(haystack)
	if loc == nil {
		return Match{}, false, nil
	}
	return Match{Start: loc[0], End: loc[1]}, true, nil
}

// FindIter implements Matcher.
func (m *RegexMatcher) FindIter(haystack []byte, fn func(Match) bool) error {
	for _, loc := range m.re.FindAllIndex(haystack, -1) {
		if !fn(Match{Start: loc[0], End: loc[1]}) {
			return nil
		}
	}
	return nil
}

// hasUppercase reports whether any pattern contains an uppercase letter
// outside of an escape sequence such as \S or \W.
func hasUppercase(patterns []string) bool {
	for _, p := range patterns {
		escaped := false
		for _, r := range p {
			if escaped {
				escaped = false
				continue
			}
			if r == '\\' {
				escaped = true
				continue
			}
			if unicode.IsUpper(r) {
				return true
			}
		}
	}
	return false
}
