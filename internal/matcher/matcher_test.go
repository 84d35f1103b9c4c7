package matcher

import (
	"errors"
	"testing"
)

// TestNewRegexMatcher tests matcher construction.
func TestNewRegexMatcher(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty pattern list", func(t *testing.T) {
		t.Parallel()

		_, err := NewRegexMatcher(Options{})
		if !errors.Is(err, ErrNoPattern) {
			t.Errorf("expected ErrNoPattern, got %v", err)
		}
	})

	t.Run("rejects invalid regex", func(t *testing.T) {
		t.Parallel()

		_, err := NewRegexMatcher(Options{Patterns: []string{"foo("}})
		if !errors.Is(err, ErrInvalidPattern) {
			t.Errorf("expected ErrInvalidPattern, got %v", err)
		}
	})

	t.Run("fixed strings escape metacharacters", func(t *testing.T) {
		t.Parallel()

		m, err := NewRegexMatcher(Options{Patterns: []string{"a.b("}, FixedStrings: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok, _ := IsMatch(m, []byte("axb(")); ok {
			t.Error("expected literal dot not to match any byte")
		}
		if ok, _ := IsMatch(m, []byte("xx a.b( yy")); !ok {
			t.Error("expected literal match")
		}
	})
}

// TestRegexMatcherOptions tests the case and boundary options.
func TestRegexMatcherOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     Options
		haystack string
		want     bool
	}{
		{"case sensitive by default", Options{Patterns: []string{"foo"}}, "FOO", false},
		{"ignore case", Options{Patterns: []string{"foo"}, IgnoreCase: true}, "FOO", true},
		{"smart case lowercase pattern", Options{Patterns: []string{"foo"}, SmartCase: true}, "FOO", true},
		{"smart case uppercase pattern", Options{Patterns: []string{"Foo"}, SmartCase: true}, "FOO", false},
		{"smart case ignores escapes", Options{Patterns: []string{`foo\S`}, SmartCase: true}, "FOOX", true},
		{"word regexp rejects partial word", Options{Patterns: []string{"foo"}, WordRegexp: true}, "foobar", false},
		{"word regexp accepts word", Options{Patterns: []string{"foo"}, WordRegexp: true}, "a foo b", true},
		{"line regexp rejects substring", Options{Patterns: []string{"foo"}, LineRegexp: true}, "foo bar", false},
		{"line regexp accepts whole line", Options{Patterns: []string{"foo|bar"}, LineRegexp: true}, "bar", true},
		{"multiple patterns alternate", Options{Patterns: []string{"foo", "bar"}}, "xbarx", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, err := NewRegexMatcher(tt.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, err := IsMatch(m, []byte(tt.haystack))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsMatch(%q) = %v, want %v", tt.haystack, got, tt.want)
			}
		})
	}
}

// TestRegexMatcherFindIter tests iteration over multiple matches.
func TestRegexMatcherFindIter(t *testing.T) {
	t.Parallel()

	m, err := NewRegexMatcher(Options{Patterns: []string{"o+"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("reports every match in order", func(t *testing.T) {
		t.Parallel()

		var got []Match
		err := m.FindIter([]byte("foo boo o"), func(mat Match) bool {
			got = append(got, mat)
			return true
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []Match{{1, 3}, {5, 7}, {8, 9}}
		if len(got) != len(want) {
			t.Fatalf("expected %d matches, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("match %d: expected %+v, got %+v", i, want[i], got[i])
			}
		}
	})

	t.Run("stops when callback returns false", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_ = m.FindIter([]byte("foo boo o"), func(Match) bool {
			calls++
			return false
		})
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("counts matches", func(t *testing.T) {
		t.Parallel()

		n, err := Count(m, []byte("foo boo o"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 3 {
			t.Errorf("expected 3, got %d", n)
		}
	})
}
