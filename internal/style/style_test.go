package style

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// TestPalette tests role rendering.
func TestPalette(t *testing.T) {
	t.Parallel()

	t.Run("plain palette leaves text untouched", func(t *testing.T) {
		t.Parallel()

		p := PlainPalette()
		if p.Enabled() {
			t.Error("expected plain palette to be disabled")
		}
		if got := p.Render(RoleMatch, "foo\tbar"); got != "foo\tbar" {
			t.Errorf("expected unchanged text, got %q", got)
		}
	})

	t.Run("color palette adds escape sequences", func(t *testing.T) {
		t.Parallel()

		r := lipgloss.NewRenderer(&bytes.Buffer{})
		r.SetColorProfile(termenv.ANSI256)
		p := ColorPalette(r)

		got := p.Render(RoleMatch, "foo")
		if !strings.Contains(got, "\x1b[") {
			t.Errorf("expected ANSI escape in %q", got)
		}
		if !strings.Contains(got, "foo") {
			t.Errorf("expected text to be preserved in %q", got)
		}
	})

	t.Run("color palette keeps tabs", func(t *testing.T) {
		t.Parallel()

		r := lipgloss.NewRenderer(&bytes.Buffer{})
		r.SetColorProfile(termenv.ANSI256)
		got := ColorPalette(r).Render(RoleMatch, "a\tb")
		if !strings.Contains(got, "a\tb") {
			t.Errorf("expected tab to survive rendering, got %q", got)
		}
	})
}

// TestWriter tests the styled writer wrapper.
func TestWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := Plain(&buf)
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "hello" {
		t.Errorf("expected hello, got %q", buf.String())
	}
	if IsTerminal(&buf) {
		t.Error("expected buffer not to be a terminal")
	}
}

// TestParseColorChoice tests flag parsing.
func TestParseColorChoice(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]ColorChoice{
		"":       ColorAuto,
		"auto":   ColorAuto,
		"never":  ColorNever,
		"always": ColorAlways,
	} {
		got, err := ParseColorChoice(in)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseColorChoice(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseColorChoice("rainbow"); err == nil {
		t.Error("expected error for unknown choice")
	}
}
