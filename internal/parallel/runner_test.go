package parallel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/riomyers/ripgrep/internal/matcher"
	"github.com/riomyers/ripgrep/internal/printer"
	"github.com/riomyers/ripgrep/internal/search"
	"github.com/riomyers/ripgrep/internal/searcher"
	"github.com/riomyers/ripgrep/internal/style"
)

// memOpener serves sources from memory.
type memOpener struct {
	mu      sync.Mutex
	files   map[string]string
	opened  int
	missing string
}

func (o *memOpener) open(path string) (io.ReadCloser, string, error) {
	o.mu.Lock()
	o.opened++
	o.mu.Unlock()

	if path == o.missing {
		return nil, path, os.ErrNotExist
	}
	return io.NopCloser(strings.NewReader(o.files[path])), path, nil
}

func factory(t *testing.T, kind search.OutputKind) WorkerFactory {
	t.Helper()

	m, err := matcher.NewRegexMatcher(matcher.Options{Patterns: []string{"foo"}})
	if err != nil {
		t.Fatalf("failed to build matcher: %v", err)
	}
	b := search.NewBuilder().Stats(true).Output(search.StandardOutput{
		Builder: printer.NewStandardBuilder(),
		Kind:    kind,
	})
	return func(w io.Writer) *search.Worker {
		return b.Build(searcher.New(), m, style.Plain(w))
	}
}

func sources(n int, content func(i int) string) ([]string, map[string]string) {
	paths := make([]string, n)
	files := make(map[string]string, n)
	for i := range n {
		paths[i] = fmt.Sprintf("file%02d.txt", i)
		files[paths[i]] = content(i)
	}
	return paths, files
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("stdout closed")
}

// TestNew tests the Runner constructor.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults to one worker per CPU", func(t *testing.T) {
		t.Parallel()

		r := New(factory(t, search.Classic))
		if r.Concurrency() != runtime.NumCPU() {
			t.Errorf("expected concurrency %d, got %d", runtime.NumCPU(), r.Concurrency())
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		r := New(factory(t, search.Classic), WithConcurrency(0))
		if r.Concurrency() != runtime.NumCPU() {
			t.Errorf("expected concurrency %d, got %d", runtime.NumCPU(), r.Concurrency())
		}
		if r.logger == nil {
			t.Error("expected default logger")
		}
	})
}

// TestRunnerRun tests parallel searching.
func TestRunnerRun(t *testing.T) {
	t.Parallel()

	t.Run("searches every source and reduces stats", func(t *testing.T) {
		t.Parallel()

		paths, files := sources(20, func(i int) string {
			if i%2 == 0 {
				return "foo\n"
			}
			return "bar\n"
		})
		opener := &memOpener{files: files}
		r := New(factory(t, search.FilesWithMatches), WithConcurrency(4), WithOpener(opener.open))

		var out bytes.Buffer
		summary, err := r.Run(context.Background(), paths, &out)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !summary.HasMatch || summary.Searched != 20 || summary.Errors != 0 {
			t.Errorf("unexpected summary: %+v", summary)
		}
		if summary.Stats == nil || summary.Stats.Searches != 20 || summary.Stats.SearchesWithMatch != 10 {
			t.Errorf("unexpected stats: %+v", summary.Stats)
		}
		if summary.Stats.BytesPrinted != uint64(out.Len()) {
			t.Errorf("expected %d bytes printed, got %d", out.Len(), summary.Stats.BytesPrinted)
		}

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		sort.Strings(lines)
		var want []string
		for i := 0; i < 20; i += 2 {
			want = append(want, paths[i])
		}
		if strings.Join(lines, ",") != strings.Join(want, ",") {
			t.Errorf("unexpected paths: %v", lines)
		}
	})

	t.Run("never interleaves the output of two sources", func(t *testing.T) {
		t.Parallel()

		paths, files := sources(8, func(int) string {
			return strings.Repeat("foo\n", 200)
		})
		r := New(factory(t, search.Classic), WithConcurrency(4), WithOpener((&memOpener{files: files}).open))

		var out bytes.Buffer
		if _, err := r.Run(context.Background(), paths, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		seen := map[string]bool{}
		current := ""
		for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
			path, _, _ := strings.Cut(line, ":")
			if path != current {
				if seen[path] {
					t.Fatalf("output of %s is interleaved", path)
				}
				seen[path] = true
				current = path
			}
		}
		if len(seen) != 8 {
			t.Errorf("expected output for 8 sources, got %d", len(seen))
		}
	})

	t.Run("counts source errors and continues", func(t *testing.T) {
		t.Parallel()

		paths, files := sources(5, func(int) string { return "foo\n" })
		opener := &memOpener{files: files, missing: paths[2]}
		r := New(factory(t, search.Count), WithConcurrency(2), WithOpener(opener.open))

		var out bytes.Buffer
		summary, err := r.Run(context.Background(), paths, &out)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.Errors != 1 || summary.Searched != 4 {
			t.Errorf("unexpected summary: %+v", summary)
		}
	})

	t.Run("stops on write failures", func(t *testing.T) {
		t.Parallel()

		paths, files := sources(10, func(int) string { return "foo\n" })
		r := New(factory(t, search.Classic), WithConcurrency(2), WithOpener((&memOpener{files: files}).open))

		_, err := r.Run(context.Background(), paths, brokenWriter{})
		var rerr *search.RenderError
		if !errors.As(err, &rerr) || !search.IsFatal(err) {
			t.Errorf("expected fatal render error, got %v", err)
		}
	})

	t.Run("stops at the first match when asked", func(t *testing.T) {
		t.Parallel()

		paths, files := sources(200, func(int) string { return "foo\n" })
		opener := &memOpener{files: files}
		r := New(factory(t, search.Quiet), WithConcurrency(2), WithOpener(opener.open), WithStopOnMatch(true))

		var out bytes.Buffer
		summary, err := r.Run(context.Background(), paths, &out)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !summary.HasMatch {
			t.Error("expected a match")
		}
		if out.Len() != 0 {
			t.Errorf("expected no output, got %q", out.String())
		}
		if opener.opened == len(paths) {
			t.Error("expected the run to stop before opening every source")
		}
	})

	t.Run("returns on cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		paths, files := sources(10, func(int) string { return "foo\n" })
		r := New(factory(t, search.Classic), WithOpener((&memOpener{files: files}).open))
		if _, err := r.Run(ctx, paths, io.Discard); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestRunnerHeading tests heading groups printed by several workers.
func TestRunnerHeading(t *testing.T) {
	t.Parallel()

	t.Run("separates every group once across workers", func(t *testing.T) {
		t.Parallel()

		m, err := matcher.NewRegexMatcher(matcher.Options{Patterns: []string{"foo"}})
		if err != nil {
			t.Fatalf("failed to build matcher: %v", err)
		}
		b := search.NewBuilder().Output(search.StandardOutput{
			Builder: printer.NewStandardBuilder(printer.WithHeading(true), printer.WithDetachedHeadings(true)),
			Kind:    search.Classic,
		})
		heading := func(w io.Writer) *search.Worker {
			return b.Build(searcher.New(), m, style.Plain(w))
		}

		paths, files := sources(8, func(int) string { return "foo\n" })
		opener := &memOpener{files: files}
		slow := func(path string) (io.ReadCloser, string, error) {
			time.Sleep(5 * time.Millisecond)
			return opener.open(path)
		}
		r := New(heading, WithConcurrency(4), WithOpener(slow), WithHeading(true))

		var out bytes.Buffer
		if _, err := r.Run(context.Background(), paths, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := out.String()
		if strings.HasPrefix(got, "\n") {
			t.Errorf("expected no leading blank line, got %q", got)
		}
		if n := strings.Count(got, "\n\n"); n != 7 {
			t.Errorf("expected 7 blank separators between 8 heading groups, got %d in %q", n, got)
		}
		groups := strings.Split(strings.TrimSuffix(got, "\n"), "\n\n")
		sort.Strings(groups)
		for i, group := range groups {
			want := paths[i] + "\nfoo"
			if group != want {
				t.Errorf("group %d: expected %q, got %q", i, want, group)
			}
		}
	})

	t.Run("prints no separator without heading mode", func(t *testing.T) {
		t.Parallel()

		paths, files := sources(4, func(int) string { return "foo\n" })
		opener := &memOpener{files: files}
		r := New(factory(t, search.FilesWithMatches), WithConcurrency(2), WithOpener(opener.open))

		var out bytes.Buffer
		if _, err := r.Run(context.Background(), paths, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(out.String(), "\n\n") {
			t.Errorf("unexpected blank line in %q", out.String())
		}
	})
}
