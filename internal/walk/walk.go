// Package walk expands command line paths into the list of sources to search.
package walk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Stdin is the path that names standard input.
const Stdin = "-"

// ErrInvalidGlob is returned for glob patterns filepath.Match rejects.
var ErrInvalidGlob = errors.New("invalid glob")

// Walker visits files below the given paths.
type Walker struct {
	hidden   bool
	maxDepth int
	globs    []glob
	logger   *slog.Logger
}

// Option configures a Walker.
type Option func(*Walker)

// WithHidden includes files and directories whose name starts with a dot.
func WithHidden(yes bool) Option {
	return func(w *Walker) {
		w.hidden = yes
	}
}

// WithMaxDepth limits how deep directories are descended. Paths given
// explicitly are depth 0. Zero or less means no limit.
func WithMaxDepth(n int) Option {
	return func(w *Walker) {
		w.maxDepth = n
	}
}

// WithLogger sets the logger used for entries that cannot be read.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

type glob struct {
	pattern string
	negate  bool
}

// New creates a Walker. Globs are matched against file base names; a
// leading "!" excludes matching files. When any including glob is given,
// only files matching one of them are visited.
func New(globs []string, opts ...Option) (*Walker, error) {
	w := &Walker{logger: slog.Default()}
	for _, g := range globs {
		neg := strings.HasPrefix(g, "!")
		pattern := strings.TrimPrefix(g, "!")
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidGlob, g, err)
		}
		w.globs = append(w.globs, glob{pattern: pattern, negate: neg})
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Walk calls fn for every file found below paths, in lexical order per
// directory. Explicit file paths and Stdin are passed through without
// filtering. Entries that cannot be read are logged and skipped; an error
// from fn or ctx stops the walk.
func (w *Walker) Walk(ctx context.Context, paths []string, fn func(path string) error) error {
	for _, root := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if root == Stdin {
			if err := fn(root); err != nil {
				return err
			}
			continue
		}

		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			if err := fn(root); err != nil {
				return err
			}
			continue
		}
		if err := w.walkDir(ctx, root, fn); err != nil {
			return err
		}
	}
	return nil
}

// Collect returns every path Walk would visit.
func (w *Walker) Collect(ctx context.Context, paths []string) ([]string, error) {
	var out []string
	err := w.Walk(ctx, paths, func(path string) error {
		out = append(out, path)
		return nil
	})
	return out, err
}

func (w *Walker) walkDir(ctx context.Context, root string, fn func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			w.logger.Warn("skipping unreadable entry", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		depth := strings.Count(rel, string(filepath.Separator)) + 1

		if !w.hidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if w.maxDepth > 0 && depth >= w.maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !w.included(d.Name()) {
			return nil
		}
		return fn(path)
	})
}

// included applies the globs to a base name.
func (w *Walker) included(name string) bool {
	sawInclude := false
	matchedInclude := false
	for _, g := range w.globs {
		ok, _ := filepath.Match(g.pattern, name)
		if g.negate {
			if ok {
				return false
			}
			continue
		}
		sawInclude = true
		if ok {
			matchedInclude = true
		}
	}
	return !sawInclude || matchedInclude
}
