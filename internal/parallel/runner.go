package parallel

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riomyers/ripgrep/internal/printer"
	"github.com/riomyers/ripgrep/internal/search"
	"github.com/riomyers/ripgrep/internal/walk"
	"golang.org/x/sync/errgroup"
)

// WorkerFactory builds a worker printing to w. It is called once per
// goroutine.
type WorkerFactory func(w io.Writer) *search.Worker

// OpenFunc opens a source and returns the name to print for it.
type OpenFunc func(path string) (io.ReadCloser, string, error)

// Summary is the result of a run.
type Summary struct {
	// HasMatch is true when any source had a match.
	HasMatch bool

	// Searched is the number of sources searched successfully.
	Searched int

	// Errors is the number of sources that could not be searched.
	Errors int

	// Stats is the sum of every worker's running statistics, or nil when
	// the workers do not keep statistics.
	Stats *printer.Stats

	// Elapsed is the wall time of the run.
	Elapsed time.Duration
}

// Runner searches sources with a bounded number of workers.
// It uses errgroup to manage goroutines and respect the concurrency limit.
//
// Each goroutine builds its own search.Worker through the WorkerFactory,
// bound to a private buffer. After every source the buffer is copied to the
// shared output under a mutex, so the output of one file is never
// interleaved with another's.
//
// Design decision: workers print into buffers rather than straight to the
// shared output because:
//  1. A Worker is single-goroutine and must not share a printer
//  2. Holding the output lock for a whole search would serialize the run
type Runner struct {
	factory     WorkerFactory
	open        OpenFunc
	concurrency int
	stopOnMatch bool
	heading     bool
	logger      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency sets the number of concurrent workers.
// Default is the number of CPUs.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the logger used for source errors and progress.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithOpener replaces walk.Open.
func WithOpener(open OpenFunc) Option {
	return func(r *Runner) {
		if open != nil {
			r.open = open
		}
	}
}

// WithStopOnMatch ends the run as soon as any source matches. This is what
// quiet searches want.
func WithStopOnMatch(yes bool) Option {
	return func(r *Runner) {
		r.stopOnMatch = yes
	}
}

// WithHeading separates the output of consecutive sources with a blank line,
// the way heading mode groups files. The workers must be built with
// printer.WithDetachedHeadings so the line is not printed twice.
func WithHeading(yes bool) Option {
	return func(r *Runner) {
		r.heading = yes
	}
}

// New creates a Runner building workers with factory.
func New(factory WorkerFactory, opts ...Option) *Runner {
	r := &Runner{
		factory:     factory,
		open:        walk.Open,
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Concurrency returns the number of workers a run uses.
func (r *Runner) Concurrency() int {
	return r.concurrency
}

// Run searches every path and writes results to out.
//
// Paths are fed to the workers through a channel, so a slow file only
// holds up its own goroutine. The order of files in out is therefore not
// the order of paths. Source errors are logged and counted and the run
// goes on. A fatal error, such as a failed write to out, cancels the
// remaining searches and is returned together with the summary so far.
//
// With stop-on-match the first match cancels the run, and the cancellation
// it causes is not reported as an error.
func (r *Runner) Run(ctx context.Context, paths []string, out io.Writer) (Summary, error) {
	start := time.Now()
	r.logger.Debug("starting parallel search",
		"sources", len(paths),
		"concurrency", r.concurrency,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu      sync.Mutex
		summary Summary
		stopped atomic.Bool
		flushed bool // guarded by mu
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	jobs := make(chan string)
	go func() {
		defer close(jobs)
		for _, p := range paths {
			select {
			case jobs <- p:
			case <-gctx.Done():
				return
			}
		}
	}()

	for range r.concurrency {
		g.Go(func() error {
			var buf bytes.Buffer
			worker := r.factory(&buf)

			flush := func() error {
				mu.Lock()
				defer mu.Unlock()
				defer buf.Reset()
				if buf.Len() == 0 {
					return nil
				}
				if r.heading && flushed {
					if _, err := out.Write([]byte{'\n'}); err != nil {
						return &search.RenderError{Path: "output", Err: &printer.WriteError{Err: err}}
					}
				}
				flushed = true
				if _, err := out.Write(buf.Bytes()); err != nil {
					return &search.RenderError{Path: "output", Err: &printer.WriteError{Err: err}}
				}
				return nil
			}

			for path := range jobs {
				matched, err := r.searchOne(gctx, worker, path)
				if ferr := flush(); ferr != nil {
					return ferr
				}

				mu.Lock()
				switch {
				case err == nil:
					summary.Searched++
					summary.HasMatch = summary.HasMatch || matched
				case !search.IsFatal(err):
					summary.Errors++
				}
				mu.Unlock()

				if err != nil && search.IsFatal(err) {
					if stopped.Load() && errors.Is(err, context.Canceled) {
						break
					}
					return err
				}
				if err == nil && matched && r.stopOnMatch {
					stopped.Store(true)
					cancel()
				}
			}

			mu.Lock()
			if st := worker.Stats(); st != nil {
				if summary.Stats == nil {
					summary.Stats = printer.NewStats()
				}
				summary.Stats.Add(st)
			}
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	if stopped.Load() {
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	} else if err == nil {
		err = ctx.Err()
	}
	summary.Elapsed = time.Since(start)

	r.logger.Debug("parallel search complete",
		"searched", summary.Searched,
		"errors", summary.Errors,
		"elapsed", summary.Elapsed,
	)
	return summary, err
}

// searchOne opens and searches one source.
func (r *Runner) searchOne(ctx context.Context, worker *search.Worker, path string) (bool, error) {
	rc, label, err := r.open(path)
	if err != nil {
		r.logger.Warn("failed to open source", "path", path, "error", err)
		return false, &search.SourceError{Path: path, Err: err}
	}
	defer rc.Close()

	outcome, err := worker.Search(ctx, label, rc)
	if err != nil {
		if !search.IsFatal(err) {
			r.logger.Warn("search failed", "path", label, "error", err)
		}
		return false, err
	}
	return outcome.HasMatch, nil
}
