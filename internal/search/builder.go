package search

import (
	"log/slog"

	"github.com/riomyers/ripgrep/internal/matcher"
	"github.com/riomyers/ripgrep/internal/printer"
	"github.com/riomyers/ripgrep/internal/searcher"
	"github.com/riomyers/ripgrep/internal/style"
	"golang.org/x/text/encoding"
)

// Builder accumulates a Config and builds Workers from it. Setters modify
// the builder in place and return it for chaining.
//
// Build copies the Config, so a Builder can keep being changed after it has
// built Workers. The parallel runner relies on this: its factory calls
// Build once per goroutine and every Worker gets the same configuration.
type Builder struct {
	cfg    Config
	logger *slog.Logger
}

// NewBuilder returns a builder holding DefaultConfig.
func NewBuilder() *Builder {
	return &Builder{
		cfg:    DefaultConfig(),
		logger: slog.Default(),
	}
}

// Encoding forces transcoding from enc. Nil clears it.
func (b *Builder) Encoding(enc encoding.Encoding) *Builder {
	b.cfg.Encoding = enc
	return b
}

// StrictEncoding makes invalid input in the forced encoding an error.
func (b *Builder) StrictEncoding(yes bool) *Builder {
	b.cfg.StrictEncoding = yes
	return b
}

// Output replaces the output policy. Nil restores DefaultOutput.
func (b *Builder) Output(out Output) *Builder {
	if out == nil {
		out = DefaultOutput()
	}
	b.cfg.Output = out
	return b
}

// Stats toggles running statistics for workers built afterwards.
func (b *Builder) Stats(yes bool) *Builder {
	b.cfg.Stats = yes
	return b
}

// Logger sets the logger handed to built workers.
func (b *Builder) Logger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Config returns a copy of the current configuration.
func (b *Builder) Config() Config {
	return b.cfg
}

// Build creates a Worker that searches with s and m and prints to w.
// The worker keeps a copy of the configuration, so later changes to the
// builder do not affect it.
func (b *Builder) Build(s *searcher.Searcher, m matcher.Matcher, w style.Writer) *Worker {
	cfg := b.cfg
	worker := &Worker{
		cfg:      cfg,
		searcher: s,
		matcher:  m,
		writer:   newWriter(cfg.Output, w),
		logger:   b.logger,
	}
	if cfg.Stats {
		worker.stats = printer.NewStats()
	}
	return worker
}
