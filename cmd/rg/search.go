package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/riomyers/ripgrep/internal/config"
	"github.com/riomyers/ripgrep/internal/history"
	"github.com/riomyers/ripgrep/internal/log"
	"github.com/riomyers/ripgrep/internal/matcher"
	"github.com/riomyers/ripgrep/internal/parallel"
	"github.com/riomyers/ripgrep/internal/printer"
	"github.com/riomyers/ripgrep/internal/search"
	"github.com/riomyers/ripgrep/internal/searcher"
	"github.com/riomyers/ripgrep/internal/style"
	"github.com/riomyers/ripgrep/internal/transcode"
	"github.com/riomyers/ripgrep/internal/walk"
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [flags] PATTERN [PATH...]",
		Short: "Search paths for lines matching a pattern",
		Long: `Search reads every file below the given paths and reports lines matching
PATTERN. Without paths it searches the current directory, or standard input
when input is piped. Use "-" to name standard input explicitly.

Exit status is 0 if a line matched, 1 if nothing matched and 2 on error.

Examples:
  # Search the current directory
  rg search TODO

  # Several patterns, case-insensitive, with two lines of context
  rg search -i -C 2 -e panic -e fatal ./internal

  # Count matching lines per Go file
  rg search -c -t go 'func Test'

  # Stream results as JSON records
  rg search --json 'err != nil' .

  # Search a UTF-16 file
  rg search -E utf-16le needle notes.txt

Configuration file (.ripgrep.yaml) example:
  defaults:
    smart_case: true
    heading: true
  types:
    web: ["*.html", "*.css", "*.js"]`,
		Args: cobra.ArbitraryArgs,
		RunE: runSearchCmd,
	}

	f := cmd.Flags()

	// Matching
	f.StringArrayP("regexp", "e", nil, "A pattern to search for (repeatable); all arguments are then paths")
	f.BoolP("fixed-strings", "F", false, "Treat patterns as literal strings")
	f.BoolP("ignore-case", "i", false, "Search case-insensitively")
	f.BoolP("smart-case", "S", false, "Search case-insensitively unless a pattern has an uppercase letter")
	f.BoolP("word-regexp", "w", false, "Only match whole words")
	f.BoolP("line-regexp", "x", false, "Only match whole lines")
	f.BoolP("invert-match", "v", false, "Report lines that do not match")
	f.Int64P("max-count", "m", 0, "Stop each file after this many matching lines (0 = no limit)")

	// Context
	f.IntP("after-context", "A", 0, "Show this many lines after each match")
	f.IntP("before-context", "B", 0, "Show this many lines before each match")
	f.IntP("context", "C", 0, "Show this many lines before and after each match")

	// Output modes
	f.BoolP("count", "c", false, "Print the number of matching lines per file")
	f.Bool("count-matches", false, "Print the number of matches per file")
	f.BoolP("files-with-matches", "l", false, "Print only the paths of files with a match")
	f.Bool("files-without-match", false, "Print only the paths of files without a match")
	f.BoolP("quiet", "q", false, "Print nothing and stop at the first match")
	f.Bool("json", false, "Print results as JSON Lines records")
	f.Bool("stats", false, "Print aggregate statistics after the search")
	f.Bool("include-zero", false, "Print counts of zero with -c and --count-matches")

	// Presentation
	f.BoolP("line-number", "n", false, "Show line numbers (default when printing to a terminal)")
	f.BoolP("no-line-number", "N", false, "Never show line numbers")
	f.Bool("column", false, "Show the column of the first match (implies -n)")
	f.Bool("heading", false, "Group matches under a file heading (default when printing to a terminal)")
	f.BoolP("with-filename", "H", false, "Always print the path of each match")
	f.BoolP("no-filename", "I", false, "Never print the path of each match")
	f.BoolP("only-matching", "o", false, "Print only the matched parts of each line")
	f.IntP("max-columns", "M", 0, "Omit lines longer than this many bytes (0 = no limit)")
	f.BoolP("null", "0", false, "Terminate paths with a NUL byte")
	f.String("color", config.DefaultColor, "When to use color: auto, always or never")

	// Input
	f.StringP("encoding", "E", "auto", "Source encoding (WHATWG label such as latin1, sjis, utf-16le)")
	f.Bool("strict-encoding", false, "Fail sources with bytes invalid in the encoding")
	f.String("binary", config.DefaultBinary, "Binary files: quit, none or convert")

	// Walking
	f.Bool("hidden", false, "Search hidden files and directories")
	f.IntP("max-depth", "d", 0, "Descend at most this many directory levels (0 = no limit)")
	f.StringArrayP("glob", "g", nil, "Include files matching a glob, or exclude with a leading ! (repeatable)")
	f.StringArrayP("type", "t", nil, "Only search files of this type (repeatable)")
	f.Bool("type-list", false, "List the known file types and exit")
	f.IntP("threads", "j", config.DefaultThreads, "Number of concurrent workers (0 = one per CPU)")

	// Configuration and history
	f.String("config", "", "Configuration file path (default: .ripgrep.yaml in current or home directory)")
	f.Bool("save-history", false, "Record the run in the history database")
	f.String("db-dir", "", "Directory of the history database (default: XDG data directory)")

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if typeList, _ := cmd.Flags().GetBool("type-list"); typeList {
		return printTypes(cmd.OutOrStdout(), cfg.File)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.JSON)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runSearch(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
	if err != nil {
		return &exitError{code: exitTrouble, err: err}
	}
	return searchStatus(cfg, summary)
}

// searchStatus maps a finished search to its exit status. Source errors win
// over the match result, except that a quiet search that found a match
// succeeds.
func searchStatus(cfg *config.Config, summary parallel.Summary) error {
	switch {
	case summary.HasMatch && cfg.Quiet:
		return nil
	case summary.Errors > 0:
		return &exitError{code: exitTrouble}
	case summary.HasMatch:
		return nil
	default:
		return &exitError{code: exitNoMatch}
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// flagReader reads cobra flags and keeps the first error.
type flagReader struct {
	cmd *cobra.Command
	err error
}

func (r *flagReader) getBool(name string) bool {
	v, err := r.cmd.Flags().GetBool(name)
	r.keep(err)
	return v
}

func (r *flagReader) getInt(name string) int {
	v, err := r.cmd.Flags().GetInt(name)
	r.keep(err)
	return v
}

func (r *flagReader) getInt64(name string) int64 {
	v, err := r.cmd.Flags().GetInt64(name)
	r.keep(err)
	return v
}

func (r *flagReader) getString(name string) string {
	v, err := r.cmd.Flags().GetString(name)
	r.keep(err)
	return v
}

func (r *flagReader) getStrings(name string) []string {
	v, err := r.cmd.Flags().GetStringArray(name)
	r.keep(err)
	return v
}

func (r *flagReader) changed(name string) bool {
	return r.cmd.Flags().Changed(name)
}

func (r *flagReader) keep(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// buildConfig creates a Config from cobra command flags and the
// configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	r := &flagReader{cmd: cmd}

	if patterns := r.getStrings("regexp"); len(patterns) > 0 {
		cfg.Patterns = patterns
		cfg.Paths = args
	} else if len(args) > 0 {
		cfg.Patterns = args[:1]
		cfg.Paths = args[1:]
	}

	cfg.FixedStrings = r.getBool("fixed-strings")
	cfg.IgnoreCase = r.getBool("ignore-case")
	cfg.SmartCase = r.getBool("smart-case")
	cfg.WordRegexp = r.getBool("word-regexp")
	cfg.LineRegexp = r.getBool("line-regexp")
	cfg.InvertMatch = r.getBool("invert-match")
	cfg.MaxCount = r.getInt64("max-count")

	cfg.Context = r.getInt("context")
	if r.changed("before-context") {
		cfg.BeforeContext = r.getInt("before-context")
	}
	if r.changed("after-context") {
		cfg.AfterContext = r.getInt("after-context")
	}

	cfg.Count = r.getBool("count")
	cfg.CountMatches = r.getBool("count-matches")
	cfg.FilesWithMatches = r.getBool("files-with-matches")
	cfg.FilesWithoutMatch = r.getBool("files-without-match")
	cfg.Quiet = r.getBool("quiet")
	cfg.JSON = r.getBool("json")
	cfg.Stats = r.getBool("stats")
	cfg.IncludeZero = r.getBool("include-zero")

	// Line numbers and headings are on by default for people reading a terminal.
	tty := style.IsTerminal(cmd.OutOrStdout())
	cfg.LineNumber = tty
	if r.changed("line-number") {
		cfg.LineNumber = r.getBool("line-number")
	}
	if r.getBool("no-line-number") {
		cfg.LineNumber = false
	}
	cfg.Heading = tty
	if r.changed("heading") {
		cfg.Heading = r.getBool("heading")
	}
	cfg.Column = r.getBool("column")
	cfg.WithFilename = r.getBool("with-filename")
	cfg.NoFilename = r.getBool("no-filename")
	cfg.OnlyMatching = r.getBool("only-matching")
	cfg.MaxColumns = r.getInt("max-columns")
	cfg.Null = r.getBool("null")
	cfg.Color = r.getString("color")

	cfg.Encoding = r.getString("encoding")
	cfg.StrictEncoding = r.getBool("strict-encoding")
	cfg.Binary = r.getString("binary")

	cfg.Hidden = r.getBool("hidden")
	cfg.MaxDepth = r.getInt("max-depth")
	cfg.Globs = r.getStrings("glob")
	cfg.Types = r.getStrings("type")
	cfg.Threads = r.getInt("threads")

	cfg.SaveHistory = r.getBool("save-history")
	if dir := r.getString("db-dir"); dir != "" {
		cfg.DBDir = dir
	}
	cfg.ConfigFilePath = r.getString("config")
	cfg.Verbose = getVerboseFlag(cmd)
	if r.err != nil {
		return nil, r.err
	}

	// If the user named a config file it must exist; otherwise a missing
	// file just means no defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.File = file
		file.ApplyDefaults(cfg, r.changed)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	return cfg, nil
}

// setupLogger creates a logger that redacts secrets from log output.
// With --json the log lines are JSON too.
func setupLogger(w io.Writer, verbose, jsonOutput bool) *slog.Logger {
	if jsonOutput {
		return log.NewSecureJSONLogger(w, verbose)
	}
	return log.NewSecureLogger(w, verbose)
}

// printTypes writes every known file type with its globs.
func printTypes(w io.Writer, file *config.File) error {
	for _, name := range file.TypeNames() {
		globs, err := file.TypeGlobs([]string{name})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", name, strings.Join(globs, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// runSearch executes the search and prints any requested statistics.
func runSearch(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, logger *slog.Logger) (parallel.Summary, error) {
	logger.Debug("starting search",
		"patterns", cfg.Patterns,
		"paths", cfg.Paths,
		"mode", cfg.Mode(),
		"threads", cfg.Threads,
	)

	m, err := newMatcher(cfg)
	if err != nil {
		return parallel.Summary{}, err
	}

	enc, err := transcode.Lookup(cfg.Encoding)
	if err != nil {
		return parallel.Summary{}, fmt.Errorf("invalid encoding: %w", err)
	}
	logger.Debug("decoding input", "encoding", transcode.Name(enc), "strict", cfg.StrictEncoding)

	s, err := newSearcher(cfg)
	if err != nil {
		return parallel.Summary{}, err
	}

	paths := cfg.Paths
	if len(paths) == 0 {
		paths = []string{defaultPath(in)}
	}

	files, walkErrors, err := collectFiles(ctx, cfg, paths, logger)
	if err != nil {
		return parallel.Summary{}, err
	}

	choice, err := style.ParseColorChoice(cfg.Color)
	if err != nil {
		return parallel.Summary{}, err
	}
	palette := newPalette(out, choice)

	batch := cfg.Threads != 1 && len(files) > 1
	output, heading := detachHeadings(newOutput(cfg, showPath(cfg, paths)), batch)

	builder := search.NewBuilder().
		Encoding(enc).
		StrictEncoding(cfg.StrictEncoding).
		Output(output).
		Stats(cfg.Stats || cfg.JSON || cfg.SaveHistory).
		Logger(logger)

	factory := func(w io.Writer) *search.Worker {
		return builder.Build(s, m, style.NewWriter(w, palette))
	}
	open := newOpener(in)

	var summary parallel.Summary
	if batch {
		summary, err = runBatchSearch(ctx, cfg, files, factory, open, out, heading, logger)
	} else {
		summary, err = runSequentialSearch(ctx, cfg, files, factory, open, out, logger)
	}
	summary.Errors += walkErrors
	if err != nil {
		return summary, err
	}

	if err := writeStats(cfg, summary, out); err != nil {
		return summary, err
	}

	if cfg.SaveHistory {
		if err := saveRun(ctx, cfg, paths, summary, logger); err != nil {
			logger.Warn("failed to save run to history", "error", err)
		}
	}
	return summary, nil
}

// newMatcher compiles the patterns of cfg.
func newMatcher(cfg *config.Config) (matcher.Matcher, error) {
	return matcher.NewRegexMatcher(matcher.Options{
		Patterns:     cfg.Patterns,
		FixedStrings: cfg.FixedStrings,
		IgnoreCase:   cfg.IgnoreCase,
		SmartCase:    cfg.SmartCase,
		WordRegexp:   cfg.WordRegexp,
		LineRegexp:   cfg.LineRegexp,
	})
}

// newSearcher creates the line searcher. Summary modes never print
// context, so none is requested.
func newSearcher(cfg *config.Config) (*searcher.Searcher, error) {
	binary, err := searcher.ParseBinaryDetection(cfg.Binary)
	if err != nil {
		return nil, err
	}
	before, after := cfg.ContextLines()
	return searcher.New(
		searcher.WithLineNumbers(cfg.LineNumber || cfg.Column || cfg.JSON),
		searcher.WithBeforeContext(before),
		searcher.WithAfterContext(after),
		searcher.WithInvertMatch(cfg.InvertMatch),
		searcher.WithBinaryDetection(binary),
		searcher.WithMaxCount(uint64(cfg.MaxCount)), //nolint:gosec // validated non-negative
	), nil
}

// newOutput selects the printer for cfg.
func newOutput(cfg *config.Config, withPath bool) search.Output {
	if cfg.JSON {
		return search.JSONOutput{Builder: printer.NewJSONBuilder()}
	}
	kind := cfg.OutputKind()
	return search.StandardOutput{
		Kind: kind,
		Builder: printer.NewStandardBuilder(
			printer.WithHeading(cfg.Heading && withPath && kind == search.Classic),
			printer.WithPath(withPath),
			printer.WithLineNumber(cfg.LineNumber || cfg.Column),
			printer.WithColumn(cfg.Column),
			printer.WithOnlyMatching(cfg.OnlyMatching),
			printer.WithMaxColumns(cfg.MaxColumns),
			printer.WithNull(cfg.Null),
			printer.WithIncludeZero(cfg.IncludeZero),
		),
	}
}

// detachHeadings moves the blank line between heading groups from the
// printer to the runner when several workers share the output. It reports
// whether the runner has to print it.
func detachHeadings(output search.Output, batch bool) (search.Output, bool) {
	std, ok := output.(search.StandardOutput)
	if !ok || !batch || !std.Builder.Heading {
		return output, false
	}
	std.Builder.DetachedHeadings = true
	return std, true
}

// showPath reports whether paths are printed with results. A single file or
// standard input prints bare lines unless -H is given.
func showPath(cfg *config.Config, paths []string) bool {
	switch {
	case cfg.NoFilename:
		return false
	case cfg.WithFilename:
		return true
	case len(paths) != 1:
		return true
	case paths[0] == walk.Stdin:
		return false
	}
	info, err := os.Stat(paths[0])
	return err == nil && info.IsDir()
}

// defaultPath is the path searched when none is given: standard input when
// something is piped in, the current directory otherwise.
func defaultPath(in io.Reader) string {
	if in == nil {
		return "."
	}
	f, ok := in.(*os.File)
	if !ok {
		return walk.Stdin
	}
	info, err := f.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return "."
	}
	return walk.Stdin
}

// newPalette picks colors for out. Only real files can be terminals.
func newPalette(out io.Writer, choice style.ColorChoice) style.Palette {
	if f, ok := out.(*os.File); ok {
		return style.DetectPalette(f, choice)
	}
	return style.PlainPalette()
}

// newOpener opens sources, reading standard input from in.
func newOpener(in io.Reader) parallel.OpenFunc {
	return func(path string) (io.ReadCloser, string, error) {
		if path == walk.Stdin && in != nil {
			return io.NopCloser(in), walk.StdinLabel, nil
		}
		return walk.Open(path)
	}
}

// collectFiles expands paths into the files to search. Paths that cannot be
// read are reported and counted, and the walk goes on with the next one.
func collectFiles(ctx context.Context, cfg *config.Config, paths []string, logger *slog.Logger) ([]string, int, error) {
	typeGlobs, err := cfg.File.TypeGlobs(cfg.Types)
	if err != nil {
		return nil, 0, err
	}
	walker, err := walk.New(append(slices.Clone(cfg.Globs), typeGlobs...),
		walk.WithHidden(cfg.Hidden),
		walk.WithMaxDepth(cfg.MaxDepth),
		walk.WithLogger(logger),
	)
	if err != nil {
		return nil, 0, err
	}

	var (
		files  []string
		failed int
	)
	for _, p := range paths {
		found, err := walker.Collect(ctx, []string{p})
		if err != nil {
			if ctx.Err() != nil {
				return nil, failed, ctx.Err()
			}
			logger.Warn("failed to walk path", "path", p, "error", err)
			failed++
		}
		files = append(files, found...)
	}
	return files, failed, nil
}

// runSequentialSearch searches files one at a time with a single worker
// printing straight to out.
func runSequentialSearch(ctx context.Context, cfg *config.Config, files []string, factory parallel.WorkerFactory, open parallel.OpenFunc, out io.Writer, logger *slog.Logger) (parallel.Summary, error) {
	start := time.Now()
	worker := factory(out)

	var summary parallel.Summary
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(start)
			return summary, err
		}

		matched, err := searchSource(ctx, worker, open, path, logger)
		switch {
		case err == nil:
			summary.Searched++
			summary.HasMatch = summary.HasMatch || matched
		case search.IsFatal(err):
			summary.Elapsed = time.Since(start)
			return summary, err
		default:
			summary.Errors++
		}

		if matched && cfg.Quiet {
			break
		}
	}

	summary.Stats = worker.Stats()
	summary.Elapsed = time.Since(start)
	return summary, nil
}

// runBatchSearch searches files concurrently with a parallel.Runner.
func runBatchSearch(ctx context.Context, cfg *config.Config, files []string, factory parallel.WorkerFactory, open parallel.OpenFunc, out io.Writer, heading bool, logger *slog.Logger) (parallel.Summary, error) {
	runner := parallel.New(factory,
		parallel.WithConcurrency(cfg.Threads),
		parallel.WithHeading(heading),
		parallel.WithOpener(open),
		parallel.WithStopOnMatch(cfg.Quiet),
		parallel.WithLogger(logger),
	)
	logger.Debug("searching in parallel", "files", len(files), "concurrency", runner.Concurrency())
	return runner.Run(ctx, files, out)
}

// searchSource opens and searches one source.
func searchSource(ctx context.Context, worker *search.Worker, open parallel.OpenFunc, path string, logger *slog.Logger) (bool, error) {
	rc, label, err := open(path)
	if err != nil {
		logger.Warn("failed to open source", "path", path, "error", err)
		return false, &search.SourceError{Path: path, Err: err}
	}
	defer rc.Close()

	outcome, err := worker.Search(ctx, label, rc)
	if err != nil {
		if !search.IsFatal(err) {
			logger.Warn("search failed", "path", label, "error", err)
		}
		return false, err
	}
	return outcome.HasMatch, nil
}

// writeStats prints the aggregate statistics. JSON output always ends with
// a summary record.
func writeStats(cfg *config.Config, summary parallel.Summary, out io.Writer) error {
	stats := summary.Stats
	if stats == nil {
		stats = printer.NewStats()
	}

	var err error
	switch {
	case cfg.JSON:
		err = printer.WriteJSONSummary(out, stats, summary.Elapsed)
	case cfg.Stats && !cfg.Quiet:
		err = printer.WriteStats(out, stats, summary.Elapsed)
	}
	if err != nil {
		return &search.RenderError{Path: "stats", Err: err}
	}
	return nil
}

// saveRun records the run in the history database. Patterns that look
// like secrets are stored redacted; the fingerprint still tells them apart.
func saveRun(ctx context.Context, cfg *config.Config, paths []string, summary parallel.Summary, logger *slog.Logger) error {
	store, err := history.Open(cfg.DBDir, history.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	run := history.NewRun(cfg.Patterns, paths, cfg.Mode())
	run.Patterns = log.RedactAll(run.Patterns)
	run.HasMatch = summary.HasMatch
	run.Searched = summary.Searched
	run.Errors = summary.Errors
	if summary.Stats != nil {
		run.Stats = *summary.Stats
	}
	// Summed per-source elapsed time double counts parallel work.
	run.Stats.Elapsed = summary.Elapsed

	if err := store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	logger.Debug("run saved to history", "id", run.ID, "fingerprint", history.ShortFingerprint(run.Fingerprint))
	return nil
}
