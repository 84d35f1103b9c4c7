package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/riomyers/ripgrep/internal/search"
	"github.com/riomyers/ripgrep/internal/searcher"
	"github.com/riomyers/ripgrep/internal/style"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "ripgrep"

	// DefaultColor enables color only when writing to a terminal.
	DefaultColor = "auto"

	// DefaultBinary stops searching a file at the first NUL byte, which is
	// what grep users expect for binary files found while walking.
	DefaultBinary = "quit"

	// DefaultThreads of 0 means one worker per CPU.
	DefaultThreads = 0

	// DefaultHistoryLimit is how many runs "history" lists.
	DefaultHistoryLimit = 20
)

// Config holds every option of a search run. It is populated from flags
// and the configuration file and passed down explicitly.
type Config struct {
	// Patterns are the regular expressions (or literals with FixedStrings)
	// to search for. A line matches when any pattern matches.
	Patterns []string

	// Paths are the files and directories to search. "-" is stdin.
	Paths []string

	// Matcher options.
	FixedStrings bool
	IgnoreCase   bool
	SmartCase    bool
	WordRegexp   bool
	LineRegexp   bool
	InvertMatch  bool

	// Context lines. Context sets both sides unless a side is set explicitly
	// (a negative side means unset).
	BeforeContext int
	AfterContext  int
	Context       int

	// MaxCount stops each file after this many matching lines. 0 = no limit.
	MaxCount int64

	// Binary is the binary detection mode: quit, none (text) or convert.
	Binary string

	// Presentation of classic output.
	LineNumber   bool
	Column       bool
	Heading      bool
	WithFilename bool
	NoFilename   bool
	OnlyMatching bool
	MaxColumns   int
	Null         bool
	Color        string

	// Output modes. At most one of the summary modes may be set, and none of
	// them together with JSON.
	Count             bool
	CountMatches      bool
	FilesWithMatches  bool
	FilesWithoutMatch bool
	Quiet             bool
	JSON              bool
	IncludeZero       bool

	// Stats prints aggregate statistics after the run.
	Stats bool

	// Encoding forces a source encoding by WHATWG label. Empty or "auto"
	// only sniffs byte order marks.
	Encoding string

	// StrictEncoding fails sources that are invalid in Encoding.
	StrictEncoding bool

	// Walking.
	Hidden   bool
	MaxDepth int
	Globs    []string
	Types    []string

	// Threads is the number of concurrent workers. 0 = one per CPU, 1 runs
	// sequentially.
	Threads int

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path of the configuration file. If empty, the
	// file is looked up in the current, home and XDG config directories.
	ConfigFilePath string

	// File is the loaded configuration file, if any.
	File *File

	// SaveHistory records the run in the history database.
	SaveHistory bool

	// DBDir is the directory of the history database.
	// Defaults to the XDG data directory.
	DBDir string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		BeforeContext: -1,
		AfterContext:  -1,
		Binary:        DefaultBinary,
		Color:         DefaultColor,
		Threads:       DefaultThreads,
		DBDir:         XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory of the application.
// On Linux: ~/.local/share/ripgrep
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory of the application.
// On Linux: ~/.config/ripgrep
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Patterns) == 0 {
		return ErrNoPattern
	}

	modes := 0
	for _, on := range []bool{c.Count, c.CountMatches, c.FilesWithMatches, c.FilesWithoutMatch, c.Quiet} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return ErrConflictingOutputModes
	}
	if c.JSON && modes > 0 {
		return ErrJSONWithSummaryMode
	}

	if c.Context < 0 || c.BeforeContext < -1 || c.AfterContext < -1 {
		return ErrInvalidContext
	}
	if c.Threads < 0 {
		return ErrInvalidThreads
	}
	if c.MaxCount < 0 {
		return ErrInvalidMaxCount
	}
	if c.MaxColumns < 0 {
		return ErrInvalidMaxColumns
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if _, err := style.ParseColorChoice(c.Color); err != nil {
		return ErrInvalidColor
	}
	if _, err := searcher.ParseBinaryDetection(c.Binary); err != nil {
		return ErrInvalidBinaryMode
	}
	return nil
}

// OutputKind returns the reporting granularity selected by the flags.
func (c *Config) OutputKind() search.OutputKind {
	switch {
	case c.Quiet:
		return search.Quiet
	case c.FilesWithMatches:
		return search.FilesWithMatches
	case c.FilesWithoutMatch:
		return search.FilesWithoutMatch
	case c.CountMatches:
		return search.CountMatches
	case c.Count:
		return search.Count
	default:
		return search.Classic
	}
}

// Mode names the output mode for logs and history.
func (c *Config) Mode() string {
	if c.JSON {
		return "json"
	}
	return c.OutputKind().String()
}

// ContextLines resolves the number of before and after context lines.
// Summary modes never print context.
func (c *Config) ContextLines() (before, after int) {
	if c.OutputKind() != search.Classic && !c.JSON {
		return 0, 0
	}
	before, after = c.Context, c.Context
	if c.BeforeContext >= 0 {
		before = c.BeforeContext
	}
	if c.AfterContext >= 0 {
		after = c.AfterContext
	}
	return before, after
}
