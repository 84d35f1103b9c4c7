package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoPattern is returned when no pattern was given.
	ErrNoPattern = errors.New("no pattern specified: provide a PATTERN argument or use -e")

	// ErrConflictingOutputModes is returned when more than one of --count,
	// --count-matches, --files-with-matches, --files-without-match and
	// --quiet is set.
	ErrConflictingOutputModes = errors.New("conflicting output modes: only one of -c, --count-matches, -l, --files-without-match and -q can be used")

	// ErrJSONWithSummaryMode is returned when --json is combined with a
	// summary mode. JSON output always reports every match.
	ErrJSONWithSummaryMode = errors.New("conflicting output modes: --json cannot be combined with counts, file lists or --quiet")

	// ErrInvalidContext is returned for negative context sizes.
	ErrInvalidContext = errors.New("invalid context: must be non-negative")

	// ErrInvalidThreads is returned for a negative thread count.
	ErrInvalidThreads = errors.New("invalid threads: must be non-negative")

	// ErrInvalidMaxCount is returned for a negative --max-count.
	ErrInvalidMaxCount = errors.New("invalid max count: must be non-negative")

	// ErrInvalidMaxColumns is returned for a negative --max-columns.
	ErrInvalidMaxColumns = errors.New("invalid max columns: must be non-negative")

	// ErrInvalidMaxDepth is returned for a negative --max-depth.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidColor is returned for an unknown --color value.
	ErrInvalidColor = errors.New("invalid color: must be auto, always or never")

	// ErrInvalidBinaryMode is returned for an unknown --binary value.
	ErrInvalidBinaryMode = errors.New("invalid binary mode: must be quit, none or convert")
)

// ErrUnknownType is returned for a --type name that is neither built in nor
// defined in the configuration file.
var ErrUnknownType = errors.New("unknown file type")
