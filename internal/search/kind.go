package search

import "fmt"

// OutputKind selects the reporting granularity of the standard output family.
type OutputKind int

const (
	// Classic prints every matching line, with context when requested.
	Classic OutputKind = iota
	// Count prints the number of matching lines per source.
	Count
	// CountMatches prints the number of matches per source.
	CountMatches
	// FilesWithMatches prints the path of every source with a match.
	FilesWithMatches
	// FilesWithoutMatch prints the path of every source without a match.
	FilesWithoutMatch
	// Quiet prints nothing.
	Quiet
)

var outputKindNames = map[OutputKind]string{
	Classic:           "classic",
	Count:             "count",
	CountMatches:      "count-matches",
	FilesWithMatches:  "files-with-matches",
	FilesWithoutMatch: "files-without-match",
	Quiet:             "quiet",
}

// String returns the name of the kind.
func (k OutputKind) String() string {
	if name, ok := outputKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("OutputKind(%d)", int(k))
}

// ParseOutputKind converts a name returned by String back into a kind.
// The empty string selects Classic.
func ParseOutputKind(s string) (OutputKind, error) {
	if s == "" {
		return Classic, nil
	}
	for k, name := range outputKindNames {
		if name == s {
			return k, nil
		}
	}
	return Classic, fmt.Errorf("%w: %q", ErrUnknownOutputKind, s)
}
