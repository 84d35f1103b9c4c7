package config

import (
	"fmt"
	"maps"
	"slices"
)

// File represents the structure of the configuration file.
//
// Example:
//
//	defaults:
//	  smart_case: true
//	  heading: true
//	  threads: 4
//	types:
//	  web: ["*.html", "*.css", "*.js"]
type File struct {
	// Defaults apply to every search. Flags given on the command line win.
	Defaults Defaults `yaml:"defaults"`

	// Types maps a file type name to the globs selecting it. Entries here
	// extend or replace the built-in types.
	Types map[string][]string `yaml:"types"`
}

// Defaults holds the configurable defaults. Pointer fields distinguish
// "not set" from the zero value.
type Defaults struct {
	IgnoreCase  *bool    `yaml:"ignore_case,omitempty"`
	SmartCase   *bool    `yaml:"smart_case,omitempty"`
	LineNumber  *bool    `yaml:"line_number,omitempty"`
	Column      *bool    `yaml:"column,omitempty"`
	Heading     *bool    `yaml:"heading,omitempty"`
	Hidden      *bool    `yaml:"hidden,omitempty"`
	Stats       *bool    `yaml:"stats,omitempty"`
	SaveHistory *bool    `yaml:"save_history,omitempty"`
	Color       *string  `yaml:"color,omitempty"`
	Encoding    *string  `yaml:"encoding,omitempty"`
	Binary      *string  `yaml:"binary,omitempty"`
	Threads     *int     `yaml:"threads,omitempty"`
	MaxColumns  *int     `yaml:"max_columns,omitempty"`
	MaxDepth    *int     `yaml:"max_depth,omitempty"`
	Context     *int     `yaml:"context,omitempty"`
	Globs       []string `yaml:"globs,omitempty"`
}

// builtinTypes are the file types known without a configuration file.
var builtinTypes = map[string][]string{
	"go":       {"*.go"},
	"rust":     {"*.rs"},
	"py":       {"*.py", "*.pyi"},
	"js":       {"*.js", "*.mjs", "*.cjs", "*.jsx"},
	"ts":       {"*.ts", "*.tsx"},
	"c":        {"*.c", "*.h"},
	"markdown": {"*.md", "*.markdown"},
	"yaml":     {"*.yaml", "*.yml"},
	"json":     {"*.json"},
	"sh":       {"*.sh", "*.bash"},
	"txt":      {"*.txt"},
}

// ApplyDefaults copies configured defaults into cfg for every option the
// user did not set on the command line. changed reports whether a flag was
// set explicitly, by flag name.
func (f *File) ApplyDefaults(cfg *Config, changed func(flag string) bool) {
	if f == nil {
		return
	}
	d := f.Defaults

	setBool(&cfg.IgnoreCase, d.IgnoreCase, changed("ignore-case"))
	setBool(&cfg.SmartCase, d.SmartCase, changed("smart-case"))
	setBool(&cfg.LineNumber, d.LineNumber, changed("line-number") || changed("no-line-number"))
	setBool(&cfg.Column, d.Column, changed("column"))
	setBool(&cfg.Heading, d.Heading, changed("heading"))
	setBool(&cfg.Hidden, d.Hidden, changed("hidden"))
	setBool(&cfg.Stats, d.Stats, changed("stats"))
	setBool(&cfg.SaveHistory, d.SaveHistory, changed("save-history"))
	setString(&cfg.Color, d.Color, changed("color"))
	setString(&cfg.Encoding, d.Encoding, changed("encoding"))
	setString(&cfg.Binary, d.Binary, changed("binary"))
	setInt(&cfg.Threads, d.Threads, changed("threads"))
	setInt(&cfg.MaxColumns, d.MaxColumns, changed("max-columns"))
	setInt(&cfg.MaxDepth, d.MaxDepth, changed("max-depth"))
	setInt(&cfg.Context, d.Context, changed("context"))
	if len(d.Globs) > 0 && !changed("glob") {
		cfg.Globs = slices.Clone(d.Globs)
	}
}

// TypeGlobs returns the globs for the named file types, using the types of
// the file over the built-in ones. f may be nil.
func (f *File) TypeGlobs(names []string) ([]string, error) {
	types := maps.Clone(builtinTypes)
	if f != nil {
		maps.Copy(types, f.Types)
	}

	var globs []string
	for _, name := range names {
		g, ok := types[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
		}
		globs = append(globs, g...)
	}
	return globs, nil
}

// TypeNames returns the sorted names of all known file types.
func (f *File) TypeNames() []string {
	types := maps.Clone(builtinTypes)
	if f != nil {
		maps.Copy(types, f.Types)
	}
	return slices.Sorted(maps.Keys(types))
}

func setBool(dst *bool, src *bool, changed bool) {
	if src != nil && !changed {
		*dst = *src
	}
}

func setString(dst *string, src *string, changed bool) {
	if src != nil && !changed {
		*dst = *src
	}
}

func setInt(dst *int, src *int, changed bool) {
	if src != nil && !changed {
		*dst = *src
	}
}
