package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/riomyers/ripgrep/internal/search"
)

// TestNewConfig verifies the default values of a new Config.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default color is auto", func(t *testing.T) {
		t.Parallel()
		if cfg.Color != "auto" {
			t.Errorf("expected Color to be 'auto', got '%s'", cfg.Color)
		}
	})

	t.Run("default binary mode is quit", func(t *testing.T) {
		t.Parallel()
		if cfg.Binary != "quit" {
			t.Errorf("expected Binary to be 'quit', got '%s'", cfg.Binary)
		}
	})

	t.Run("context sides are unset", func(t *testing.T) {
		t.Parallel()
		if cfg.BeforeContext != -1 || cfg.AfterContext != -1 {
			t.Errorf("expected unset context sides, got %d/%d", cfg.BeforeContext, cfg.AfterContext)
		}
	})

	t.Run("history database lives in the XDG data directory", func(t *testing.T) {
		t.Parallel()
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir to be %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})

	t.Run("default config is classic output", func(t *testing.T) {
		t.Parallel()
		if cfg.OutputKind() != search.Classic {
			t.Errorf("expected classic output, got %v", cfg.OutputKind())
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Patterns = []string{"foo"}
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"missing pattern", func(c *Config) { c.Patterns = nil }, ErrNoPattern},
		{"count with files-with-matches", func(c *Config) { c.Count = true; c.FilesWithMatches = true }, ErrConflictingOutputModes},
		{"quiet with count-matches", func(c *Config) { c.Quiet = true; c.CountMatches = true }, ErrConflictingOutputModes},
		{"json with count", func(c *Config) { c.JSON = true; c.Count = true }, ErrJSONWithSummaryMode},
		{"json with quiet", func(c *Config) { c.JSON = true; c.Quiet = true }, ErrJSONWithSummaryMode},
		{"negative context", func(c *Config) { c.Context = -2 }, ErrInvalidContext},
		{"negative after context", func(c *Config) { c.AfterContext = -3 }, ErrInvalidContext},
		{"negative threads", func(c *Config) { c.Threads = -1 }, ErrInvalidThreads},
		{"negative max count", func(c *Config) { c.MaxCount = -1 }, ErrInvalidMaxCount},
		{"negative max columns", func(c *Config) { c.MaxColumns = -1 }, ErrInvalidMaxColumns},
		{"negative max depth", func(c *Config) { c.MaxDepth = -1 }, ErrInvalidMaxDepth},
		{"unknown color", func(c *Config) { c.Color = "sometimes" }, ErrInvalidColor},
		{"unknown binary mode", func(c *Config) { c.Binary = "maybe" }, ErrInvalidBinaryMode},
	}

	for _, tt := range tests {
		t.Run(tt.name+" is rejected", func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("json alone is accepted", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.JSON = true
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

// TestConfigOutputKind tests the mapping from flags to output kinds.
func TestConfigOutputKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   search.OutputKind
		mode   string
	}{
		{"no flags", func(*Config) {}, search.Classic, "classic"},
		{"count", func(c *Config) { c.Count = true }, search.Count, "count"},
		{"count matches", func(c *Config) { c.CountMatches = true }, search.CountMatches, "count-matches"},
		{"files with matches", func(c *Config) { c.FilesWithMatches = true }, search.FilesWithMatches, "files-with-matches"},
		{"files without match", func(c *Config) { c.FilesWithoutMatch = true }, search.FilesWithoutMatch, "files-without-match"},
		{"quiet", func(c *Config) { c.Quiet = true }, search.Quiet, "quiet"},
		{"json", func(c *Config) { c.JSON = true }, search.Classic, "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name+" selects "+tt.mode, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)
			if got := cfg.OutputKind(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if got := cfg.Mode(); got != tt.mode {
				t.Errorf("expected mode %q, got %q", tt.mode, got)
			}
		})
	}
}

// TestConfigContextLines tests context resolution.
func TestConfigContextLines(t *testing.T) {
	t.Parallel()

	t.Run("context sets both sides", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Context = 2
		before, after := cfg.ContextLines()
		if before != 2 || after != 2 {
			t.Errorf("expected 2/2, got %d/%d", before, after)
		}
	})

	t.Run("explicit sides override context", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Context = 2
		cfg.AfterContext = 0
		before, after := cfg.ContextLines()
		if before != 2 || after != 0 {
			t.Errorf("expected 2/0, got %d/%d", before, after)
		}
	})

	t.Run("summary modes print no context", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Context = 3
		cfg.Count = true
		before, after := cfg.ContextLines()
		if before != 0 || after != 0 {
			t.Errorf("expected 0/0, got %d/%d", before, after)
		}
	})
}

// TestLoadConfigFile tests loading the YAML configuration file.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads defaults and types", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `defaults:
  smart_case: true
  threads: 4
  color: never
  globs: ["!*.min.js"]
types:
  web: ["*.html", "*.css"]
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Defaults.SmartCase == nil || !*cf.Defaults.SmartCase {
			t.Error("expected smart_case to be true")
		}
		if cf.Defaults.Threads == nil || *cf.Defaults.Threads != 4 {
			t.Errorf("expected threads 4, got %v", cf.Defaults.Threads)
		}
		if cf.Defaults.IgnoreCase != nil {
			t.Error("expected ignore_case to be unset")
		}
		if !slices.Equal(cf.Types["web"], []string{"*.html", "*.css"}) {
			t.Errorf("unexpected web type: %v", cf.Types["web"])
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml returns an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("defaults: [unclosed"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})

	t.Run("empty file yields an empty types map", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Types == nil {
			t.Error("expected non-nil types map")
		}
	})
}

// TestFindConfigFile tests explicit configuration paths.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path is returned", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}

// TestFileApplyDefaults tests merging file defaults under flags.
func TestFileApplyDefaults(t *testing.T) {
	t.Parallel()

	yes := true
	threads := 8
	color := "never"
	cf := &File{Defaults: Defaults{
		SmartCase: &yes,
		Heading:   &yes,
		Threads:   &threads,
		Color:     &color,
		Globs:     []string{"*.go"},
	}}

	t.Run("unset flags take file defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cf.ApplyDefaults(cfg, func(string) bool { return false })
		if !cfg.SmartCase || !cfg.Heading {
			t.Error("expected smart case and heading from the file")
		}
		if cfg.Threads != 8 {
			t.Errorf("expected 8 threads, got %d", cfg.Threads)
		}
		if cfg.Color != "never" {
			t.Errorf("expected color never, got %q", cfg.Color)
		}
		if !slices.Equal(cfg.Globs, []string{"*.go"}) {
			t.Errorf("unexpected globs: %v", cfg.Globs)
		}
	})

	t.Run("flags set on the command line win", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Threads = 2
		cf.ApplyDefaults(cfg, func(flag string) bool { return flag == "threads" || flag == "heading" })
		if cfg.Threads != 2 {
			t.Errorf("expected 2 threads, got %d", cfg.Threads)
		}
		if cfg.Heading {
			t.Error("expected heading to stay off")
		}
		if !cfg.SmartCase {
			t.Error("expected smart case from the file")
		}
	})

	t.Run("nil file is a no-op", func(t *testing.T) {
		t.Parallel()

		var nilFile *File
		cfg := NewConfig()
		nilFile.ApplyDefaults(cfg, func(string) bool { return false })
		if cfg.Threads != DefaultThreads {
			t.Errorf("expected default threads, got %d", cfg.Threads)
		}
	})
}

// TestFileTypeGlobs tests file type resolution.
func TestFileTypeGlobs(t *testing.T) {
	t.Parallel()

	t.Run("built-in types resolve without a file", func(t *testing.T) {
		t.Parallel()

		var cf *File
		globs, err := cf.TypeGlobs([]string{"go", "yaml"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(globs, []string{"*.go", "*.yaml", "*.yml"}) {
			t.Errorf("unexpected globs: %v", globs)
		}
	})

	t.Run("file types override built-in ones", func(t *testing.T) {
		t.Parallel()

		cf := &File{Types: map[string][]string{"go": {"*.go", "go.mod"}, "web": {"*.html"}}}
		globs, err := cf.TypeGlobs([]string{"go", "web"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(globs, []string{"*.go", "go.mod", "*.html"}) {
			t.Errorf("unexpected globs: %v", globs)
		}
		if !slices.Contains(cf.TypeNames(), "web") {
			t.Error("expected web in type names")
		}
	})

	t.Run("unknown type is an error", func(t *testing.T) {
		t.Parallel()

		var cf *File
		if _, err := cf.TypeGlobs([]string{"cobol"}); !errors.Is(err, ErrUnknownType) {
			t.Errorf("expected ErrUnknownType, got %v", err)
		}
	})
}
