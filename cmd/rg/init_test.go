package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/riomyers/ripgrep/internal/config"
)

// TestNewInitCmd tests the init command creation.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
		if flag.DefValue != config.DefaultConfigFile {
			t.Errorf("expected default %q, got %q", config.DefaultConfigFile, flag.DefValue)
		}
	})

	t.Run("has force flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("force")
		if flag == nil {
			t.Fatal("expected force flag")
		}
		if flag.Shorthand != "f" {
			t.Errorf("expected shorthand 'f', got %q", flag.Shorthand)
		}
	})
}

// TestRunInitCmd tests the init command execution.
func TestRunInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates a loadable configuration file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "config.yaml")
		res := execute(t, "", "init", "-o", path)
		if res.code != exitMatch {
			t.Fatalf("unexpected exit code %d: %s", res.code, res.stderr)
		}
		if !strings.Contains(res.stdout, path) {
			t.Errorf("expected path in output, got %q", res.stdout)
		}

		cf, err := config.LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Defaults.SmartCase == nil || !*cf.Defaults.SmartCase {
			t.Error("expected template to enable smart case")
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("keep"), 0o600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		res := execute(t, "", "init", "-o", path)
		if res.code != exitTrouble {
			t.Errorf("expected exit code %d, got %d", exitTrouble, res.code)
		}
		if !strings.Contains(res.stderr, "already exists") {
			t.Errorf("expected already exists error, got %q", res.stderr)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "keep" {
			t.Error("expected file to be left untouched")
		}
	})

	t.Run("overwrites with force", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		res := execute(t, "", "init", "-f", "-o", path)
		if res.code != exitMatch {
			t.Fatalf("unexpected exit code %d: %s", res.code, res.stderr)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(data), "defaults:") {
			t.Error("expected template content")
		}
	})
}
