package history

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/riomyers/ripgrep/internal/printer"
	"golang.org/x/crypto/sha3"
)

// Run is one recorded search run.
type Run struct {
	ID          int64         `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	Fingerprint string        `json:"fingerprint"`
	Patterns    []string      `json:"patterns"`
	Paths       []string      `json:"paths"`
	Mode        string        `json:"mode"`
	HasMatch    bool          `json:"has_match"`
	Searched    int           `json:"searched"`
	Errors      int           `json:"errors"`
	Stats       printer.Stats `json:"stats"`
}

// NewRun returns a run for the given query stamped with the current time.
func NewRun(patterns, paths []string, mode string) *Run {
	return &Run{
		Timestamp:   time.Now().UTC(),
		Fingerprint: Fingerprint(patterns, paths),
		Patterns:    append([]string(nil), patterns...),
		Paths:       append([]string(nil), paths...),
		Mode:        mode,
	}
}

// Fingerprint identifies a query: the hex SHA3-256 of its patterns and
// paths. Order matters.
func Fingerprint(patterns, paths []string) string {
	h := sha3.New256()
	h.Write([]byte(strings.Join(patterns, "\x00")))
	h.Write([]byte{0x01})
	h.Write([]byte(strings.Join(paths, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}

// ShortFingerprint returns the first 12 characters of a fingerprint.
func ShortFingerprint(fp string) string {
	if len(fp) <= 12 {
		return fp
	}
	return fp[:12]
}
