// Package printer renders search events for people and for programs.
//
// This package contains two printer families:
//   - Standard: the classic grep-like format, plus the one-line count and
//     path summaries used by the summary output kinds
//   - JSON: one JSON Lines record per event, suitable for tool integration
//
// Both families hand out per-source sinks that implement searcher.Sink and
// keep per-search Stats. Every write goes through a counting writer so the
// number of bytes printed is always known, and write failures are wrapped in
// WriteError so callers can tell them apart from search failures.
package printer
