// Package matcher provides the pattern matching capability used by the searcher
// and the printers.
//
// A Matcher only answers two questions about a byte region: does it match, and
// where. Everything about how a source is split into regions belongs to the
// searcher package.
package matcher
