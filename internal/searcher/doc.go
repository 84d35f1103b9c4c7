// Package searcher walks a byte source line by line, asks a matcher about each
// line and reports what it finds to a Sink.
//
// The Searcher is the only component that knows how a source is segmented into
// lines, how context lines are selected and what happens when binary data is
// found. Sinks only react to the events they are given, and may stop a search
// early by returning false from any event method.
package searcher
