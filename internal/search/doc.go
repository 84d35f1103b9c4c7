// Package search runs one pattern search over one source and reports the
// result according to the configured output policy.
//
// A Builder collects the policy (encoding, output family and kind, stats)
// and builds Workers. Each Worker owns a searcher, a matcher and a writer
// bound to one destination, and keeps the running statistics of every
// search it performed. Workers are not safe for concurrent use; parallel
// searches use one Worker per goroutine and reduce their statistics
// afterwards.
package search
