// Package parallel searches many sources concurrently.
//
// A Runner starts a fixed number of goroutines under an errgroup. Each
// goroutine builds one search.Worker that prints into its own buffer, so
// results of one source are never interleaved with another. After every
// source the buffer is flushed to the shared destination under a mutex.
// Statistics of all workers are reduced into one total when the run ends.
package parallel
