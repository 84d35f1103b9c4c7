// Package main provides the entry point for the rg CLI.
//
// rg searches files for lines matching regular expressions and reports them
// as grep-style lines, counts, file lists or JSON records.
//
// Usage:
//
//	rg search PATTERN [PATH...]
//	rg search -e PATTERN -e PATTERN [PATH...]
//	rg history
//
// See --help for all available options.
package main

// main is the entry point for rg.
func main() {
	Execute()
}
