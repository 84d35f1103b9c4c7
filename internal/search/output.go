package search

import (
	"github.com/riomyers/ripgrep/internal/printer"
	"golang.org/x/text/encoding"
)

// Output selects the printer family. It is either a StandardOutput or a
// JSONOutput.
type Output interface {
	isOutput()
}

// StandardOutput prints human readable results of the given kind.
type StandardOutput struct {
	Builder printer.StandardBuilder
	Kind    OutputKind
}

func (StandardOutput) isOutput() {}

// JSONOutput prints one JSON record per event. It always reports every
// match, so it has no kind.
type JSONOutput struct {
	Builder printer.JSONBuilder
}

func (JSONOutput) isOutput() {}

// DefaultOutput returns classic standard output.
func DefaultOutput() Output {
	return StandardOutput{Builder: printer.NewStandardBuilder(), Kind: Classic}
}

// Config is the policy captured by a Worker when it is built.
type Config struct {
	// Encoding forces transcoding of every source. Nil leaves bytes alone
	// apart from BOM sniffing.
	Encoding encoding.Encoding

	// StrictEncoding fails the search at the first byte sequence that is
	// invalid in Encoding instead of substituting U+FFFD.
	StrictEncoding bool

	// Output selects the printer family and kind.
	Output Output

	// Stats enables running statistics on the Worker.
	Stats bool
}

// DefaultConfig returns the configuration of a fresh Builder.
func DefaultConfig() Config {
	return Config{Output: DefaultOutput()}
}
