package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes follow the grep convention.
const (
	exitMatch   = 0
	exitNoMatch = 1
	exitTrouble = 2
)

// exitError carries the process exit code of a command. err is nil when
// nothing needs to be printed, such as for a search without matches.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// NewRootCmd creates the root command for rg.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rg",
		Short: "Search files for lines matching a pattern",
		Long: `rg recursively searches paths for lines matching regular expressions.

Results are printed as grep-style lines, per-file counts, file lists or a
stream of JSON records. Runs can be recorded in a local history database
and compared later.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits with its status.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:]))
}

// run executes cmd with args and returns the exit code.
func run(cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return exitMatch
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "rg: %v\n", exitErr.err)
		}
		return exitErr.code
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "rg: %v\n", err)
	return exitTrouble
}
