package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/riomyers/ripgrep/internal/config"
	"github.com/riomyers/ripgrep/internal/history"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command lists and compares runs recorded with --save-history.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List and compare recorded search runs",
		Long: `History shows search runs recorded with 'rg search --save-history'.

Runs of the same patterns over the same paths share a fingerprint. Comparing
two runs of one query shows how the number of matches changed, for example
how many TODOs are left since last week.

Examples:
  # List the latest runs
  rg history

  # List the runs of one query
  rg history --fingerprint 3f2a9c1b0d4e

  # Compare the latest two runs of the most recent query
  rg history --compare

  # Compare the latest run of a query with a specific run
  rg history --compare --with-run-id 5

  # Output as Markdown
  rg history --markdown`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Maximum number of runs to list (0 = all)")
	cmd.Flags().StringP("fingerprint", "f", "",
		"Only consider runs of the query with this fingerprint (a prefix is enough)")
	cmd.Flags().BoolP("compare", "c", false,
		"Compare the latest run of a query with an earlier one")
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare with a specific run by ID (use the list to see available IDs)")
	cmd.Flags().Bool("json", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format")
	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")

	return cmd
}

// historyOptions holds the flags of the history command.
type historyOptions struct {
	limit       int
	fingerprint string
	compare     bool
	withRunID   int64
	json        bool
	markdown    bool
	dbDir       string
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	opts, err := historyFlags(cmd)
	if err != nil {
		return err
	}
	if opts.json && opts.markdown {
		return errors.New("--json and --markdown cannot be used together")
	}
	if opts.withRunID != 0 && !opts.compare {
		return errors.New("--with-run-id requires --compare")
	}

	store, err := history.Open(opts.dbDir, history.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if opts.compare {
		return runComparison(ctx, store, opts, out)
	}
	return listHistory(ctx, store, opts, out)
}

func historyFlags(cmd *cobra.Command) (historyOptions, error) {
	r := &flagReader{cmd: cmd}
	opts := historyOptions{
		limit:       r.getInt("limit"),
		fingerprint: r.getString("fingerprint"),
		compare:     r.getBool("compare"),
		withRunID:   r.getInt64("with-run-id"),
		json:        r.getBool("json"),
		markdown:    r.getBool("markdown"),
		dbDir:       r.getString("db-dir"),
	}
	if opts.dbDir == "" {
		opts.dbDir = config.XDGDataDir()
	}
	return opts, r.err
}

// fingerprintLen is the length of a full hex SHA3-256 fingerprint.
const fingerprintLen = 64

// findRuns returns the runs matching the fingerprint prefix, newest first.
// Without a fingerprint it returns the latest runs of all queries.
func findRuns(ctx context.Context, store *history.Store, fingerprint string, limit int) ([]*history.Run, error) {
	if fingerprint == "" {
		return store.ListRuns(ctx, limit)
	}

	var matched []*history.Run
	if len(fingerprint) == fingerprintLen {
		runs, err := store.ListRunsByFingerprint(ctx, fingerprint)
		if err != nil {
			return nil, err
		}
		matched = runs
	} else {
		runs, err := store.ListRuns(ctx, 0)
		if err != nil {
			return nil, err
		}
		for _, run := range runs {
			if strings.HasPrefix(run.Fingerprint, fingerprint) {
				matched = append(matched, run)
			}
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// listHistory lists recorded runs.
func listHistory(ctx context.Context, store *history.Store, opts historyOptions, out io.Writer) error {
	runs, err := findRuns(ctx, store, opts.fingerprint, opts.limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	switch {
	case opts.json:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if runs == nil {
			runs = []*history.Run{}
		}
		return enc.Encode(runs)
	case opts.markdown:
		return history.WriteMarkdown(out, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs found in the history database.")
		fmt.Fprintln(out, "\nUse 'rg search --save-history' to record a run.")
		return nil
	}

	fmt.Fprintf(out, "Search history (%d runs):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-19s  %-12s  %-19s  %-8s  %s\n", "ID", "Date", "Fingerprint", "Mode", "Matches", "Patterns")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 90))
	for _, run := range runs {
		fmt.Fprintf(out, "  %-6d  %-19s  %-12s  %-19s  %-8d  %s\n",
			run.ID,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			history.ShortFingerprint(run.Fingerprint),
			run.Mode,
			run.Stats.Matches,
			strings.Join(run.Patterns, " | "),
		)
	}
	fmt.Fprintln(out, "\nUse 'rg history --compare -f <fingerprint>' to compare the latest two runs of a query.")
	return nil
}

// runComparison compares the latest run of a query with an earlier run.
func runComparison(ctx context.Context, store *history.Store, opts historyOptions, out io.Writer) error {
	fingerprint := opts.fingerprint
	if fingerprint == "" {
		latest, err := store.ListRuns(ctx, 1)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(latest) == 0 {
			return errors.New("no recorded runs to compare (use 'rg search --save-history')")
		}
		fingerprint = latest[0].Fingerprint
	}

	runs, err := findRuns(ctx, store, fingerprint, 0)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		return fmt.Errorf("no recorded runs for fingerprint %s", fingerprint)
	}
	current := runs[0]

	var previous *history.Run
	if opts.withRunID != 0 {
		previous, err = store.GetRun(ctx, opts.withRunID)
		if err != nil {
			return err
		}
	} else {
		for _, run := range runs[1:] {
			if run.Fingerprint == current.Fingerprint {
				previous = run
				break
			}
		}
		if previous == nil {
			return fmt.Errorf("need at least two runs of query %s to compare",
				history.ShortFingerprint(current.Fingerprint))
		}
	}

	c := history.Compare(previous, current)
	switch {
	case opts.json:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	case opts.markdown:
		return history.WriteComparisonMarkdown(out, c)
	}
	return writeComparisonText(out, c)
}

// writeComparisonText outputs the comparison in human-readable text format.
func writeComparisonText(out io.Writer, c *history.Comparison) error {
	fmt.Fprintf(out, "Run Comparison: %s\n", history.ShortFingerprint(c.Fingerprint))
	fmt.Fprintln(out, strings.Repeat("=", 60))

	if !c.SameQuery {
		fmt.Fprintln(out, "\nWarning: the runs searched different patterns or paths.")
	}
	fmt.Fprintf(out, "\nMatches: %s\n", formatDirection(c.Direction))

	fmt.Fprintf(out, "\nPrevious run: #%d %s\n", c.Previous.ID, c.Previous.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Current run:  #%d %s\n", c.Current.ID, c.Current.Timestamp.Local().Format("2006-01-02 15:04:05"))

	fmt.Fprintln(out, "\nSummary:")
	fmt.Fprintf(out, "  %-20s  %-12s  %-12s  %-10s\n", "", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))
	rows := []struct {
		label     string
		prev, cur uint64
		delta     int64
	}{
		{"Files searched", c.Previous.Searches, c.Current.Searches, c.SearchesDelta},
		{"Files with matches", c.Previous.SearchesWithMatch, c.Current.SearchesWithMatch, c.SearchesWithMatchDelta},
		{"Matched lines", c.Previous.MatchedLines, c.Current.MatchedLines, c.MatchedLinesDelta},
		{"Matches", c.Previous.Matches, c.Current.Matches, c.MatchesDelta},
		{"Bytes searched", c.Previous.BytesSearched, c.Current.BytesSearched, c.BytesSearchedDelta},
	}
	for _, row := range rows {
		fmt.Fprintf(out, "  %-20s  %-12d  %-12d  %-10s\n", row.label, row.prev, row.cur, history.FormatDelta(row.delta))
	}
	return nil
}

// formatDirection formats the change in matches for display.
func formatDirection(direction string) string {
	switch direction {
	case history.DirectionMore:
		return "MORE (matches increased)"
	case history.DirectionFewer:
		return "FEWER (matches decreased)"
	default:
		return "UNCHANGED"
	}
}
