package history

import "time"

// Directions of a comparison.
const (
	DirectionMore      = "more"
	DirectionFewer     = "fewer"
	DirectionUnchanged = "unchanged"
)

// RunSummary is the part of a run shown in comparisons.
type RunSummary struct {
	ID                int64     `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	HasMatch          bool      `json:"has_match"`
	Searches          uint64    `json:"searches"`
	SearchesWithMatch uint64    `json:"searches_with_match"`
	MatchedLines      uint64    `json:"matched_lines"`
	Matches           uint64    `json:"matches"`
	BytesSearched     uint64    `json:"bytes_searched"`
}

func summarize(r *Run) RunSummary {
	return RunSummary{
		ID:                r.ID,
		Timestamp:         r.Timestamp,
		HasMatch:          r.HasMatch,
		Searches:          searches(r),
		SearchesWithMatch: r.Stats.SearchesWithMatch,
		MatchedLines:      r.Stats.MatchedLines,
		Matches:           r.Stats.Matches,
		BytesSearched:     r.Stats.BytesSearched,
	}
}

// searches prefers the stats counter and falls back to the run counter for
// runs recorded without stats.
func searches(r *Run) uint64 {
	if r.Stats.Searches > 0 {
		return r.Stats.Searches
	}
	return uint64(max(r.Searched, 0))
}

// Comparison describes how the results of a query changed between two runs.
type Comparison struct {
	Fingerprint string     `json:"fingerprint"`
	SameQuery   bool       `json:"same_query"`
	Previous    RunSummary `json:"previous"`
	Current     RunSummary `json:"current"`

	SearchesDelta          int64 `json:"searches_delta"`
	SearchesWithMatchDelta int64 `json:"searches_with_match_delta"`
	MatchedLinesDelta      int64 `json:"matched_lines_delta"`
	MatchesDelta           int64 `json:"matches_delta"`
	BytesSearchedDelta     int64 `json:"bytes_searched_delta"`

	// Direction is DirectionMore, DirectionFewer or DirectionUnchanged,
	// judged by the number of matches.
	Direction string `json:"direction"`
}

// Compare computes the changes from previous to current.
func Compare(previous, current *Run) *Comparison {
	prev, cur := summarize(previous), summarize(current)
	c := &Comparison{
		Fingerprint:            current.Fingerprint,
		SameQuery:              previous.Fingerprint == current.Fingerprint,
		Previous:               prev,
		Current:                cur,
		SearchesDelta:          delta(prev.Searches, cur.Searches),
		SearchesWithMatchDelta: delta(prev.SearchesWithMatch, cur.SearchesWithMatch),
		MatchedLinesDelta:      delta(prev.MatchedLines, cur.MatchedLines),
		MatchesDelta:           delta(prev.Matches, cur.Matches),
		BytesSearchedDelta:     delta(prev.BytesSearched, cur.BytesSearched),
	}

	switch {
	case c.MatchesDelta > 0:
		c.Direction = DirectionMore
	case c.MatchesDelta < 0:
		c.Direction = DirectionFewer
	default:
		c.Direction = DirectionUnchanged
	}
	return c
}

func delta(prev, cur uint64) int64 {
	return int64(cur) - int64(prev) //nolint:gosec // counters stay far below MaxInt64
}
