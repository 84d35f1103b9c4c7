package printer

import (
	"encoding/json"
	"fmt"
	"time"
)

// Stats aggregates counters over one or more searches. The zero value is an
// empty set of statistics ready to use.
type Stats struct {
	Elapsed           time.Duration
	Searches          uint64
	SearchesWithMatch uint64
	BytesSearched     uint64
	BytesPrinted      uint64
	MatchedLines      uint64
	Matches           uint64
}

// NewStats returns an empty Stats.
func NewStats() *Stats {
	return &Stats{}
}

// Add adds every counter of other into s.
func (s *Stats) Add(other *Stats) {
	if other == nil {
		return
	}
	s.Elapsed += other.Elapsed
	s.Searches += other.Searches
	s.SearchesWithMatch += other.SearchesWithMatch
	s.BytesSearched += other.BytesSearched
	s.BytesPrinted += other.BytesPrinted
	s.MatchedLines += other.MatchedLines
	s.Matches += other.Matches
}

// Clone returns a copy of s.
func (s *Stats) Clone() *Stats {
	c := *s
	return &c
}

// jsonDuration is the wire form of a duration.
type jsonDuration struct {
	Secs  uint64 `json:"secs"`
	Nanos uint32 `json:"nanos"`
	Human string `json:"human"`
}

func newJSONDuration(d time.Duration) jsonDuration {
	return jsonDuration{
		Secs:  uint64(d / time.Second),
		Nanos: uint32(d % time.Second),
		Human: fmt.Sprintf("%0.6fs", d.Seconds()),
	}
}

func (d jsonDuration) duration() time.Duration {
	return time.Duration(d.Secs)*time.Second + time.Duration(d.Nanos)
}

type jsonStats struct {
	Elapsed           jsonDuration `json:"elapsed"`
	Searches          uint64       `json:"searches"`
	SearchesWithMatch uint64       `json:"searches_with_match"`
	BytesSearched     uint64       `json:"bytes_searched"`
	BytesPrinted      uint64       `json:"bytes_printed"`
	MatchedLines      uint64       `json:"matched_lines"`
	Matches           uint64       `json:"matches"`
}

// MarshalJSON implements json.Marshaler.
func (s Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonStats{
		Elapsed:           newJSONDuration(s.Elapsed),
		Searches:          s.Searches,
		SearchesWithMatch: s.SearchesWithMatch,
		BytesSearched:     s.BytesSearched,
		BytesPrinted:      s.BytesPrinted,
		MatchedLines:      s.MatchedLines,
		Matches:           s.Matches,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var js jsonStats
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	*s = Stats{
		Elapsed:           js.Elapsed.duration(),
		Searches:          js.Searches,
		SearchesWithMatch: js.SearchesWithMatch,
		BytesSearched:     js.BytesSearched,
		BytesPrinted:      js.BytesPrinted,
		MatchedLines:      js.MatchedLines,
		Matches:           js.Matches,
	}
	return nil
}
