package history

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// WriteMarkdown renders runs as a Markdown table. When the newest run
// searched anything, a pie chart of its sources with and without matches
// follows.
func WriteMarkdown(w io.Writer, runs []*Run) error {
	md := markdown.NewMarkdown(w)
	md.H1("Search History")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No runs recorded.")
		return md.Build()
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.Timestamp.Local().Format(timeLayout),
			"`" + ShortFingerprint(r.Fingerprint) + "`",
			r.Mode,
			matchText(r.HasMatch),
			strconv.FormatUint(searches(r), 10),
			strconv.FormatUint(r.Stats.Matches, 10),
			strconv.Itoa(r.Errors),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Date", "Query", "Mode", "Matched", "Files", "Matches", "Errors"},
		Rows:   rows,
	})
	md.PlainText("")

	latest := runs[0]
	if n := searches(latest); n > 0 {
		with := latest.Stats.SearchesWithMatch
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Files in run "+strconv.FormatInt(latest.ID, 10)),
			piechart.WithShowData(true),
		)
		if with > 0 {
			chart.LabelAndIntValue("With matches", with)
		}
		if n > with {
			chart.LabelAndIntValue("Without matches", n-with)
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	return md.Build()
}

// WriteComparisonMarkdown renders a comparison as Markdown.
func WriteComparisonMarkdown(w io.Writer, c *Comparison) error {
	md := markdown.NewMarkdown(w)
	md.H1("Search Comparison")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Run", strconv.FormatInt(c.Previous.ID, 10), strconv.FormatInt(c.Current.ID, 10), ""},
			{"Date", c.Previous.Timestamp.Local().Format(timeLayout), c.Current.Timestamp.Local().Format(timeLayout), ""},
			countRow("Files searched", c.Previous.Searches, c.Current.Searches, c.SearchesDelta),
			countRow("Files with matches", c.Previous.SearchesWithMatch, c.Current.SearchesWithMatch, c.SearchesWithMatchDelta),
			countRow("Matched lines", c.Previous.MatchedLines, c.Current.MatchedLines, c.MatchedLinesDelta),
			countRow("Matches", c.Previous.Matches, c.Current.Matches, c.MatchesDelta),
			countRow("Bytes searched", c.Previous.BytesSearched, c.Current.BytesSearched, c.BytesSearchedDelta),
		},
	})
	md.PlainText("")

	if !c.SameQuery {
		md.Warningf("The two runs searched different queries.")
		md.PlainText("")
	}
	switch c.Direction {
	case DirectionMore:
		md.Importantf("%d more matches than before.", c.MatchesDelta)
	case DirectionFewer:
		md.Note(strconv.FormatInt(-c.MatchesDelta, 10) + " fewer matches than before.")
	default:
		md.Tip("The number of matches did not change.")
	}
	return md.Build()
}

func countRow(label string, prev, cur uint64, d int64) []string {
	return []string{label, strconv.FormatUint(prev, 10), strconv.FormatUint(cur, 10), FormatDelta(d)}
}

// FormatDelta renders a change with an explicit sign.
func FormatDelta(d int64) string {
	if d > 0 {
		return "+" + strconv.FormatInt(d, 10)
	}
	return strconv.FormatInt(d, 10)
}

func matchText(yes bool) string {
	if yes {
		return "yes"
	}
	return "no"
}
