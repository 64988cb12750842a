package sentiment

import (
	"errors"
	"time"

	"deepsent/internal/types"
)

// DefaultMinArticlesPerDay is the minimum number of posts a day needs to get
// its own box in the distribution chart.
const DefaultMinArticlesPerDay = 3

// ErrEmptyInput is returned when there is nothing to summarize.
var ErrEmptyInput = errors.New("no posts data provided for distribution")

// SummarizeDistribution builds one box plot record per day. Days with fewer
// than minPerDay scores are left out, unless that would leave nothing, in
// which case every day is kept.
func SummarizeDistribution(items []types.ScoredItem, minPerDay int) ([]types.DayDistribution, error) {
	if len(items) == 0 {
		return nil, ErrEmptyInput
	}

	var all, kept []types.DayDistribution
	for _, g := range GroupByDay(items) {
		scores := g.Scores()
		if len(scores) == 0 {
			continue
		}
		d := summarizeDay(g.Date, scores)
		all = append(all, d)
		if len(scores) >= minPerDay {
			kept = append(kept, d)
		}
	}

	if len(kept) == 0 {
		return all, nil
	}
	return kept, nil
}

func summarizeDay(date string, scores []float64) types.DayDistribution {
	sorted := sortedCopy(scores)
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1

	d := types.DayDistribution{
		Date:       date,
		Label:      DateLabel(date),
		Values:     scores,
		Count:      len(scores),
		Q1:         q1,
		Median:     quantile(sorted, 0.5),
		Q3:         q3,
		LowerFence: q1 - 1.5*iqr,
		UpperFence: q3 + 1.5*iqr,
	}
	for _, v := range scores {
		if v < d.LowerFence || v > d.UpperFence {
			d.Outliers = append(d.Outliers, v)
		}
	}
	return d
}

// DateLabel turns "2025-01-15" into "Jan 15". Unparseable input is returned as is.
func DateLabel(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Jan 02")
}
