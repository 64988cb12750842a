package sentiment

import (
	"sort"

	"deepsent/internal/types"
)

// DailyGroup holds the items that share one canonical day.
type DailyGroup struct {
	Date  string
	Items []types.ScoredItem
}

// Scores returns the sentiment scores of the scored items in the group.
func (g DailyGroup) Scores() []float64 {
	scores := make([]float64, 0, len(g.Items))
	for _, it := range g.Items {
		if v, ok := it.Score(); ok {
			scores = append(scores, v)
		}
	}
	return scores
}

// GroupByDay groups items by canonical day, ascending. Items whose day cannot
// be resolved are dropped; order within a day follows the input.
func GroupByDay(items []types.ScoredItem) []DailyGroup {
	return groupBy(items, ResolveDate)
}

func groupBy(items []types.ScoredItem, dateOf func(types.ScoredItem) string) []DailyGroup {
	byDate := make(map[string][]types.ScoredItem)
	for _, it := range items {
		d := dateOf(it)
		if d == UnknownDate || d == "" {
			continue
		}
		byDate[d] = append(byDate[d], it)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	groups := make([]DailyGroup, 0, len(dates))
	for _, d := range dates {
		groups = append(groups, DailyGroup{Date: d, Items: byDate[d]})
	}
	return groups
}
