// Package sentiment turns collected, scored posts into per-day aggregates:
// canonical day keys, daily groups, day-over-day anomalies and box plot
// distributions.
package sentiment

import (
	"fmt"
	"strings"
	"time"

	"deepsent/internal/types"
)

// UnknownDate is the date key of items whose timestamp could not be parsed.
const UnknownDate = "unknown"

const dateLayout = "2006-01-02"

// timestampLayout is one accepted input format. dateOnly layouts are matched
// against the first 10 characters of the input.
type timestampLayout struct {
	layout   string
	dateOnly bool
}

var timestampLayouts = []timestampLayout{
	{layout: dateLayout, dateOnly: true},
	{layout: "2006-01-02 15:04:05"},
	{layout: "20060102T150405"},
}

// Normalize converts a timestamp into its canonical YYYY-MM-DD key, or
// UnknownDate when raw is empty or unparseable.
func Normalize(raw any) string {
	switch v := raw.(type) {
	case nil:
		return UnknownDate
	case time.Time:
		if v.IsZero() {
			return UnknownDate
		}
		return v.Format(dateLayout)
	case *time.Time:
		if v == nil || v.IsZero() {
			return UnknownDate
		}
		return v.Format(dateLayout)
	case string:
		return normalizeString(v)
	case fmt.Stringer:
		return normalizeString(v.String())
	default:
		return UnknownDate
	}
}

func normalizeString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownDate
	}
	for _, l := range timestampLayouts {
		in := s
		if l.dateOnly && len(in) > 10 {
			in = in[:10]
		}
		if t, err := time.Parse(l.layout, in); err == nil {
			return t.Format(dateLayout)
		}
	}
	return UnknownDate
}

// ResolveDate returns the canonical day of an item. A precomputed DateStr
// wins; otherwise PublishedAt, then the raw TimePublished string.
func ResolveDate(item types.ScoredItem) string {
	if item.DateStr != "" {
		return Normalize(item.DateStr)
	}
	if !item.PublishedAt.IsZero() {
		return Normalize(item.PublishedAt)
	}
	return Normalize(item.TimePublished)
}
