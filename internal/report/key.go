package report

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Key identifies one report: ticker, inclusive date range and per-day limit.
type Key struct {
	Ticker     string
	StartDate  string
	EndDate    string
	DailyLimit int
}

// NewKey normalizes the ticker to upper case and the dates to YYYY-MM-DD.
func NewKey(ticker string, start, end time.Time, dailyLimit int) Key {
	return Key{
		Ticker:     strings.ToUpper(strings.TrimSpace(ticker)),
		StartDate:  start.Format(dateLayout),
		EndDate:    end.Format(dateLayout),
		DailyLimit: dailyLimit,
	}
}

// String is the session map key, report_{ticker}_{start}_{end}_{limit}.
func (k Key) String() string {
	return fmt.Sprintf("report_%s_%s_%s_%d", k.Ticker, k.StartDate, k.EndDate, k.DailyLimit)
}
