package market

// Period is a selectable price history window.
type Period struct {
	Label string
	Range string // chart API range value
}

// Periods in display order.
var Periods = []Period{
	{Label: "1 Month", Range: "1mo"},
	{Label: "3 Months", Range: "3mo"},
	{Label: "6 Months", Range: "6mo"},
	{Label: "1 Year", Range: "1y"},
}

// LookupPeriod finds a period by label or range value.
func LookupPeriod(s string) (Period, bool) {
	for _, p := range Periods {
		if p.Label == s || p.Range == s {
			return p, true
		}
	}
	return Period{}, false
}
