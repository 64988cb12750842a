package market

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Bar is one daily OHLCV candle.
type Bar struct {
	Date   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// ErrNoHistory is returned when the chart API has no bars for a ticker.
var ErrNoHistory = errors.New("no price history")

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				LongName  string `json:"longName"`
				ShortName string `json:"shortName"`
				Currency  string `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History returns the daily bars of ticker over rng (a Periods range value),
// oldest first. Bars with missing fields are dropped.
func (c *Client) History(ctx context.Context, ticker, rng string) ([]Bar, error) {
	endpoint := c.historyBaseURL + "/v8/finance/chart/" + url.PathEscape(ticker)
	query := url.Values{
		"range":    {rng},
		"interval": {"1d"},
	}

	var resp chartResponse
	if err := c.http.GetJSON(ctx, endpoint, query, &resp); err != nil {
		return nil, fmt.Errorf("fetch %s history: %w", ticker, err)
	}
	if e := resp.Chart.Error; e != nil {
		return nil, fmt.Errorf("fetch %s history: %s: %s", ticker, e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNoHistory)
	}

	res := resp.Chart.Result[0]
	name := res.Meta.LongName
	if name == "" {
		name = res.Meta.ShortName
	}
	c.rememberName(ticker, name)

	q := res.Indicators.Quote[0]
	bars := make([]Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		o, h, l, cl, v := at(q.Open, i), at(q.High, i), at(q.Low, i), at(q.Close, i), at(q.Volume, i)
		if o == nil || h == nil || l == nil || cl == nil {
			continue
		}
		bar := Bar{
			Date:  time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Open:  *o,
			High:  *h,
			Low:   *l,
			Close: *cl,
		}
		if v != nil {
			bar.Volume = *v
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNoHistory)
	}
	return bars, nil
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}
