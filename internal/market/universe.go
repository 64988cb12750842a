package market

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"deepsent/internal/logger"
)

// FallbackTickers is served when the constituents page cannot be read.
var FallbackTickers = []string{
	"AAPL", "MSFT", "NVDA", "GOOGL", "AMZN", "META", "AVGO", "GOOG", "TSLA", "LLY",
	"JPM", "UNH", "XOM", "V", "MA", "PG", "JNJ", "HD", "COST", "MRK", "ABBV", "CRM",
	"NFLX", "BAC", "AMD", "CVX", "KO", "ADBE", "PEP", "TMO", "LIN", "WMT", "ACN",
	"CSCO", "MCD", "ABT", "TXN", "QCOM", "INTU", "AMGN", "VZ", "PFE", "IBM", "CMCSA",
	"DIS", "NOW", "RTX", "SPGI", "UNP", "ISRG", "GE", "CAT", "BKNG", "UBER", "GS",
	"NEE", "PM", "MS", "LOW", "BLK", "HON", "SYK", "ELV", "TJX", "VRTX", "BSX", "LRCX",
	"REGN", "ETN", "PLD", "MDT", "MU", "PANW", "ADP", "KLAC", "LMT", "CB", "ADI", "DE",
	"MMC", "ANET", "SCHW", "FI", "BX", "MDLZ", "TMUS", "AMT", "SO", "BMY", "MO", "GILD",
	"CL", "ICE", "CME", "DUK", "ZTS", "SHW", "TT", "MCO", "CVS", "BN", "EOG", "ITW",
	"FCX", "TGT", "BDX", "CSX", "HCA", "EMR", "FDX", "NOC",
}

var errNoTickerTable = errors.New("no table with a Ticker column")

// Universe returns the sorted Nasdaq-100 tickers. The first successful scrape
// is cached; any failure yields FallbackTickers.
func (c *Client) Universe(ctx context.Context) []string {
	c.mu.RLock()
	cached := c.universe
	c.mu.RUnlock()
	if cached != nil {
		return cached
	}

	tickers, err := c.scrapeUniverse(ctx)
	if err != nil {
		logger.Warn(ctx, "Using fallback ticker list", "error", err.Error(), "tickers", len(FallbackTickers))
		out := make([]string, len(FallbackTickers))
		copy(out, FallbackTickers)
		return out
	}

	c.mu.Lock()
	c.universe = tickers
	c.mu.Unlock()
	logger.Info(ctx, "Ticker universe loaded", "tickers", len(tickers))
	return tickers
}

func (c *Client) scrapeUniverse(ctx context.Context) ([]string, error) {
	resp, err := c.pages.Get(ctx, c.universeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch constituents: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse constituents: %w", err)
	}
	return parseTickerTable(doc)
}

// parseTickerTable reads the first table that has a "Ticker" or "Symbol"
// header column. Class shares such as BRK.B become BRK-B.
func parseTickerTable(doc *goquery.Document) ([]string, error) {
	var tickers []string
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		col := -1
		table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
			h := strings.TrimSpace(th.Text())
			if col < 0 && (strings.EqualFold(h, "Ticker") || strings.EqualFold(h, "Symbol")) {
				col = i
			}
		})
		if col < 0 {
			return true
		}

		seen := make(map[string]bool)
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cell := tr.Find("td").Eq(col)
			t := strings.ToUpper(strings.TrimSpace(cell.Text()))
			if t == "" || seen[t] {
				return
			}
			seen[t] = true
			tickers = append(tickers, strings.ReplaceAll(t, ".", "-"))
		})
		return len(tickers) == 0
	})

	if len(tickers) == 0 {
		return nil, errNoTickerTable
	}
	sort.Strings(tickers)
	return tickers, nil
}
