package market

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"deepsent/internal/logger"
	"deepsent/internal/types"
)

// Company fundamental names in display order.
const (
	GrossMargin = "Gross Margin (%)"
	ROE         = "ROE (%)"
	ForwardPE   = "Forward PE"
	PBRatio     = "PB Ratio"
	PSRatio     = "PS Ratio"
	CompanyName = "Company Name"
	Sector      = "Sector"
)

type overviewResponse struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Sector               string `json:"Sector"`
	ForwardPE            string `json:"ForwardPE"`
	PriceToBookRatio     string `json:"PriceToBookRatio"`
	PriceToSalesRatioTTM string `json:"PriceToSalesRatioTTM"`
	ReturnOnEquityTTM    string `json:"ReturnOnEquityTTM"`
	GrossProfitTTM       string `json:"GrossProfitTTM"`
	RevenueTTM           string `json:"RevenueTTM"`
	Information          string `json:"Information"`
	Note                 string `json:"Note"`
}

// Fundamentals gathers the technical indicators over one year of daily
// history and, when an overview key is configured, the company ratios.
// Any part that cannot be fetched is reported as NA; it never fails.
func (c *Client) Fundamentals(ctx context.Context, ticker string) *types.Fundamentals {
	bars, err := c.History(ctx, ticker, "1y")
	if err != nil {
		logger.Warn(ctx, "Price history unavailable", "ticker", ticker, "error", err.Error())
	}
	f := Indicators(bars)

	ov, err := c.overview(ctx, ticker)
	if err != nil {
		logger.Warn(ctx, "Company overview unavailable", "ticker", ticker, "error", err.Error())
	}

	f.Set(GrossMargin, NA)
	f.Set(ROE, NA)
	f.Set(ForwardPE, NA)
	f.Set(PBRatio, NA)
	f.Set(PSRatio, NA)
	sector := NA
	if ov != nil {
		if gp, ok := parseNumber(ov.GrossProfitTTM); ok {
			if rev, ok := parseNumber(ov.RevenueTTM); ok && rev != 0 {
				f.Set(GrossMargin, round2(gp/rev*100))
			}
		}
		if v, ok := parseNumber(ov.ReturnOnEquityTTM); ok {
			f.Set(ROE, round2(v*100))
		}
		if v, ok := parseNumber(ov.ForwardPE); ok {
			f.Set(ForwardPE, round2(v))
		}
		if v, ok := parseNumber(ov.PriceToBookRatio); ok {
			f.Set(PBRatio, round2(v))
		}
		if v, ok := parseNumber(ov.PriceToSalesRatioTTM); ok {
			f.Set(PSRatio, round2(v))
		}
		if ov.Sector != "" {
			sector = ov.Sector
		}
		c.rememberName(ticker, ov.Name)
	}

	f.Set(CompanyName, c.CompanyName(ticker))
	f.Set(Sector, sector)
	return f
}

func (c *Client) overview(ctx context.Context, ticker string) (*overviewResponse, error) {
	if c.apiKey == "" {
		return nil, nil
	}
	query := url.Values{
		"function": {"OVERVIEW"},
		"symbol":   {ticker},
		"apikey":   {c.apiKey},
	}
	var ov overviewResponse
	if err := c.http.GetJSON(ctx, c.overviewURL+"/query", query, &ov); err != nil {
		return nil, fmt.Errorf("fetch %s overview: %w", ticker, err)
	}
	if ov.Symbol == "" {
		msg := ov.Information
		if msg == "" {
			msg = ov.Note
		}
		return nil, fmt.Errorf("empty overview for %s: %s", ticker, msg)
	}
	return &ov, nil
}

// parseNumber reads the provider's numeric strings, where "None" and "-"
// mean missing.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
