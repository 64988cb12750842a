package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"deepsent/internal/chart"
	"deepsent/internal/logger"
	"deepsent/internal/market"
	"deepsent/internal/metrics"
	"deepsent/internal/report"
	"deepsent/internal/store"
	"deepsent/internal/types"
)

const dateLayout = "2006-01-02"

// DailyLimitOptions are the per-day post limits offered to the user.
var DailyLimitOptions = []int{10, 20, 30, 50, 100}

// fundamentalsSource supplies the indicator table of a ticker.
type fundamentalsSource interface {
	Fundamentals(ctx context.Context, ticker string) *types.Fundamentals
}

// priceSource reads daily bars for a chart API range.
type priceSource interface {
	History(ctx context.Context, ticker, rng string) ([]market.Bar, error)
}

// defaultPeriod is the first period with enough bars for the indicators.
var defaultPeriod = market.Periods[1]

// app is one interactive session. It owns exactly one report cache.
type app struct {
	orch         *report.Orchestrator
	fundamentals fundamentalsSource
	prices       priceSource
	market       *market.Client
	cfg          *store.Config
	view         report.ViewOptions
	out          io.Writer
	now          func() time.Time
}

func newApp(cfg *store.Config, orch *report.Orchestrator, mkt *market.Client, out io.Writer) *app {
	a := &app{
		orch:   orch,
		market: mkt,
		cfg:    cfg,
		view: report.ViewOptions{
			MinPostsForBox:    cfg.Sentiment.MinPostsForBox,
			MinArticlesPerDay: cfg.Sentiment.MinArticlesPerDay,
			MinDailyCount:     cfg.Sentiment.MinDailyCount,
			AnomalyThreshold:  cfg.Sentiment.AnomalyThreshold,
		},
		out: out,
		now: time.Now,
	}
	if mkt != nil {
		a.fundamentals = mkt
		a.prices = mkt
	}
	return a
}

// parseRequest reads "TICKER [START [END [LIMIT]]]". Missing dates default
// to the last seven days and the limit to the configured default.
func (a *app) parseRequest(args []string) (report.Request, error) {
	if len(args) == 0 {
		return report.Request{}, errors.New("ticker is required")
	}
	today := a.now()
	req := report.Request{
		Ticker:     strings.ToUpper(args[0]),
		StartDate:  today.AddDate(0, 0, -7),
		EndDate:    today,
		DailyLimit: a.cfg.Report.DefaultDailyLimit,
	}

	var err error
	if len(args) > 1 {
		if req.StartDate, err = time.Parse(dateLayout, args[1]); err != nil {
			return report.Request{}, fmt.Errorf("invalid start date %q: %w", args[1], err)
		}
	}
	if len(args) > 2 {
		if req.EndDate, err = time.Parse(dateLayout, args[2]); err != nil {
			return report.Request{}, fmt.Errorf("invalid end date %q: %w", args[2], err)
		}
	}
	if len(args) > 3 {
		if req.DailyLimit, err = strconv.Atoi(args[3]); err != nil {
			return report.Request{}, fmt.Errorf("invalid daily limit %q: %w", args[3], err)
		}
	}
	return req, req.Validate()
}

// runReport serves a report from the cache or generates it, then prints
// and saves it.
func (a *app) runReport(ctx context.Context, req report.Request) (*types.ReportEntry, error) {
	if _, ok := a.orch.Cached(req); !ok {
		articles := report.EstimateArticles(req.StartDate, req.EndDate, req.DailyLimit)
		fmt.Fprintf(a.out, "Collecting up to %s articles for %s (about %s)...\n",
			humanize.Comma(int64(articles)), req.Ticker, report.EstimateDuration(articles).Round(time.Second))
		if a.fundamentals != nil {
			req.Fundamentals = a.fundamentals.Fundamentals(ctx, req.Ticker)
		}
	}

	entry, err := a.orch.GetOrGenerate(ctx, req)
	if err != nil {
		return nil, err
	}

	v := report.BuildView(entry, a.view)
	a.printEntry(ctx, entry, v)
	if err := a.save(ctx, entry, v); err != nil {
		logger.Warn(ctx, "Failed to save report", "ticker", entry.Ticker, "error", err.Error())
	}
	return entry, nil
}

func (a *app) printEntry(ctx context.Context, entry *types.ReportEntry, v report.View) {
	fmt.Fprintf(a.out, "\n%s\n", v.Snapshot)
	if v.Overall != "" {
		fmt.Fprintf(a.out, "\nOverall Sentiment Score: %s\n", v.Overall)
	}
	fmt.Fprintf(a.out, "Posts: %s | Period: %s | Generated %s\n",
		humanize.Comma(int64(len(entry.Posts))), entry.Period, humanize.Time(entry.GeneratedAt))

	for _, an := range v.Anomalies {
		logger.Anomaly(ctx, entry.Ticker, an.Date, string(an.Type), *an.Change, an.Count)
		metrics.Anomalies.WithLabelValues(string(an.Type)).Inc()
		fmt.Fprintf(a.out, "  %s %-6s %+.3f (%d posts)\n", an.Date, an.Type, *an.Change, an.Count)
	}
	if v.TrendNotice != "" {
		fmt.Fprintln(a.out, v.TrendNotice)
	}
	if v.BoxNotice != "" {
		fmt.Fprintln(a.out, v.BoxNotice)
	}
	if v.Narrative != "" {
		fmt.Fprintf(a.out, "\n%s\n", v.Narrative)
	}
}

// save writes the markdown, its HTML export and the chart figures.
func (a *app) save(ctx context.Context, entry *types.ReportEntry, v report.View) error {
	dir := a.cfg.Report.OutputDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	mdPath := filepath.Join(dir, v.Filename)
	if err := os.WriteFile(mdPath, []byte(entry.Report), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	page, err := report.RenderHTML(strings.TrimSuffix(v.Filename, ".md"), entry.Report)
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	htmlPath := strings.TrimSuffix(mdPath, ".md") + ".html"
	if err := os.WriteFile(htmlPath, []byte(page), 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}

	for _, fig := range []*types.Figure{v.Trend, v.Box} {
		if fig == nil {
			continue
		}
		if p, err := chart.Save(dir, fig); err != nil {
			logger.Warn(ctx, "Failed to save chart", "kind", fig.Kind, "error", err.Error())
		} else {
			fmt.Fprintf(a.out, "Chart saved: %s\n", p)
		}
	}

	fmt.Fprintf(a.out, "Report saved: %s (%s), %s\n", mdPath, humanize.Bytes(uint64(len(entry.Report))), htmlPath)
	return nil
}

// regenerate drops the cached report and builds it again.
func (a *app) regenerate(ctx context.Context, req report.Request) (*types.ReportEntry, error) {
	if a.orch.Invalidate(req) {
		fmt.Fprintf(a.out, "Cleared cached report %s\n", req.Key())
	}
	return a.runReport(ctx, req)
}

// anomalies prints the anomalies of a cached report.
func (a *app) anomalies(req report.Request) error {
	entry, ok := a.orch.Cached(req)
	if !ok {
		return fmt.Errorf("no cached report for %s; run report first", req.Key())
	}
	v := report.BuildView(entry, a.view)
	if len(v.Anomalies) == 0 {
		fmt.Fprintln(a.out, "No sentiment anomalies detected.")
		return nil
	}
	for _, an := range v.Anomalies {
		fmt.Fprintf(a.out, "%s %-6s median %+.3f change %+.3f (%d posts)\n",
			an.Date, an.Type, an.Sentiment, *an.Change, an.Count)
	}
	return nil
}

func (a *app) listCache() {
	keys := a.orch.Session().Keys()
	if len(keys) == 0 {
		fmt.Fprintln(a.out, "Cache is empty.")
		return
	}
	for _, k := range keys {
		fmt.Fprintln(a.out, k.String())
	}
}

// price prints a price history summary and the technical indicators of a
// ticker for one of market.Periods.
func (a *app) price(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("ticker is required")
	}
	if a.prices == nil {
		return errors.New("market data is not configured")
	}
	ticker := strings.ToUpper(args[0])

	period := defaultPeriod
	if len(args) > 1 {
		name := strings.Join(args[1:], " ")
		p, ok := market.LookupPeriod(name)
		if !ok {
			return fmt.Errorf("unknown period %q (choose one of %s)", name, periodNames())
		}
		period = p
	}

	bars, err := a.prices.History(ctx, ticker, period.Range)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return fmt.Errorf("%s: %w", ticker, market.ErrNoHistory)
	}

	first, last := bars[0], bars[len(bars)-1]
	fmt.Fprintf(a.out, "%s %s: %s to %s, %d sessions\n", ticker, period.Label, first.Date, last.Date, len(bars))
	if first.Close != 0 {
		fmt.Fprintf(a.out, "Close %.2f -> %.2f (%+.2f%%)\n", first.Close, last.Close, (last.Close-first.Close)/first.Close*100)
	}

	ind := market.Indicators(bars)
	for _, name := range ind.Order {
		fmt.Fprintf(a.out, "  %-16s %v\n", name, ind.Get(name))
	}
	return nil
}

func periodNames() string {
	names := make([]string, len(market.Periods))
	for i, p := range market.Periods {
		names[i] = p.Range
	}
	return strings.Join(names, ", ")
}

func (a *app) listTickers(ctx context.Context) {
	if a.market == nil {
		return
	}
	tickers := a.market.Universe(ctx)
	fmt.Fprintf(a.out, "%d tickers: %s\n", len(tickers), strings.Join(tickers, " "))
	fmt.Fprintf(a.out, "Daily limits: %v (default %d)\n", DailyLimitOptions, a.cfg.Report.DefaultDailyLimit)
}

const help = `Commands:
  report TICKER [START END [LIMIT]]   show a report (cached when possible)
  regen TICKER [START END [LIMIT]]    clear the cached report and regenerate
  anomalies TICKER [START END [LIMIT]] list sentiment anomalies of a cached report
  price TICKER [PERIOD]               price summary and indicators (1mo, 3mo, 6mo, 1y)
  cache                               list cached reports
  clear                               clear every cached report
  tickers                             list the ticker universe
  quit`

// dispatch runs one interactive command. It returns false on quit.
func (a *app) dispatch(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch cmd {
	case "quit", "exit":
		return false
	case "help":
		fmt.Fprintln(a.out, help)
	case "cache":
		a.listCache()
	case "clear":
		fmt.Fprintf(a.out, "Cleared %d cached reports\n", a.orch.Clear())
	case "tickers":
		a.listTickers(ctx)
	case "price":
		err = a.price(ctx, args)
	case "report", "regen", "anomalies":
		var req report.Request
		if req, err = a.parseRequest(args); err != nil {
			break
		}
		switch cmd {
		case "report":
			_, err = a.runReport(ctx, req)
		case "regen":
			_, err = a.regenerate(ctx, req)
		default:
			err = a.anomalies(req)
		}
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
	return true
}
