package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"deepsent/internal/logger"
	"deepsent/internal/report"
	"deepsent/internal/trace"
)

func main() {
	// Command-line flags
	configPath := flag.String("config", "config.yaml", "path to config file")
	ticker := flag.String("ticker", "", "generate one report and exit (optional)")
	start := flag.String("start", "", "start date YYYY-MM-DD (default: 7 days ago)")
	end := flag.String("end", "", "end date YYYY-MM-DD (default: today)")
	limit := flag.Int("limit", 0, "posts per day (default: report.default_daily_limit)")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flag.Parse()

	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() { _ = trace.Shutdown(context.Background()) }()

	cfg, secrets, err := loadConfig(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	startMetricsServer(ctx, *metricsAddr)

	embedder := initializeEmbedder(ctx, cfg, secrets)
	generator := initializeGenerator(ctx, cfg, secrets, embedder)
	collector := initializeCollector(ctx, cfg, secrets)
	mkt := initializeMarket(cfg, secrets)

	a := newApp(cfg, report.NewOrchestrator(collector, generator), mkt, os.Stdout)

	// One-shot mode
	if *ticker != "" {
		args := []string{*ticker}
		if *start != "" || *end != "" || *limit > 0 {
			today := a.now()
			s, e, l := *start, *end, *limit
			if s == "" {
				s = today.AddDate(0, 0, -7).Format(dateLayout)
			}
			if e == "" {
				e = today.Format(dateLayout)
			}
			if l <= 0 {
				l = cfg.Report.DefaultDailyLimit
			}
			args = append(args, s, e, strconv.Itoa(l))
		}
		req, err := a.parseRequest(args)
		if err == nil {
			_, err = a.runReport(ctx, req)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("DeepSent - stock sentiment reports. Type 'help' for commands.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() || ctx.Err() != nil {
			break
		}
		if !a.dispatch(ctx, scanner.Text()) {
			break
		}
	}
	logger.Info(ctx, "Session ended", "cached_reports", a.orch.Session().Len())
}
