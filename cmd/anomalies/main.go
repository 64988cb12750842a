package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"deepsent/internal/logger"
	"deepsent/internal/store"
)

func main() {
	// Command-line flags
	configPath := flag.String("config", "config.yaml", "path to config file (thresholds default from it)")
	input := flag.String("input", "", "posts JSON file: an array of posts or {\"posts\": [...]} (required)")
	ticker := flag.String("ticker", "", "ticker label for the output (optional)")
	threshold := flag.Float64("threshold", 0, "minimum absolute day-over-day change of the daily median")
	minCount := flag.Int("min-count", 0, "minimum scored posts per day for anomaly detection")
	minPerDay := flag.Int("min-per-day", 0, "minimum posts per day in the distribution summary")
	format := flag.String("format", "text", "output format: text or json")
	outputFile := flag.String("output", "", "save result to file (optional)")
	flag.Parse()

	if *input == "" {
		fmt.Println("Error: -input is required")
		flag.Usage()
		os.Exit(1)
	}

	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Thresholds: flags win over config, config over built-in defaults
	cfg, err := store.LoadConfig(*configPath)
	if err != nil {
		cfg = store.Default()
	}
	opts := options{
		Threshold: cfg.Sentiment.AnomalyThreshold,
		MinCount:  cfg.Sentiment.MinDailyCount,
		MinPerDay: cfg.Sentiment.MinArticlesPerDay,
	}
	if *threshold > 0 {
		opts.Threshold = *threshold
	}
	if *minCount > 0 {
		opts.MinCount = *minCount
	}
	if *minPerDay > 0 {
		opts.MinPerDay = *minPerDay
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		fmt.Printf("Error reading input: %v\n", err)
		os.Exit(1)
	}
	posts, err := parsePosts(data)
	if err != nil {
		fmt.Printf("Error parsing input: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	res := analyze(*ticker, posts, opts)
	if res.Undated > 0 {
		logger.Warn(ctx, "Posts without a resolvable date were ignored", "count", res.Undated)
	}
	for _, a := range res.Anomalies {
		logger.Anomaly(ctx, res.Ticker, a.Date, string(a.Type), *a.Change, a.Count)
	}

	var content string
	switch *format {
	case "json":
		content, err = renderJSON(res)
	case "text":
		content = renderText(res)
	default:
		fmt.Printf("Unknown format: %s. Using text format.\n", *format)
		content = renderText(res)
	}
	if err != nil {
		fmt.Printf("Error rendering result: %v\n", err)
		os.Exit(1)
	}

	// Output to console
	fmt.Println(content)

	// Save to file if requested
	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(content), 0644); err != nil {
			fmt.Printf("Error saving result to file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n📄 Result saved to: %s\n", *outputFile)
	}
}
