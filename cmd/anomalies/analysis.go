package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"deepsent/internal/sentiment"
	"deepsent/internal/types"
)

type options struct {
	Threshold float64 `json:"threshold"`
	MinCount  int     `json:"min_count"`
	MinPerDay int     `json:"min_per_day"`
}

type result struct {
	Ticker       string                     `json:"ticker,omitempty"`
	Options      options                    `json:"options"`
	Posts        int                        `json:"posts"`
	Scored       int                        `json:"scored"`
	Undated      int                        `json:"undated"`
	AvgSentiment *float64                   `json:"avg_sentiment"`
	Daily        []types.DailySentimentStat `json:"daily"`
	Anomalies    []types.DailySentimentStat `json:"anomalies"`
	Distribution []types.DayDistribution    `json:"distribution,omitempty"`
}

// parsePosts accepts a bare JSON array of posts or an object with a "posts"
// field, the shape of a saved collection result.
func parsePosts(data []byte) ([]types.ScoredItem, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty input")
	}

	var posts []types.ScoredItem
	if data[0] == '[' {
		if err := json.Unmarshal(data, &posts); err != nil {
			return nil, fmt.Errorf("decode posts: %w", err)
		}
		return posts, nil
	}

	var wrapped struct {
		Posts []types.ScoredItem `json:"posts"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return wrapped.Posts, nil
}

func analyze(ticker string, posts []types.ScoredItem, opts options) result {
	res := result{
		Ticker:  strings.ToUpper(ticker),
		Options: opts,
		Posts:   len(posts),
		Daily:   sentiment.DailyStats(posts, opts.MinCount),
		Anomalies: sentiment.DetectAnomalies(posts,
			sentiment.WithThreshold(opts.Threshold),
			sentiment.WithMinCount(opts.MinCount),
		),
	}

	var scores []float64
	for _, p := range posts {
		if v, ok := p.Score(); ok {
			scores = append(scores, v)
		}
		if sentiment.ResolveDate(p) == sentiment.UnknownDate {
			res.Undated++
		}
	}
	res.Scored = len(scores)
	res.AvgSentiment = sentiment.Mean(scores)

	if dist, err := sentiment.SummarizeDistribution(posts, opts.MinPerDay); err == nil {
		res.Distribution = dist
	}
	return res
}

func renderJSON(res result) (string, error) {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(b), nil
}

func renderText(res result) string {
	var sb strings.Builder
	line := strings.Repeat("─", 64)

	title := "Sentiment Anomaly Analysis"
	if res.Ticker != "" {
		title += " for " + res.Ticker
	}
	sb.WriteString(title + "\n" + line + "\n")
	fmt.Fprintf(&sb, "Posts: %d (scored %d, undated %d)\n", res.Posts, res.Scored, res.Undated)
	if res.AvgSentiment != nil {
		fmt.Fprintf(&sb, "Overall Sentiment Score: %+.4f\n", *res.AvgSentiment)
	}
	fmt.Fprintf(&sb, "Threshold: %.2f | Min posts per day: %d\n\n", res.Options.Threshold, res.Options.MinCount)

	sb.WriteString("Daily median sentiment\n")
	if len(res.Daily) == 0 {
		sb.WriteString("  No day has enough scored posts.\n")
	}
	for _, d := range res.Daily {
		change := "      -"
		if d.Change != nil {
			change = fmt.Sprintf("%+7.3f", *d.Change)
		}
		fmt.Fprintf(&sb, "  %s  %+.3f  %s  (%d posts)\n", d.Date, d.Sentiment, change, d.Count)
	}

	sb.WriteString("\nAnomalies\n")
	if len(res.Anomalies) == 0 {
		sb.WriteString("  None detected.\n")
	}
	for _, a := range res.Anomalies {
		fmt.Fprintf(&sb, "  %s  %-6s %+.3f\n", a.Date, strings.ToUpper(string(a.Type)), *a.Change)
	}

	if len(res.Distribution) > 0 {
		sb.WriteString("\nDistribution\n")
		for _, d := range res.Distribution {
			fmt.Fprintf(&sb, "  %s  n=%-4d q1 %+.3f  median %+.3f  q3 %+.3f  outliers %d\n",
				d.Label, d.Count, d.Q1, d.Median, d.Q3, len(d.Outliers))
		}
	}
	return sb.String()
}
