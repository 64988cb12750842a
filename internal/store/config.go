package store

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		Provider       string  `yaml:"provider"`
		Model          string  `yaml:"model"`
		EmbeddingModel string  `yaml:"embedding_model"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float32 `yaml:"temperature"`
		System         string  `yaml:"system"`
		EvidenceTopK   int     `yaml:"evidence_top_k"`
		Retry          struct {
			MaxAttempts      int     `yaml:"max_attempts"`
			BaseDelaySeconds float64 `yaml:"base_delay_seconds"`
			Multiplier       float64 `yaml:"multiplier"`
		} `yaml:"retry"`
		ThrottleSeconds float64 `yaml:"throttle_seconds"`
	} `yaml:"llm"`
	Collector struct {
		Source       string   `yaml:"source"`
		MaxArticles  int      `yaml:"max_articles"`
		ChartDir     string   `yaml:"chart_dir"`
		BaseURL      string   `yaml:"base_url"`
		HeadlineURLs []string `yaml:"headline_urls"`
	} `yaml:"collector"`
	Sentiment struct {
		AnomalyThreshold  float64 `yaml:"anomaly_threshold"`
		MinDailyCount     int     `yaml:"min_daily_count"`
		MinArticlesPerDay int     `yaml:"min_articles_per_day"`
		MinPostsForBox    int     `yaml:"min_posts_for_box"`
	} `yaml:"sentiment"`
	Report struct {
		OutputDir         string `yaml:"output_dir"`
		DefaultDailyLimit int    `yaml:"default_daily_limit"`
		DefaultPeriod     string `yaml:"default_period"`
	} `yaml:"report"`
	Market struct {
		UniverseURL    string `yaml:"universe_url"`
		HistoryBaseURL string `yaml:"history_base_url"`
	} `yaml:"market"`
}

func (c *Config) Validate() error {
	switch strings.ToUpper(c.LLM.Provider) {
	case "OPENAI", "AZURE", "CLAUDE", "NOOP":
	default:
		return fmt.Errorf("invalid llm.provider '%s': must be 'OPENAI', 'AZURE', 'CLAUDE' or 'NOOP'", c.LLM.Provider)
	}
	switch strings.ToUpper(c.Collector.Source) {
	case "ALPHAVANTAGE", "HEADLINES", "NOOP":
	default:
		return fmt.Errorf("invalid collector.source '%s': must be 'ALPHAVANTAGE', 'HEADLINES' or 'NOOP'", c.Collector.Source)
	}
	if c.LLM.Retry.MaxAttempts < 1 {
		return fmt.Errorf("llm.retry.max_attempts must be at least 1, got %d", c.LLM.Retry.MaxAttempts)
	}
	if c.LLM.Retry.Multiplier < 1 {
		return fmt.Errorf("llm.retry.multiplier must be >= 1, got %.2f", c.LLM.Retry.Multiplier)
	}
	if c.LLM.ThrottleSeconds < 0 {
		return errors.New("llm.throttle_seconds cannot be negative")
	}
	if c.Sentiment.AnomalyThreshold <= 0 || c.Sentiment.AnomalyThreshold > 2 {
		return fmt.Errorf("sentiment.anomaly_threshold must be in (0, 2], got %.2f", c.Sentiment.AnomalyThreshold)
	}
	if c.Collector.MaxArticles < 1 {
		return fmt.Errorf("collector.max_articles must be positive, got %d", c.Collector.MaxArticles)
	}
	if c.Report.DefaultDailyLimit < 1 {
		return fmt.Errorf("report.default_daily_limit must be positive, got %d", c.Report.DefaultDailyLimit)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}

// ParseConfig decodes YAML, fills defaults and validates.
func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "NOOP"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 4096
	}
	if c.LLM.EvidenceTopK == 0 {
		c.LLM.EvidenceTopK = 40
	}
	if c.LLM.Retry.MaxAttempts == 0 {
		c.LLM.Retry.MaxAttempts = 5
	}
	if c.LLM.Retry.BaseDelaySeconds == 0 {
		c.LLM.Retry.BaseDelaySeconds = 3
	}
	if c.LLM.Retry.Multiplier == 0 {
		c.LLM.Retry.Multiplier = 1.5
	}
	if c.LLM.ThrottleSeconds == 0 {
		c.LLM.ThrottleSeconds = 1
	}

	if c.Collector.Source == "" {
		c.Collector.Source = "NOOP"
	}
	if c.Collector.MaxArticles == 0 {
		c.Collector.MaxArticles = 3000
	}

	if c.Sentiment.AnomalyThreshold == 0 {
		c.Sentiment.AnomalyThreshold = 0.2
	}
	if c.Sentiment.MinDailyCount == 0 {
		c.Sentiment.MinDailyCount = 5
	}
	if c.Sentiment.MinArticlesPerDay == 0 {
		c.Sentiment.MinArticlesPerDay = 3
	}
	if c.Sentiment.MinPostsForBox == 0 {
		c.Sentiment.MinPostsForBox = 10
	}

	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "reports"
	}
	if c.Report.DefaultDailyLimit == 0 {
		c.Report.DefaultDailyLimit = 30
	}
	if c.Report.DefaultPeriod == "" {
		c.Report.DefaultPeriod = "1mo"
	}
}
