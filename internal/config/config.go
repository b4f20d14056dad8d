package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"PatternSentinel/internal/pattern"
)

// Data source kinds.
const (
	SourceYahoo     = "yahoo"
	SourceCSV       = "csv"
	SourceREST      = "rest"
	SourceSQLite    = "sqlite"
	SourceMock      = "mock"
	SourceSynthetic = "synthetic"
)

// The sample daily AAPL dataset used in demo mode and its column prefix.
const (
	DefaultCSVURL          = "https://raw.githubusercontent.com/plotly/datasets/master/finance-charts-apple.csv"
	DefaultCSVColumnPrefix = "AAPL."
)

// DefaultLimit is used when data_source.limit is absent or 0. A negative
// limit fetches every available bar.
const DefaultLimit = 120

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Kind              string  `yaml:"kind"`
		BaseURL           string  `yaml:"base_url"`
		APIKey            string  `yaml:"api_key"`
		CSVPath           string  `yaml:"csv_path"`
		CSVColumnPrefix   string  `yaml:"csv_column_prefix"`
		SQLitePath        string  `yaml:"sqlite_path"`
		Interval          string  `yaml:"interval"`
		Limit             int     `yaml:"limit"` // 0: DefaultLimit, < 0: all bars
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"data_source"`
	Symbols  []string `yaml:"symbols"`
	Schedule struct {
		ScanCron    string `yaml:"scan_cron"`
		Concurrency int    `yaml:"concurrency"`
	} `yaml:"schedule"`
	Server struct {
		Addr       string  `yaml:"addr"`
		MaxCandles int     `yaml:"max_candles"`
		RateLimit  float64 `yaml:"rate_limit"`
		RateBurst  int     `yaml:"rate_burst"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Pattern pattern.Thresholds `yaml:"pattern"`
	Proxy   string             `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the process environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		c.DataSource.Kind = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("CSV_PATH"); v != "" {
		c.DataSource.CSVPath = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.DataSource.SQLitePath = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Symbols = splitList(v)
	}
	if v := os.Getenv("CRON_SCAN"); v != "" {
		c.Schedule.ScanCron = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Log.Pretty = b
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
}

// ApplySourceDefaults fills the fields that depend on the data source
// kind. Callers that change the kind after Load must call it again.
func (c *Config) ApplySourceDefaults() {
	if c.DataSource.Kind == "" {
		c.DataSource.Kind = SourceYahoo
	}
	c.DataSource.Kind = strings.ToLower(c.DataSource.Kind)
	if c.DataSource.Kind == SourceCSV && c.DataSource.CSVPath == "" {
		c.DataSource.CSVPath = DefaultCSVURL
	}
	if c.DataSource.CSVColumnPrefix == "" && c.DataSource.CSVPath == DefaultCSVURL {
		c.DataSource.CSVColumnPrefix = DefaultCSVColumnPrefix
	}
}

func (c *Config) applyDefaults() {
	c.ApplySourceDefaults()
	if c.DataSource.Interval == "" {
		c.DataSource.Interval = "1d"
	}
	if c.DataSource.Limit == 0 {
		c.DataSource.Limit = DefaultLimit
	}
	if c.DataSource.RequestsPerSecond == 0 {
		c.DataSource.RequestsPerSecond = 2
	}
	if len(c.Symbols) == 0 {
		c.Symbols = []string{"AAPL"}
	}
	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 5 22 * * 1-5"
	}
	if c.Schedule.Concurrency == 0 {
		c.Schedule.Concurrency = 4
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.MaxCandles == 0 {
		c.Server.MaxCandles = 10000
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 20
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = 40
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Pattern = pattern.New(c.Pattern).Thresholds()
}

// Validate checks the fields every command needs.
func (c *Config) Validate() error {
	switch c.DataSource.Kind {
	case SourceYahoo, SourceMock, SourceSynthetic:
	case SourceCSV:
		if c.DataSource.CSVPath == "" {
			return fmt.Errorf("data_source.csv_path is required for csv source")
		}
	case SourceREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for rest source")
		}
	case SourceSQLite:
		if c.DataSource.SQLitePath == "" {
			return fmt.Errorf("data_source.sqlite_path is required for sqlite source")
		}
	default:
		return fmt.Errorf("data_source.kind %q is not supported", c.DataSource.Kind)
	}
	for _, s := range c.Symbols {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("symbols must not contain empty entries")
		}
	}
	if c.Schedule.Concurrency < 0 {
		return fmt.Errorf("schedule.concurrency must not be negative")
	}
	return nil
}

// ValidateTelegram checks the fields needed for alert delivery.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// TelegramEnabled reports whether both Telegram credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.ValidateTelegram() == nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
