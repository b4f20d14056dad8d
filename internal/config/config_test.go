package config

import (
	"os"
	"path/filepath"
	"testing"

	"PatternSentinel/internal/pattern"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataSource.Kind != SourceYahoo {
		t.Errorf("expected yahoo source, got %q", cfg.DataSource.Kind)
	}
	if cfg.DataSource.Interval != "1d" || cfg.DataSource.Limit != 120 {
		t.Errorf("unexpected data source defaults: %+v", cfg.DataSource)
	}
	if len(cfg.Symbols) != 1 || cfg.Symbols[0] != "AAPL" {
		t.Errorf("unexpected default symbols: %v", cfg.Symbols)
	}
	if cfg.Pattern != pattern.DefaultThresholds() {
		t.Errorf("expected default thresholds, got %+v", cfg.Pattern)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
data_source:
  kind: CSV
  csv_path: testdata/bars.csv
symbols: [MSFT, AAPL]
schedule:
  scan_cron: "0 0 * * * *"
pattern:
  doji_body_ratio: 0.05
`)
	t.Setenv("SYMBOLS", "BTC-USD, ETH-USD ,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataSource.Kind != SourceCSV {
		t.Errorf("expected lower-cased csv kind, got %q", cfg.DataSource.Kind)
	}
	if cfg.DataSource.CSVPath != "testdata/bars.csv" {
		t.Errorf("unexpected csv path %q", cfg.DataSource.CSVPath)
	}
	if cfg.DataSource.CSVColumnPrefix != "" {
		t.Errorf("custom csv should have no column prefix, got %q", cfg.DataSource.CSVColumnPrefix)
	}
	if len(cfg.Symbols) != 2 || cfg.Symbols[0] != "BTC-USD" || cfg.Symbols[1] != "ETH-USD" {
		t.Errorf("env symbols not applied: %v", cfg.Symbols)
	}
	if cfg.Schedule.ScanCron != "0 0 * * * *" {
		t.Errorf("unexpected cron %q", cfg.Schedule.ScanCron)
	}
	if cfg.Log.Level != "debug" || cfg.Server.Addr != ":9090" {
		t.Errorf("env overrides not applied: level=%q addr=%q", cfg.Log.Level, cfg.Server.Addr)
	}
	if cfg.Pattern.DojiBodyRatio != 0.05 {
		t.Errorf("expected doji ratio 0.05, got %f", cfg.Pattern.DojiBodyRatio)
	}
	if cfg.Pattern.HammerBodyRatio != pattern.HammerBodyRatio {
		t.Errorf("unset threshold should default, got %f", cfg.Pattern.HammerBodyRatio)
	}
}

func TestLoad_CSVDefaultsToDemoDataset(t *testing.T) {
	t.Setenv("DATA_SOURCE", "csv")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataSource.CSVPath != DefaultCSVURL {
		t.Errorf("expected demo csv url, got %q", cfg.DataSource.CSVPath)
	}
	if cfg.DataSource.CSVColumnPrefix != "AAPL." {
		t.Errorf("expected AAPL. prefix, got %q", cfg.DataSource.CSVColumnPrefix)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "symbols: [unterminated")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"ok", func(c *Config) {}, false},
		{"unknown source", func(c *Config) { c.DataSource.Kind = "ftp" }, true},
		{"rest without url", func(c *Config) { c.DataSource.Kind = SourceREST }, true},
		{"rest with url", func(c *Config) {
			c.DataSource.Kind = SourceREST
			c.DataSource.BaseURL = "http://localhost"
		}, false},
		{"sqlite without path", func(c *Config) { c.DataSource.Kind = SourceSQLite }, true},
		{"empty symbol", func(c *Config) { c.Symbols = []string{"AAPL", " "} }, true},
	}
	for _, tt := range tests {
		cfg := &Config{}
		cfg.applyDefaults()
		tt.mutate(cfg)
		err := cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: wantErr=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestTelegramEnabled(t *testing.T) {
	cfg := &Config{}
	if cfg.TelegramEnabled() {
		t.Error("expected telegram disabled without credentials")
	}
	cfg.Telegram.BotToken = "token"
	cfg.Telegram.ChatID = "42"
	if !cfg.TelegramEnabled() {
		t.Error("expected telegram enabled")
	}
}

func TestApplySourceDefaults_AfterOverride(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.DataSource.Kind = "CSV"
	cfg.ApplySourceDefaults()

	if cfg.DataSource.Kind != SourceCSV {
		t.Errorf("expected kind to be normalised, got %q", cfg.DataSource.Kind)
	}
	if cfg.DataSource.CSVPath != DefaultCSVURL || cfg.DataSource.CSVColumnPrefix != "AAPL." {
		t.Errorf("expected demo dataset defaults, got %+v", cfg.DataSource)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("csv override should validate: %v", err)
	}
}

func TestApplySourceDefaults_KeepsCustomCSV(t *testing.T) {
	cfg := &Config{}
	cfg.DataSource.Kind = SourceCSV
	cfg.DataSource.CSVPath = "bars.csv"
	cfg.ApplySourceDefaults()
	if cfg.DataSource.CSVPath != "bars.csv" || cfg.DataSource.CSVColumnPrefix != "" {
		t.Errorf("expected custom csv untouched, got %+v", cfg.DataSource)
	}
}

func TestLoad_Limit(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want int
	}{
		{"absent", "symbols: [AAPL]\n", DefaultLimit},
		{"zero", "data_source:\n  limit: 0\n", DefaultLimit},
		{"explicit", "data_source:\n  limit: 30\n", 30},
		{"all bars", "data_source:\n  limit: -1\n", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.yaml))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.DataSource.Limit != tt.want {
				t.Errorf("expected limit %d, got %d", tt.want, cfg.DataSource.Limit)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("limit %d should validate: %v", cfg.DataSource.Limit, err)
			}
		})
	}
}
