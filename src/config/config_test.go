package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataSource.Period != "4y" {
		t.Errorf("expected default period 4y, got %s", cfg.DataSource.Period)
	}
	if cfg.Forecast.Horizon != 30 {
		t.Errorf("expected default horizon 30, got %d", cfg.Forecast.Horizon)
	}
	if len(cfg.DataSource.Tickers) != 7 {
		t.Errorf("expected 7 default tickers, got %d", len(cfg.DataSource.Tickers))
	}
}

func TestNewConfigOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
name: test-dashboard
port: 9000
data_source:
  tickers: [AAPL, MSFT]
forecast:
  horizon: 14
  weekly_seasonality: "false"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Name != "test-dashboard" || cfg.Port != 9000 {
		t.Errorf("file values not applied: %+v", cfg.MConfig)
	}
	if strings.Join(cfg.DataSource.Tickers, ",") != "AAPL,MSFT" {
		t.Errorf("unexpected tickers %v", cfg.DataSource.Tickers)
	}
	if cfg.Forecast.Horizon != 14 || cfg.Forecast.WeeklySeasonality != "false" {
		t.Errorf("forecast values not applied: %+v", cfg.Forecast)
	}
	// untouched keys keep their defaults
	if cfg.Forecast.NChangepoints != 25 || cfg.DataSource.Period != "4y" {
		t.Errorf("defaults lost: %+v", cfg.Forecast)
	}
}

func TestNewConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := &Config{MConfig: Default()}
	env := map[string]string{
		"PREDICTOR_PORT":      "8600",
		"PREDICTOR_LOG_LEVEL": "debug",
		"PREDICTOR_HORIZON":   "60",
		"HTTPS_PROXY":         "http://proxy.local:3128",
	}
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 8600 || cfg.LogLevel != "DEBUG" || cfg.Forecast.Horizon != 60 {
		t.Errorf("env not applied: %+v", cfg.MConfig)
	}
	if !cfg.Network.Enabled || cfg.Network.Proxies[0] != "http://proxy.local:3128" {
		t.Errorf("proxy not applied: %+v", cfg.Network)
	}

	bad := &Config{MConfig: Default()}
	if err := bad.ApplyEnv(func(k string) string {
		if k == "PREDICTOR_PORT" {
			return "eighty"
		}
		return ""
	}); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"low port", func(c *Config) { c.Port = 80 }, true},
		{"no tickers", func(c *Config) { c.DataSource.Tickers = nil }, true},
		{"duplicate ticker", func(c *Config) { c.DataSource.Tickers = []string{"AAPL", "AAPL"} }, true},
		{"zero horizon", func(c *Config) { c.Forecast.Horizon = 0 }, true},
		{"huge horizon", func(c *Config) { c.Forecast.Horizon = 10000 }, true},
		{"bad interval", func(c *Config) { c.Forecast.IntervalWidth = 1 }, true},
		{"bad seasonality", func(c *Config) { c.Forecast.YearlySeasonality = "sometimes" }, true},
		{"grpc clash", func(c *Config) { c.GrpcPort = c.Port }, true},
		{"grpc enabled", func(c *Config) { c.GrpcPort = 50051 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{MConfig: Default()}
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := &Config{MConfig: Default()}
	cfg.Forecast.Horizon = 45
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := NewConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Forecast.Horizon != 45 {
		t.Errorf("expected horizon 45 after reload, got %d", loaded.Forecast.Horizon)
	}
}
