package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"stock-predictor/src/helpers"
	"stock-predictor/src/models"
	"stock-predictor/src/utils"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// Default returns the configuration used when no file is present.
func Default() *models.MConfig {
	return &models.MConfig{
		Name:     "stock-predictor",
		Host:     "127.0.0.1",
		Port:     8501,
		LogLevel: "INFO",
		GrpcHost: "127.0.0.1",
		GrpcPort: 0,
		Network: models.MNetworkConfig{
			RequestTimeout: 30,
			MaxRetries:     0,
		},
		DataSource: models.MDataSourceConfig{
			Name:       "yahoo",
			BaseURL:    "https://query1.finance.yahoo.com",
			Period:     utils.DefaultPeriod,
			AutoAdjust: true,
			Tickers:    utils.DefaultTickers(),
		},
		Forecast: models.MForecastConfig{
			Horizon:               utils.DefaultHorizon,
			NChangepoints:         25,
			ChangepointRange:      0.8,
			ChangepointPriorScale: 0.05,
			SeasonalityPriorScale: 10,
			IntervalWidth:         0.8,
			UncertaintySamples:    1000,
			Seed:                  42,
			YearlySeasonality:     "auto",
			WeeklySeasonality:     "auto",
			DailySeasonality:      "auto",
		},
		Chart: models.MChartConfig{
			AssetsHost: "https://go-echarts.github.io/go-echarts-assets/assets/",
			Width:      "100%",
			Height:     "500px",
		},
	}
}

// -----------------------------------------------------------------------------

// NewConfig loads the YAML file over the defaults, applies .env and
// environment overrides, then validates. A missing file is not an error.
func NewConfig(configPath string) (*Config, error) {
	modelConfig := Default()

	data, err := os.ReadFile(configPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("failed to read config file '%s'", configPath), err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, modelConfig); err != nil {
			return nil, helpers.NewConfigurationError("failed to parse config from YAML", err)
		}
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, helpers.NewConfigurationError("failed to load .env", err)
	}

	config := &Config{MConfig: modelConfig}
	if err := config.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// ApplyEnv overrides fields from the environment. getenv is injectable for tests.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("PREDICTOR_HOST"); v != "" {
		c.Host = v
	}
	if v := getenv("PREDICTOR_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return helpers.NewConfigurationError("PREDICTOR_PORT", err)
		}
		c.Port = port
	}
	if v := getenv("PREDICTOR_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToUpper(v)
	}
	if v := getenv("PREDICTOR_PERIOD"); v != "" {
		c.DataSource.Period = v
	}
	if v := getenv("PREDICTOR_HORIZON"); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil {
			return helpers.NewConfigurationError("PREDICTOR_HORIZON", err)
		}
		c.Forecast.Horizon = h
	}
	if v := getenv("HTTPS_PROXY"); v != "" {
		c.Network.Enabled = true
		c.Network.Proxies = append([]string{v}, c.Network.Proxies...)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}
	if c.GrpcPort != 0 && c.GrpcPort == c.Port && c.GrpcHost == c.Host {
		return fmt.Errorf("grpc and http cannot share %s:%d", c.Host, c.Port)
	}

	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	if c.DataSource.BaseURL == "" {
		return fmt.Errorf("data source base_url cannot be empty")
	}
	if c.DataSource.Period == "" {
		return fmt.Errorf("data source period cannot be empty")
	}
	if len(c.DataSource.Tickers) == 0 {
		return fmt.Errorf("at least one ticker must be configured")
	}
	seen := make(map[string]bool)
	for i, t := range c.DataSource.Tickers {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("ticker %d cannot be empty", i)
		}
		if seen[t] {
			return fmt.Errorf("duplicate ticker %s", t)
		}
		seen[t] = true
	}

	f := c.Forecast
	if f.Horizon <= 0 || f.Horizon > utils.MaxHorizon {
		return fmt.Errorf("forecast horizon must be within 1..%d, got %d", utils.MaxHorizon, f.Horizon)
	}
	if f.NChangepoints < 0 {
		return fmt.Errorf("n_changepoints cannot be negative")
	}
	if f.ChangepointRange <= 0 || f.ChangepointRange > 1 {
		return fmt.Errorf("changepoint_range must be in (0, 1]")
	}
	if f.ChangepointPriorScale <= 0 || f.SeasonalityPriorScale <= 0 {
		return fmt.Errorf("prior scales must be positive")
	}
	if f.IntervalWidth <= 0 || f.IntervalWidth >= 1 {
		return fmt.Errorf("interval_width must be in (0, 1)")
	}
	if f.UncertaintySamples < 0 {
		return fmt.Errorf("uncertainty_samples cannot be negative")
	}
	for name, v := range map[string]string{
		"yearly_seasonality": f.YearlySeasonality,
		"weekly_seasonality": f.WeeklySeasonality,
		"daily_seasonality":  f.DailySeasonality,
	} {
		switch strings.ToLower(v) {
		case "auto", "true", "false":
		default:
			return fmt.Errorf("%s must be auto, true or false, got %q", name, v)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
