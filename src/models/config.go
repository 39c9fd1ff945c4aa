package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	GrpcHost   string            `yaml:"grpc_host"`
	GrpcPort   int               `yaml:"grpc_port"` // 0 disables the gRPC surface
	Network    MNetworkConfig    `yaml:"network"`
	DataSource MDataSourceConfig `yaml:"data_source"`
	Forecast   MForecastConfig   `yaml:"forecast"`
	Chart      MChartConfig      `yaml:"chart"`
}

type MNetworkConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"`
	MaxRetries     int      `yaml:"retries"`
	UserAgent      string   `yaml:"user_agent"`
}

type MDataSourceConfig struct {
	Name       string   `yaml:"name"`
	BaseURL    string   `yaml:"base_url"`
	Period     string   `yaml:"period"`
	AutoAdjust bool     `yaml:"auto_adjust"`
	Tickers    []string `yaml:"tickers"`
}

// MForecastConfig mirrors the tunables of the additive model.
// Seasonality switches accept "auto", "true" or "false".
type MForecastConfig struct {
	Horizon               int     `yaml:"horizon"`
	NChangepoints         int     `yaml:"n_changepoints"`
	ChangepointRange      float64 `yaml:"changepoint_range"`
	ChangepointPriorScale float64 `yaml:"changepoint_prior_scale"`
	SeasonalityPriorScale float64 `yaml:"seasonality_prior_scale"`
	IntervalWidth         float64 `yaml:"interval_width"`
	UncertaintySamples    int     `yaml:"uncertainty_samples"`
	Seed                  uint64  `yaml:"seed"`
	YearlySeasonality     string  `yaml:"yearly_seasonality"`
	WeeklySeasonality     string  `yaml:"weekly_seasonality"`
	DailySeasonality      string  `yaml:"daily_seasonality"`
}

type MChartConfig struct {
	AssetsHost string `yaml:"assets_host"`
	Width      string `yaml:"width"`
	Height     string `yaml:"height"`
	Theme      string `yaml:"theme"`
}
