// Package dashboard drives one interaction: fetch, forecast and chart for
// the selected ticker. Every call is an independent pass.
package dashboard

import (
	"context"

	"stock-predictor/src/forecast"
	"stock-predictor/src/helpers"
	"stock-predictor/src/interfaces"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"
	"stock-predictor/src/utils"
)

type Dashboard struct {
	Source     interfaces.IDataSource
	Forecaster interfaces.IForecaster
	Renderer   interfaces.IChartRenderer
	Logger     *logger.Logger

	tickers []string
	period  string
	horizon int
}

func NewDashboard(cfg *models.MConfig, source interfaces.IDataSource, forecaster interfaces.IForecaster, renderer interfaces.IChartRenderer) *Dashboard {
	d := &Dashboard{
		Source:     source,
		Forecaster: forecaster,
		Renderer:   renderer,
		Logger:     logger.NewLogger(cfg, "Dashboard"),
		tickers:    utils.DefaultTickers(),
		period:     utils.DefaultPeriod,
		horizon:    utils.DefaultHorizon,
	}
	if cfg != nil {
		if len(cfg.DataSource.Tickers) > 0 {
			d.tickers = append([]string(nil), cfg.DataSource.Tickers...)
		}
		if cfg.DataSource.Period != "" {
			d.period = cfg.DataSource.Period
		}
		if cfg.Forecast.Horizon > 0 {
			d.horizon = cfg.Forecast.Horizon
		}
	}
	return d
}

// -----------------------------------------------------------------------------

// Tickers returns the selection list; the first entry is the default.
func (d *Dashboard) Tickers() []string {
	return append([]string(nil), d.tickers...)
}

func (d *Dashboard) DefaultTicker() string {
	return d.tickers[0]
}

func (d *Dashboard) DefaultHorizon() int {
	return d.horizon
}

// -----------------------------------------------------------------------------

// Fetch validates the ticker and loads its history. A fetch error or an
// empty series yields Failed with the user-facing message and a nil error.
func (d *Dashboard) Fetch(ctx context.Context, ticker string) (*models.MRunResult, error) {
	if ticker == "" {
		ticker = d.DefaultTicker()
	}
	if !utils.Contains(d.tickers, ticker) {
		return nil, helpers.NewValidationError("unknown ticker %q", ticker)
	}

	result := &models.MRunResult{Ticker: ticker}

	series, err := d.Source.FetchHistory(ctx, ticker, d.period)
	if err != nil {
		d.Logger.Warning("Fetch failed for %s: %v", ticker, err)
		series = nil
	}
	if series.Empty() {
		result.Failed = true
		result.Message = utils.FetchFailedMessage
		return result, nil
	}

	result.Series = series
	result.Frame = forecast.Reshape(series)
	return result, nil
}

// -----------------------------------------------------------------------------

// Run is Fetch followed by the forecast when rows came back. Forecast errors
// are returned as is.
func (d *Dashboard) Run(ctx context.Context, ticker string, horizon int) (*models.MRunResult, error) {
	if horizon == 0 {
		horizon = d.horizon
	}
	if horizon < 0 || horizon > utils.MaxHorizon {
		return nil, helpers.NewValidationError("horizon must be 0 (default) or 1..%d, got %d", utils.MaxHorizon, horizon)
	}

	result, err := d.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}
	result.Horizon = horizon
	if result.Failed {
		return result, nil
	}
	series := result.Series

	table, err := d.Forecaster.Forecast(series, horizon)
	if err != nil {
		return nil, err
	}
	result.Forecast = table

	d.Logger.Info("Run %s: %d rows, %d forecast rows", ticker, series.Len(), table.Len())
	return result, nil
}

// -----------------------------------------------------------------------------

// Render is Run followed by both charts.
func (d *Dashboard) Render(ctx context.Context, ticker string, horizon int) (*models.MDashboardView, error) {
	result, err := d.Run(ctx, ticker, horizon)
	if err != nil {
		return nil, err
	}

	view := &models.MDashboardView{Result: result}
	if result.Failed {
		return view, nil
	}

	if view.PriceChart, err = d.Renderer.PriceChart(result.Series, result.Ticker); err != nil {
		return nil, err
	}
	if view.ForecastChart, err = d.Renderer.ForecastChart(result.Frame, result.Forecast, result.Ticker); err != nil {
		return nil, err
	}
	return view, nil
}
