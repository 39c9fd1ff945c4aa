package forecast

import (
	"fmt"

	"stock-predictor/src/helpers"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"
	"stock-predictor/src/utils"
)

// Forecaster runs reshape, fit, extend and predict for one series. A new
// Model is built per call so concurrent passes share nothing.
type Forecaster struct {
	Options Options
	Logger  *logger.Logger
}

func NewForecaster(cfg *models.MConfig) *Forecaster {
	opts := DefaultOptions()
	if cfg != nil {
		opts = OptionsFromConfig(cfg.Forecast)
	}
	return &Forecaster{
		Options: opts,
		Logger:  logger.NewLogger(cfg, "Forecaster"),
	}
}

// -----------------------------------------------------------------------------

func (f *Forecaster) Forecast(series *models.MPriceSeries, horizon int) (*models.MForecastTable, error) {
	if horizon < 0 {
		return nil, helpers.NewValidationError("horizon cannot be negative: %d", horizon)
	}
	if series.Empty() {
		return nil, helpers.NewForecastError("empty series", helpers.ErrNoData)
	}

	frame := rawFrame(series)
	model := NewModel(f.Options)
	if err := model.Fit(frame); err != nil {
		return nil, fmt.Errorf("forecast %s: %w", series.Ticker, err)
	}

	dates, err := model.MakeFutureDataFrame(horizon, true)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", series.Ticker, err)
	}
	points, err := model.Predict(dates)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", series.Ticker, err)
	}

	cal := utils.GetCalendar(series.Ticker)
	for i := range points {
		// History rows are observed sessions by construction.
		points[i].TradingDay = points[i].IsHistory || cal.IsTradingDay(points[i].Date)
	}

	f.Logger.Debug("Fitted %s on %d rows: %s", series.Ticker, len(frame), model)

	return &models.MForecastTable{
		Ticker:  series.Ticker,
		Horizon: horizon,
		Points:  points,
	}, nil
}
