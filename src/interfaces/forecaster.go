package interfaces

import "stock-predictor/src/models"

// -----------------------------------------------------------------------------
// IForecaster fits a model on a price series and predicts past its end.
// -----------------------------------------------------------------------------

type IForecaster interface {
	Forecast(series *models.MPriceSeries, horizon int) (*models.MForecastTable, error)
}
