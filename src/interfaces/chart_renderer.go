package interfaces

import "stock-predictor/src/models"

// -----------------------------------------------------------------------------
// IChartRenderer turns tables into standalone interactive HTML documents.
// -----------------------------------------------------------------------------

type IChartRenderer interface {

	// PriceChart draws open and close traces for the series.
	PriceChart(series *models.MPriceSeries, ticker string) ([]byte, error)

	// -----------------------------------------------------------------------------

	// ForecastChart draws predicted vs. actual close.
	ForecastChart(frame []models.MFrameRow, table *models.MForecastTable, ticker string) ([]byte, error)
}
