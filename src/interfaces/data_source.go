package interfaces

import (
	"context"
	"stock-predictor/src/models"
)

// -----------------------------------------------------------------------------
// IDataSource interface for fetching price history from external providers.
// -----------------------------------------------------------------------------

type IDataSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchHistory retrieves daily OHLC rows for one ticker over the lookback
	// period (e.g. "4y"). Dates in the result are strictly increasing and
	// timezone-naive.
	FetchHistory(ctx context.Context, ticker, period string) (*models.MPriceSeries, error)
}
