package interfaces

import (
	"context"
	"stock-predictor/src/models"
)

// -----------------------------------------------------------------------------
// IDashboard is one fetch/forecast/chart pass as seen by the surfaces.
// -----------------------------------------------------------------------------

type IDashboard interface {

	// Tickers returns the selection list; the first entry is the default.
	Tickers() []string
	DefaultHorizon() int

	// -----------------------------------------------------------------------------

	// Fetch loads the history only.
	Fetch(ctx context.Context, ticker string) (*models.MRunResult, error)

	// Run fetches and forecasts.
	Run(ctx context.Context, ticker string, horizon int) (*models.MRunResult, error)

	// Render runs and draws both charts.
	Render(ctx context.Context, ticker string, horizon int) (*models.MDashboardView, error)
}
