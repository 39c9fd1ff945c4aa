package utils

// -----------------------------------------------------------------------------

// Defaults for the dashboard. The ticker order is the dropdown order; the
// first entry is preselected.
const (
	DefaultPeriod  = "4y"
	DefaultHorizon = 30
	MaxHorizon     = 365

	FetchFailedMessage = "Failed to fetch data. Please try again later."
)

// DefaultTickers returns a fresh copy of the fixed selection list.
func DefaultTickers() []string {
	return []string{"BTC-USD", "GOOG", "AAPL", "MSFT", "GME", "AMZN", "TSLA"}
}

// -----------------------------------------------------------------------------

// Contains reports whether item is in slice.
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
