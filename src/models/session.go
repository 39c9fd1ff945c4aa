package models

// -----------------------------------------------------------------------------
// MRunResult is the outcome of one fetch/forecast pass.
// -----------------------------------------------------------------------------

type MRunResult struct {
	Ticker   string          `json:"ticker"`
	Horizon  int             `json:"horizon"`
	Failed   bool            `json:"failed"`
	Message  string          `json:"message,omitempty"`
	Series   *MPriceSeries   `json:"series,omitempty"`
	Frame    []MFrameRow     `json:"-"`
	Forecast *MForecastTable `json:"forecast,omitempty"`
}

// -----------------------------------------------------------------------------
// MSelectCommand for websocket client messages
// -----------------------------------------------------------------------------

type MSelectCommand struct {
	Command string `json:"command"`
	Ticker  string `json:"ticker"`
	Horizon int    `json:"horizon"`
}

// -----------------------------------------------------------------------------
// MSessionMessage is what the server writes back on the websocket.
// -----------------------------------------------------------------------------

type MSessionMessage struct {
	Type   string      `json:"type"` // "TICKERS", "RESULT" or "ERROR"
	Error  string      `json:"error,omitempty"`
	Result *MRunResult `json:"result,omitempty"`
	// Only set on the greeting sent right after connect.
	Tickers []string `json:"tickers,omitempty"`
}

// -----------------------------------------------------------------------------
// MDashboardView is a run result plus both rendered chart documents. Charts
// are nil when the run failed.
// -----------------------------------------------------------------------------

type MDashboardView struct {
	Result        *MRunResult
	PriceChart    []byte
	ForecastChart []byte
}
