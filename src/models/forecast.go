package models

import (
	"encoding/json"
	"time"
)

// MFrameRow is the two-column (ds, y) shape the model is fitted on.
type MFrameRow struct {
	DS time.Time `json:"ds"`
	Y  float64   `json:"y"`
}

func (r MFrameRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		DS string  `json:"ds"`
		Y  float64 `json:"y"`
	}{DS: r.DS.Format(NaiveLayout), Y: r.Y})
}

// -----------------------------------------------------------------------------

// MForecastPoint is one predicted row. Component columns are in price
// units and sum (with Trend) to YHat.
type MForecastPoint struct {
	Date          time.Time `json:"ds"`
	YHat          float64   `json:"yhat"`
	YHatLower     float64   `json:"yhat_lower"`
	YHatUpper     float64   `json:"yhat_upper"`
	Trend         float64   `json:"trend"`
	TrendLower    float64   `json:"trend_lower"`
	TrendUpper    float64   `json:"trend_upper"`
	Yearly        float64   `json:"yearly"`
	Weekly        float64   `json:"weekly"`
	Daily         float64   `json:"daily"`
	AdditiveTerms float64   `json:"additive_terms"`
	IsHistory     bool      `json:"is_history"`
	TradingDay    bool      `json:"trading_day"`
}

func (p MForecastPoint) MarshalJSON() ([]byte, error) {
	type alias MForecastPoint
	return json.Marshal(struct {
		alias
		Date string `json:"ds"`
	}{alias: alias(p), Date: p.Date.Format(NaiveLayout)})
}

// -----------------------------------------------------------------------------

// MForecastTable is the model output over history plus horizon.
type MForecastTable struct {
	Ticker  string           `json:"ticker"`
	Horizon int              `json:"horizon"`
	Points  []MForecastPoint `json:"points"`
}

func (t *MForecastTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Points)
}

// Future returns only the rows past the fitted history.
func (t *MForecastTable) Future() []MForecastPoint {
	var out []MForecastPoint
	for _, p := range t.Points {
		if !p.IsHistory {
			out = append(out, p)
		}
	}
	return out
}
