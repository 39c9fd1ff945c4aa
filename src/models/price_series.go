package models

import (
	"encoding/json"
	"time"
)

// NaiveLayout formats wall-clock timestamps with no zone suffix.
const NaiveLayout = "2006-01-02T15:04:05"

// MPriceBar is one daily OHLC row. Date holds the exchange wall-clock
// value stored in time.UTC; it carries no zone meaning.
type MPriceBar struct {
	Date        time.Time `json:"date"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Volume      int64     `json:"volume"`
	Dividends   float64   `json:"dividends"`
	StockSplits float64   `json:"stock_splits"`
}

func (b MPriceBar) MarshalJSON() ([]byte, error) {
	type alias MPriceBar
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias: alias(b), Date: b.Date.Format(NaiveLayout)})
}

// -----------------------------------------------------------------------------

// MPriceSeries is the fetched table for one ticker, ordered by date.
type MPriceSeries struct {
	Ticker   string      `json:"ticker"`
	Period   string      `json:"period"`
	Currency string      `json:"currency,omitempty"`
	Exchange string      `json:"exchange,omitempty"`
	Bars     []MPriceBar `json:"bars"`
}

func (s *MPriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

func (s *MPriceSeries) Empty() bool {
	return s.Len() == 0
}

// Last returns the most recent bar. Callers must check Empty first.
func (s *MPriceSeries) Last() MPriceBar {
	return s.Bars[len(s.Bars)-1]
}
