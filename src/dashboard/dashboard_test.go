package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"stock-predictor/src/helpers"
	"stock-predictor/src/models"
	"stock-predictor/src/utils"
)

type fakeSource struct {
	series *models.MPriceSeries
	err    error
	calls  int
	period string
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchHistory(ctx context.Context, ticker, period string) (*models.MPriceSeries, error) {
	f.calls++
	f.period = period
	return f.series, f.err
}

type fakeForecaster struct {
	err   error
	calls int
}

func (f *fakeForecaster) Forecast(series *models.MPriceSeries, horizon int) (*models.MForecastTable, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	table := &models.MForecastTable{Ticker: series.Ticker, Horizon: horizon}
	for _, b := range series.Bars {
		table.Points = append(table.Points, models.MForecastPoint{Date: b.Date, YHat: b.Close, IsHistory: true})
	}
	for i := 1; i <= horizon; i++ {
		table.Points = append(table.Points, models.MForecastPoint{Date: series.Last().Date.AddDate(0, 0, i)})
	}
	return table, nil
}

type fakeRenderer struct {
	priceCalls, forecastCalls int
}

func (f *fakeRenderer) PriceChart(series *models.MPriceSeries, ticker string) ([]byte, error) {
	f.priceCalls++
	return []byte("price:" + ticker), nil
}

func (f *fakeRenderer) ForecastChart(frame []models.MFrameRow, table *models.MForecastTable, ticker string) ([]byte, error) {
	f.forecastCalls++
	return []byte("forecast:" + ticker), nil
}

func threeDays(ticker string) *models.MPriceSeries {
	start := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	s := &models.MPriceSeries{Ticker: ticker}
	for i := 0; i < 3; i++ {
		s.Bars = append(s.Bars, models.MPriceBar{Date: start.AddDate(0, 0, i), Close: float64(10 + i)})
	}
	return s
}

// -----------------------------------------------------------------------------

func TestRenderSuccess(t *testing.T) {
	src := &fakeSource{series: threeDays("AAPL")}
	fc := &fakeForecaster{}
	rd := &fakeRenderer{}
	d := NewDashboard(nil, src, fc, rd)

	view, err := d.Render(context.Background(), "AAPL", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Result.Failed {
		t.Fatal("run should not fail")
	}
	if src.period != utils.DefaultPeriod {
		t.Errorf("fetched with period %q", src.period)
	}
	if view.Result.Horizon != utils.DefaultHorizon || view.Result.Forecast.Len() != 3+utils.DefaultHorizon {
		t.Errorf("unexpected forecast size %d for horizon %d", view.Result.Forecast.Len(), view.Result.Horizon)
	}
	if len(view.Result.Frame) != 3 {
		t.Errorf("frame has %d rows", len(view.Result.Frame))
	}
	if string(view.PriceChart) != "price:AAPL" || string(view.ForecastChart) != "forecast:AAPL" {
		t.Errorf("unexpected charts %q %q", view.PriceChart, view.ForecastChart)
	}
}

func TestRenderEmptyOrFailedFetch(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeSource
	}{
		{"empty series", &fakeSource{series: &models.MPriceSeries{Ticker: "GME"}}},
		{"nil series", &fakeSource{}},
		{"provider error", &fakeSource{err: helpers.NewDataSourceError("boom", nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeForecaster{}
			rd := &fakeRenderer{}
			view, err := NewDashboard(nil, tt.src, fc, rd).Render(context.Background(), "GME", 30)
			if err != nil {
				t.Fatalf("failed fetch must not be an error: %v", err)
			}
			if !view.Result.Failed || view.Result.Message != utils.FetchFailedMessage {
				t.Errorf("unexpected result %+v", view.Result)
			}
			if view.PriceChart != nil || view.ForecastChart != nil {
				t.Error("failed pass should render no charts")
			}
			if fc.calls != 0 || rd.priceCalls != 0 || rd.forecastCalls != 0 {
				t.Error("forecaster and renderer must not run on a failed fetch")
			}
		})
	}
}

func TestRunValidation(t *testing.T) {
	src := &fakeSource{series: threeDays("AAPL")}
	d := NewDashboard(nil, src, &fakeForecaster{}, &fakeRenderer{})

	if _, err := d.Run(context.Background(), "NFLX", 30); !helpers.IsValidation(err) {
		t.Errorf("unknown ticker: got %v", err)
	}
	_, err := d.Run(context.Background(), "AAPL", utils.MaxHorizon+1)
	if !helpers.IsValidation(err) {
		t.Errorf("horizon too large: got %v", err)
	} else if !strings.Contains(err.Error(), "0 (default)") {
		t.Errorf("message should mention the default horizon: %q", err.Error())
	}
	if _, err := d.Run(context.Background(), "AAPL", -1); !helpers.IsValidation(err) {
		t.Errorf("negative horizon: got %v", err)
	}
	if src.calls != 0 {
		t.Errorf("validation errors must not fetch, got %d calls", src.calls)
	}

	res, err := d.Run(context.Background(), "", 5)
	if err != nil {
		t.Fatal(err)
	}
	if res.Ticker != "BTC-USD" {
		t.Errorf("default ticker = %s", res.Ticker)
	}
}

func TestRunForecastErrorPropagates(t *testing.T) {
	want := helpers.NewForecastError("optimization failed", nil)
	d := NewDashboard(nil, &fakeSource{series: threeDays("TSLA")}, &fakeForecaster{err: want}, &fakeRenderer{})

	if _, err := d.Render(context.Background(), "TSLA", 30); !errors.Is(err, want) {
		t.Errorf("expected forecast error, got %v", err)
	}
}

func TestConfiguredTickers(t *testing.T) {
	cfg := &models.MConfig{DataSource: models.MDataSourceConfig{Tickers: []string{"NFLX", "META"}, Period: "1y"}}
	src := &fakeSource{series: threeDays("NFLX")}
	d := NewDashboard(cfg, src, &fakeForecaster{}, &fakeRenderer{})

	if d.DefaultTicker() != "NFLX" || len(d.Tickers()) != 2 {
		t.Errorf("unexpected tickers %v", d.Tickers())
	}
	if _, err := d.Run(context.Background(), "META", 1); err != nil {
		t.Fatal(err)
	}
	if src.period != "1y" {
		t.Errorf("period = %q", src.period)
	}
}
