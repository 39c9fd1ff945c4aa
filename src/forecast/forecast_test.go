package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"stock-predictor/src/helpers"
	"stock-predictor/src/models"
)

func linearSeries(ticker string, start time.Time, n int, slope float64) *models.MPriceSeries {
	s := &models.MPriceSeries{Ticker: ticker, Period: "4y"}
	for i := 0; i < n; i++ {
		c := 100 + slope*float64(i)
		s.Bars = append(s.Bars, models.MPriceBar{
			Date:  start.AddDate(0, 0, i),
			Open:  c - 0.5,
			High:  c + 1,
			Low:   c - 1,
			Close: c,
		})
	}
	return s
}

func testForecaster() *Forecaster {
	f := NewForecaster(nil)
	f.Options.UncertaintySamples = 200
	return f
}

// -----------------------------------------------------------------------------

func TestForecastRowCountAndLastDate(t *testing.T) {
	start := time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC)
	series := linearSeries("AAPL", start, 400, 0.5)

	table, err := testForecaster().Forecast(series, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != series.Len()+30 {
		t.Fatalf("expected %d rows, got %d", series.Len()+30, table.Len())
	}
	if len(table.Future()) != 30 {
		t.Errorf("expected 30 future rows, got %d", len(table.Future()))
	}

	want := series.Last().Date.AddDate(0, 0, 30)
	got := table.Points[table.Len()-1].Date
	if !got.Equal(want) {
		t.Errorf("last date = %v, want %v", got, want)
	}

	for i := 1; i < table.Len(); i++ {
		if !table.Points[i].Date.After(table.Points[i-1].Date) {
			t.Fatalf("dates not increasing at %d", i)
		}
	}
}

func TestForecastKeepsDatesOfMissingCloses(t *testing.T) {
	start := time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		index int
		value float64
	}{
		{"nan in the middle", 50, math.NaN()},
		{"inf in the middle", 50, math.Inf(1)},
		{"nan on the first row", 0, math.NaN()},
		{"nan on the last row", 99, math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := linearSeries("AAPL", start, 100, 0.5)
			series.Bars[tt.index].Close = tt.value

			table, err := testForecaster().Forecast(series, 30)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if table.Len() < series.Len()+30 {
				t.Fatalf("expected at least %d rows, got %d", series.Len()+30, table.Len())
			}
			if !table.Points[tt.index].Date.Equal(series.Bars[tt.index].Date) || !table.Points[tt.index].IsHistory {
				t.Errorf("row %d should be the history date %v, got %+v", tt.index, series.Bars[tt.index].Date, table.Points[tt.index])
			}
			want := series.Last().Date.AddDate(0, 0, 30)
			if got := table.Points[table.Len()-1].Date; !got.Equal(want) {
				t.Errorf("last date = %v, want %v", got, want)
			}
			for i, p := range table.Points {
				if math.IsNaN(p.YHat) || math.IsInf(p.YHat, 0) {
					t.Fatalf("row %d has non-finite yhat", i)
				}
			}
		})
	}
}

func TestForecastExtrapolatesLinearTrend(t *testing.T) {
	start := time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC)
	n := 400
	series := linearSeries("BTC-USD", start, n, 0.5)

	table, err := testForecaster().Forecast(series, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := table.Points[table.Len()-1]
	want := 100 + 0.5*float64(n-1+30)
	if math.Abs(last.YHat-want)/want > 0.02 {
		t.Errorf("yhat = %.3f, want about %.3f", last.YHat, want)
	}

	for i, p := range table.Points {
		if p.YHatLower > p.YHatUpper || p.TrendLower > p.TrendUpper {
			t.Fatalf("row %d has inverted interval: %+v", i, p)
		}
		if math.Abs(p.YHat-(p.Trend+p.AdditiveTerms)) > 1e-9 {
			t.Fatalf("row %d components do not add up", i)
		}
	}
}

func TestForecastIsDeterministic(t *testing.T) {
	start := time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC)
	series := linearSeries("MSFT", start, 120, -0.2)
	for i := range series.Bars {
		series.Bars[i].Close += 3 * math.Sin(float64(i))
	}

	a, err := testForecaster().Forecast(series, 10)
	if err != nil {
		t.Fatal(err)
	}
	b, err := testForecaster().Forecast(series, 10)
	if err != nil {
		t.Fatal(err)
	}

	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			t.Fatalf("row %d differs between runs:\n%+v\n%+v", i, a.Points[i], b.Points[i])
		}
	}
}

func TestForecastTooFewRows(t *testing.T) {
	series := linearSeries("AAPL", time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), 1, 1)

	_, err := testForecaster().Forecast(series, 30)
	var fe *helpers.ForecastError
	if !errors.As(err, &fe) {
		t.Fatalf("expected ForecastError, got %v", err)
	}

	if _, err := testForecaster().Forecast(&models.MPriceSeries{Ticker: "AAPL"}, 30); err == nil {
		t.Error("expected error on empty series")
	}
}

func TestForecastMarksTradingDays(t *testing.T) {
	// Ends on Friday 2024-05-31; the next day is a Saturday.
	end := time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -59)

	table, err := testForecaster().Forecast(linearSeries("AAPL", start, 60, 0.1), 3)
	if err != nil {
		t.Fatal(err)
	}
	future := table.Future()
	if future[0].TradingDay || future[1].TradingDay || !future[2].TradingDay {
		t.Errorf("unexpected trading flags: sat=%v sun=%v mon=%v",
			future[0].TradingDay, future[1].TradingDay, future[2].TradingDay)
	}

	crypto, err := testForecaster().Forecast(linearSeries("BTC-USD", start, 60, 0.1), 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range crypto.Future() {
		if !p.TradingDay {
			t.Errorf("crypto should trade on %v", p.Date)
		}
	}
}

// -----------------------------------------------------------------------------

func TestReshapeRoundTrip(t *testing.T) {
	series := linearSeries("GOOG", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 50, 1)

	frame := Reshape(series)
	if len(frame) != series.Len() {
		t.Fatalf("reshape changed row count: %d -> %d", series.Len(), len(frame))
	}
	again := Reshape(SeriesFromFrame("GOOG", frame))
	if len(again) != len(frame) {
		t.Fatalf("round trip changed row count: %d -> %d", len(frame), len(again))
	}
	for i := range frame {
		if frame[i] != again[i] {
			t.Fatalf("row %d changed: %+v -> %+v", i, frame[i], again[i])
		}
	}
}

func TestNormalize(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	d := func(day int) time.Time { return time.Date(2024, time.April, day, 0, 0, 0, 0, time.UTC) }

	in := []models.MFrameRow{
		{DS: d(3), Y: 3},
		{DS: d(1), Y: 1},
		{DS: d(2), Y: math.NaN()},
		{DS: d(3), Y: 33},
		{DS: time.Date(2024, time.April, 4, 0, 0, 0, 0, ny), Y: 4},
		{DS: d(5), Y: math.Inf(1)},
	}
	got := Normalize(in)

	want := []models.MFrameRow{{DS: d(1), Y: 1}, {DS: d(3), Y: 33}, {DS: d(4), Y: 4}}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].DS.Equal(want[i].DS) || got[i].Y != want[i].Y || got[i].DS.Location() != time.UTC {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	twice := Normalize(got)
	if len(twice) != len(got) {
		t.Errorf("normalize is not idempotent")
	}
}

// -----------------------------------------------------------------------------

func TestDetectSeasonalities(t *testing.T) {
	first := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		span    time.Duration
		spacing time.Duration
		weekly  string
		want    []string
	}{
		{"four years daily", 4 * 365 * day, day, "auto", []string{"yearly", "weekly"}},
		{"one month daily", 30 * day, day, "auto", []string{"weekly"}},
		{"weekly bars", 300 * day, 7 * day, "auto", nil},
		{"weekly forced", 300 * day, 7 * day, "true", []string{"weekly"}},
		{"weekly disabled", 4 * 365 * day, day, "false", []string{"yearly"}},
		{"intraday", 3 * day, time.Hour, "auto", []string{"daily"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.WeeklySeasonality = tt.weekly
			got := detectSeasonalities(opts, first, first.Add(tt.span), tt.spacing)

			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i].Name != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
				if got[i].PriorScale != opts.SeasonalityPriorScale {
					t.Errorf("prior scale not applied to %s", got[i].Name)
				}
			}
		})
	}
}

func TestChangepointsStayInRange(t *testing.T) {
	start := time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC)
	model := NewModel(DefaultOptions())
	if err := model.Fit(Reshape(linearSeries("AAPL", start, 100, 1))); err != nil {
		t.Fatal(err)
	}

	cps := model.Changepoints()
	if len(cps) != 25 {
		t.Fatalf("expected 25 changepoints, got %d", len(cps))
	}
	limit := start.AddDate(0, 0, 80)
	for i, c := range cps {
		if !c.After(start) || !c.Before(limit) {
			t.Errorf("changepoint %d at %v outside the first 80%% of history", i, c)
		}
		if i > 0 && !c.After(cps[i-1]) {
			t.Errorf("changepoints not increasing at %d", i)
		}
	}
}

func TestModelRejectsSecondFitAndEarlyPredict(t *testing.T) {
	model := NewModel(DefaultOptions())
	if _, err := model.Predict([]time.Time{time.Now()}); err == nil {
		t.Error("predict before fit should fail")
	}
	if _, err := model.MakeFutureDataFrame(5, true); err == nil {
		t.Error("future frame before fit should fail")
	}

	frame := Reshape(linearSeries("AAPL", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 10, 1))
	if err := model.Fit(frame); err != nil {
		t.Fatal(err)
	}
	if err := model.Fit(frame); err == nil {
		t.Error("second fit should fail")
	}

	withHistory, err := model.MakeFutureDataFrame(5, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(withHistory) != len(frame)+5 {
		t.Errorf("expected %d dates, got %d", len(frame)+5, len(withHistory))
	}

	dates, err := model.MakeFutureDataFrame(5, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 5 || !dates[0].Equal(frame[len(frame)-1].DS.AddDate(0, 0, 1)) {
		t.Errorf("unexpected future dates %v", dates)
	}
}
