package utils

import (
	"testing"
	"time"

	"stock-predictor/src/logger"
)

func TestDefaultTickers(t *testing.T) {
	tickers := DefaultTickers()
	if len(tickers) != 7 {
		t.Fatalf("expected 7 tickers, got %d", len(tickers))
	}
	if tickers[0] != "BTC-USD" {
		t.Errorf("first ticker should be the default selection, got %s", tickers[0])
	}

	tickers[0] = "XXX"
	if DefaultTickers()[0] != "BTC-USD" {
		t.Error("DefaultTickers must return a copy")
	}
}

func TestContains(t *testing.T) {
	if !Contains(DefaultTickers(), "AAPL") {
		t.Error("AAPL should be listed")
	}
	if Contains(DefaultTickers(), "aapl") {
		t.Error("lookup is case sensitive")
	}
}

func TestIsCrypto(t *testing.T) {
	if !IsCrypto("BTC-USD") {
		t.Error("BTC-USD is crypto")
	}
	if IsCrypto("AAPL") || IsCrypto("GOOG") {
		t.Error("equities are not crypto")
	}
}

func TestTradingDay(t *testing.T) {
	naive := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	nyse := GetCalendar("AAPL")
	if !nyse.IsTradingDay(naive(2024, time.March, 6)) {
		t.Error("Wednesday 2024-03-06 should be a trading day")
	}
	if nyse.IsTradingDay(naive(2024, time.March, 9)) {
		t.Error("Saturday should not be a trading day")
	}
	if nyse.IsTradingDay(naive(2024, time.December, 25)) {
		t.Error("Christmas should not be a trading day")
	}

	crypto := GetCalendar("BTC-USD")
	if !crypto.IsTradingDay(naive(2024, time.March, 9)) {
		t.Error("crypto trades on weekends")
	}
}

func TestFallbackCalendar(t *testing.T) {
	cal := fallbackCalendar("xxxx", logger.NewLogger(nil, "TradingCalendar"))
	if !cal.Fallback || cal.Calendar != nil {
		t.Fatalf("expected a weekday fallback, got %+v", cal)
	}

	for day, want := range map[int]bool{6: true, 8: true, 9: false, 10: false, 11: true} {
		date := time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC)
		if got := cal.IsTradingDay(date); got != want {
			t.Errorf("%s: got %v, want %v", date.Format("Mon 2006-01-02"), got, want)
		}
	}
}
