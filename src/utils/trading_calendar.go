package utils

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"

	"stock-predictor/src/logger"
)

// TradingCalendar answers whether an exchange trades on a given day.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	// AlwaysOpen is set for 24/7 instruments such as crypto pairs.
	AlwaysOpen bool
	Timezone   *time.Location
}

// suffix -> MIC (ISO 10383) as understood by scmhub/calendar
var micBySuffix = []struct {
	suffix string
	mic    string
}{
	{".L", "xlon"},
	{".PA", "xpar"},
	{".DE", "xfra"},
	{".AS", "xams"},
	{".MI", "xmil"},
	{".MC", "xmad"},
	{".SW", "xswx"},
	{".TO", "xtse"},
	{".T", "xtks"},
	{".HK", "xhkg"},
	{".AX", "xasx"},
	{".KS", "xkrx"},
	{".SS", "xshg"},
	{".SZ", "xshe"},
}

// -----------------------------------------------------------------------------

// IsCrypto reports whether the ticker is a crypto pair quoted against a fiat
// currency, e.g. BTC-USD.
func IsCrypto(symbol string) bool {
	for _, quote := range []string{"-USD", "-EUR", "-GBP", "-USDT"} {
		if strings.HasSuffix(symbol, quote) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

func GetCalendar(symbol string) *TradingCalendar {
	if IsCrypto(symbol) {
		return &TradingCalendar{AlwaysOpen: true, Timezone: time.UTC}
	}

	mic := "xnys" // Default US NYSE
	for _, m := range micBySuffix {
		if strings.HasSuffix(symbol, m.suffix) {
			mic = m.mic
			break
		}
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		return fallbackCalendar(mic, logger.NewLogger(nil, "TradingCalendar"))
	}

	return &TradingCalendar{Calendar: cal, Timezone: cal.Loc}
}

// fallbackCalendar trades Monday to Friday in New York time.
func fallbackCalendar(mic string, log *logger.Logger) *TradingCalendar {
	log.Warning("Failed to load calendar for MIC '%s' and fallback 'xnys'. Using Mon-Fri fallback.", mic)
	nyLoc, _ := time.LoadLocation("America/New_York")
	if nyLoc == nil {
		nyLoc = time.UTC
	}
	return &TradingCalendar{Fallback: true, Timezone: nyLoc}
}

// -----------------------------------------------------------------------------

// IsTradingDay interprets the calendar day of a naive date in the exchange
// timezone. Only year/month/day of the argument are used.
func (tc *TradingCalendar) IsTradingDay(naive time.Time) bool {
	if tc.AlwaysOpen {
		return true
	}

	loc := tc.Timezone
	if loc == nil {
		loc = time.UTC
	}
	// Noon keeps the day stable across DST transitions.
	date := time.Date(naive.Year(), naive.Month(), naive.Day(), 12, 0, 0, 0, loc)

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}
