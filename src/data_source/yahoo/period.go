package yahoo

import (
	"strconv"
	"strings"
	"time"

	"stock-predictor/src/helpers"
)

// Window is the resolved lookback sent to the chart endpoint. Either Range
// is set (provider-side ranges) or Start/End bound the query.
type Window struct {
	Range string
	Start time.Time
	End   time.Time
}

// Params renders the window as chart query parameters.
func (w Window) Params() map[string]string {
	if w.Range != "" {
		return map[string]string{"range": w.Range}
	}
	return map[string]string{
		"period1": strconv.FormatInt(w.Start.Unix(), 10),
		"period2": strconv.FormatInt(w.End.Unix(), 10),
	}
}

// -----------------------------------------------------------------------------

// ParsePeriod resolves a lookback such as "5d", "6wk", "3mo", "4y", "ytd" or
// "max" relative to now.
func ParsePeriod(period string, now time.Time) (Window, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	switch p {
	case "":
		return Window{}, helpers.NewValidationError("empty period")
	case "ytd", "max":
		return Window{Range: p}, nil
	}

	unit := ""
	for _, u := range []string{"wk", "mo", "d", "y"} {
		if strings.HasSuffix(p, u) {
			unit = u
			break
		}
	}
	if unit == "" {
		return Window{}, helpers.NewValidationError("unsupported period %q", period)
	}

	n, err := strconv.Atoi(strings.TrimSuffix(p, unit))
	if err != nil || n <= 0 {
		return Window{}, helpers.NewValidationError("unsupported period %q", period)
	}

	end := now.UTC()
	var start time.Time
	switch unit {
	case "d":
		start = end.AddDate(0, 0, -n)
	case "wk":
		start = end.AddDate(0, 0, -7*n)
	case "mo":
		start = end.AddDate(0, -n, 0)
	case "y":
		start = end.AddDate(-n, 0, 0)
	}

	return Window{Start: start, End: end}, nil
}
