package forecast

import (
	"math"
	"strings"
	"time"
)

type seasonality struct {
	Name       string
	Period     float64 // days
	Order      int
	PriorScale float64
}

const day = 24 * time.Hour

// -----------------------------------------------------------------------------

// detectSeasonalities decides which of the yearly/weekly/daily terms to fit.
// "auto" enables a term when the history is long and dense enough to
// identify it.
func detectSeasonalities(opts Options, first, last time.Time, minSpacing time.Duration) []seasonality {
	span := last.Sub(first)

	candidates := []struct {
		mode   string
		s      seasonality
		autoOn bool
	}{
		{opts.YearlySeasonality, seasonality{Name: "yearly", Period: 365.25, Order: 10}, span >= 730*day},
		{opts.WeeklySeasonality, seasonality{Name: "weekly", Period: 7, Order: 3}, span >= 14*day && minSpacing < 7*day},
		{opts.DailySeasonality, seasonality{Name: "daily", Period: 1, Order: 4}, span >= 2*day && minSpacing < day},
	}

	var out []seasonality
	for _, c := range candidates {
		on := c.autoOn
		switch strings.ToLower(c.mode) {
		case "true":
			on = true
		case "false":
			on = false
		}
		if on {
			c.s.PriorScale = opts.SeasonalityPriorScale
			out = append(out, c.s)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// fourierRow appends sin/cos pairs for orders 1..order at the given date.
func fourierRow(dst []float64, ds time.Time, period float64, order int) []float64 {
	t := float64(ds.Unix()) / 86400.0
	for i := 1; i <= order; i++ {
		x := 2.0 * math.Pi * float64(i) * t / period
		dst = append(dst, math.Sin(x), math.Cos(x))
	}
	return dst
}
