// Package forecast implements an additive time-series model: a piecewise
// linear trend with automatically placed changepoints plus Fourier
// seasonalities, fitted by penalized least squares.
//
// The trend is
//
//	g(t) = m + k*t + sum_j delta_j * max(t - s_j, 0)
//
// with t scaled to [0, 1] over the history and a Laplace prior on delta_j.
// Seasonal terms carry Normal priors. y is scaled by max|y| before fitting.
package forecast

import (
	"fmt"
	"math"
	"time"

	"stock-predictor/src/helpers"
	"stock-predictor/src/models"
)

// Options are the model tunables. Seasonality modes are "auto", "true" or
// "false".
type Options struct {
	NChangepoints         int
	ChangepointRange      float64
	ChangepointPriorScale float64
	SeasonalityPriorScale float64
	IntervalWidth         float64
	UncertaintySamples    int
	Seed                  uint64
	YearlySeasonality     string
	WeeklySeasonality     string
	DailySeasonality      string
}

func DefaultOptions() Options {
	return Options{
		NChangepoints:         25,
		ChangepointRange:      0.8,
		ChangepointPriorScale: 0.05,
		SeasonalityPriorScale: 10,
		IntervalWidth:         0.8,
		UncertaintySamples:    1000,
		Seed:                  42,
		YearlySeasonality:     "auto",
		WeeklySeasonality:     "auto",
		DailySeasonality:      "auto",
	}
}

// OptionsFromConfig maps the YAML section onto Options.
func OptionsFromConfig(cfg models.MForecastConfig) Options {
	return Options{
		NChangepoints:         cfg.NChangepoints,
		ChangepointRange:      cfg.ChangepointRange,
		ChangepointPriorScale: cfg.ChangepointPriorScale,
		SeasonalityPriorScale: cfg.SeasonalityPriorScale,
		IntervalWidth:         cfg.IntervalWidth,
		UncertaintySamples:    cfg.UncertaintySamples,
		Seed:                  cfg.Seed,
		YearlySeasonality:     cfg.YearlySeasonality,
		WeeklySeasonality:     cfg.WeeklySeasonality,
		DailySeasonality:      cfg.DailySeasonality,
	}
}

// -----------------------------------------------------------------------------

// Model is fitted once and then asked for predictions. It is not safe for
// concurrent Fit calls.
type Model struct {
	opts Options

	history      []models.MFrameRow
	historyDates []time.Time // every distinct input date, unobserved rows included
	start        time.Time
	tScale       float64 // seconds
	yScale       float64
	changepoints []float64 // in scaled t
	seasons      []seasonality

	params fitResult
	fitted bool
}

func NewModel(opts Options) *Model {
	return &Model{opts: opts}
}

// -----------------------------------------------------------------------------

// Fit estimates the MAP parameters on the finite rows of frame. Dates of
// rows with a missing value still count as history.
func (m *Model) Fit(frame []models.MFrameRow) error {
	if m.fitted {
		return helpers.NewForecastError("model has already been fit", nil)
	}

	history := Normalize(frame)
	if len(history) < 2 {
		return helpers.NewForecastError("frame has less than 2 non-NaN rows", nil)
	}

	m.history = history
	m.historyDates = distinctDates(frame)
	m.start = history[0].DS
	m.tScale = history[len(history)-1].DS.Sub(m.start).Seconds()

	for _, r := range history {
		if a := math.Abs(r.Y); a > m.yScale {
			m.yScale = a
		}
	}
	if m.yScale == 0 {
		m.yScale = 1
	}

	m.changepoints = m.placeChangepoints()

	minSpacing := time.Duration(math.MaxInt64)
	for i := 1; i < len(history); i++ {
		if d := history[i].DS.Sub(history[i-1].DS); d < minSpacing {
			minSpacing = d
		}
	}
	m.seasons = detectSeasonalities(m.opts, history[0].DS, history[len(history)-1].DS, minSpacing)

	rows := make([][]float64, len(history))
	y := make([]float64, len(history))
	for i, r := range history {
		rows[i] = m.featureRow(r.DS)
		y[i] = r.Y / m.yScale
	}

	res, err := solveMAP(rows, y, m.penaltyLayout())
	if err != nil {
		return helpers.NewForecastError("optimization failed", err)
	}
	m.params = res
	m.fitted = true
	return nil
}

// -----------------------------------------------------------------------------

// placeChangepoints spreads candidate changepoints evenly over the first
// ChangepointRange share of the history rows.
func (m *Model) placeChangepoints() []float64 {
	n := m.opts.NChangepoints
	histSize := int(math.Floor(float64(len(m.history)) * m.opts.ChangepointRange))
	if n+1 > histSize {
		n = histSize - 1
	}
	if n <= 0 {
		return nil
	}

	cps := make([]float64, 0, n)
	last := -1
	for i := 1; i <= n; i++ {
		idx := int(math.RoundToEven(float64(i) * float64(histSize-1) / float64(n)))
		if idx == last {
			continue
		}
		last = idx
		cps = append(cps, m.scaleT(m.history[idx].DS))
	}
	return cps
}

// -----------------------------------------------------------------------------

func (m *Model) scaleT(ds time.Time) float64 {
	return ds.Sub(m.start).Seconds() / m.tScale
}

// featureRow lays out [1, t, hinge..., fourier...] for one date.
func (m *Model) featureRow(ds time.Time) []float64 {
	t := m.scaleT(ds)
	row := make([]float64, 0, m.width())
	row = append(row, 1, t)
	for _, s := range m.changepoints {
		row = append(row, math.Max(t-s, 0))
	}
	for _, s := range m.seasons {
		row = fourierRow(row, ds, s.Period, s.Order)
	}
	return row
}

func (m *Model) width() int {
	w := 2 + len(m.changepoints)
	for _, s := range m.seasons {
		w += 2 * s.Order
	}
	return w
}

// penaltyLayout describes the prior of every column of featureRow.
func (m *Model) penaltyLayout() penalties {
	p := penalties{
		normalScale: make([]float64, 0, m.width()),
		laplace:     make([]bool, 0, m.width()),
		tau:         m.opts.ChangepointPriorScale,
	}
	// k and m ~ Normal(0, 5)
	p.normalScale = append(p.normalScale, 5, 5)
	p.laplace = append(p.laplace, false, false)
	for range m.changepoints {
		p.normalScale = append(p.normalScale, 0)
		p.laplace = append(p.laplace, true)
	}
	for _, s := range m.seasons {
		for i := 0; i < 2*s.Order; i++ {
			p.normalScale = append(p.normalScale, s.PriorScale)
			p.laplace = append(p.laplace, false)
		}
	}
	return p
}

// -----------------------------------------------------------------------------

// MakeFutureDataFrame returns daily dates strictly after the last history
// date, optionally preceded by the history dates.
func (m *Model) MakeFutureDataFrame(periods int, includeHistory bool) ([]time.Time, error) {
	if !m.fitted {
		return nil, helpers.NewForecastError("model has not been fit", nil)
	}
	if periods < 0 {
		return nil, helpers.NewValidationError("periods cannot be negative: %d", periods)
	}

	var dates []time.Time
	if includeHistory {
		dates = make([]time.Time, 0, len(m.historyDates)+periods)
		dates = append(dates, m.historyDates...)
	}

	last := m.historyDates[len(m.historyDates)-1]
	for i := 1; i <= periods; i++ {
		dates = append(dates, last.AddDate(0, 0, i))
	}
	return dates, nil
}

// -----------------------------------------------------------------------------

// Predict evaluates the model on dates. Rows come back in input order.
func (m *Model) Predict(dates []time.Time) ([]models.MForecastPoint, error) {
	if !m.fitted {
		return nil, helpers.NewForecastError("model has not been fit", nil)
	}

	lastHistory := m.historyDates[len(m.historyDates)-1]
	points := make([]models.MForecastPoint, len(dates))
	ts := make([]float64, len(dates))
	seasonal := make([]float64, len(dates))

	for i, raw := range dates {
		ds := stripZone(raw)
		row := m.featureRow(ds)
		ts[i] = row[1]

		p := models.MForecastPoint{
			Date:      ds,
			IsHistory: !ds.After(lastHistory),
		}

		p.Trend = m.params.dot(row, 0, 2+len(m.changepoints)) * m.yScale

		col := 2 + len(m.changepoints)
		for _, s := range m.seasons {
			v := m.params.dot(row, col, col+2*s.Order) * m.yScale
			col += 2 * s.Order
			switch s.Name {
			case "yearly":
				p.Yearly = v
			case "weekly":
				p.Weekly = v
			case "daily":
				p.Daily = v
			}
			p.AdditiveTerms += v
		}

		p.YHat = p.Trend + p.AdditiveTerms
		seasonal[i] = p.AdditiveTerms
		points[i] = p
	}

	m.fillIntervals(points, ts, seasonal)
	return points, nil
}

// -----------------------------------------------------------------------------

// Sigma returns the fitted observation noise in price units.
func (m *Model) Sigma() float64 {
	return m.params.sigma * m.yScale
}

// Changepoints returns the changepoint dates used for the trend.
func (m *Model) Changepoints() []time.Time {
	out := make([]time.Time, len(m.changepoints))
	for i, c := range m.changepoints {
		out[i] = m.start.Add(time.Duration(c * m.tScale * float64(time.Second))).Round(time.Second)
	}
	return out
}

// Seasonalities lists the fitted seasonal terms.
func (m *Model) Seasonalities() []string {
	names := make([]string, len(m.seasons))
	for i, s := range m.seasons {
		names[i] = s.Name
	}
	return names
}

func (m *Model) String() string {
	return fmt.Sprintf("additive(changepoints=%d, seasonalities=%v, sigma=%.4f)", len(m.changepoints), m.Seasonalities(), m.Sigma())
}
