package forecast

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"stock-predictor/src/models"
)

// fillIntervals sets the lower/upper bounds of yhat and trend by simulating
// future trend changes and observation noise. ts holds the scaled time of
// every point, seasonal the summed seasonal terms in price units.
func (m *Model) fillIntervals(points []models.MForecastPoint, ts, seasonal []float64) {
	samples := m.opts.UncertaintySamples
	if samples <= 0 || len(points) == 0 {
		for i := range points {
			p := &points[i]
			p.YHatLower, p.YHatUpper = p.YHat, p.YHat
			p.TrendLower, p.TrendUpper = p.Trend, p.Trend
		}
		return
	}

	src := rand.NewPCG(m.opts.Seed, m.opts.Seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)

	tMax := 1.0
	for _, t := range ts {
		tMax = math.Max(tMax, t)
	}

	nCp := len(m.changepoints)
	var meanDelta float64
	for i := 0; i < nCp; i++ {
		meanDelta += math.Abs(m.params.beta[2+i])
	}
	if nCp > 0 {
		meanDelta /= float64(nCp)
	}

	changes := distuv.Poisson{Lambda: float64(nCp) * (tMax - 1), Src: src}
	magnitude := distuv.Laplace{Mu: 0, Scale: meanDelta + 1e-8, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: m.Sigma(), Src: src}
	if noise.Sigma <= 0 {
		noise.Sigma = 1e-12
	}

	trendSamples := make([][]float64, len(points))
	yhatSamples := make([][]float64, len(points))
	for i := range points {
		trendSamples[i] = make([]float64, samples)
		yhatSamples[i] = make([]float64, samples)
	}

	var cps, deltas []float64
	for s := 0; s < samples; s++ {
		cps, deltas = cps[:0], deltas[:0]
		if changes.Lambda > 0 {
			k := int(changes.Rand())
			for j := 0; j < k; j++ {
				cps = append(cps, 1+rng.Float64()*(tMax-1))
				deltas = append(deltas, magnitude.Rand())
			}
		}

		for i, t := range ts {
			extra := 0.0
			for j, c := range cps {
				if t > c {
					extra += deltas[j] * (t - c)
				}
			}
			trend := points[i].Trend + extra*m.yScale
			trendSamples[i][s] = trend
			yhatSamples[i][s] = trend + seasonal[i] + noise.Rand()
		}
	}

	lowerQ := (1 - m.opts.IntervalWidth) / 2
	upperQ := 1 - lowerQ
	for i := range points {
		p := &points[i]
		p.TrendLower, p.TrendUpper = bounds(trendSamples[i], lowerQ, upperQ)
		p.YHatLower, p.YHatUpper = bounds(yhatSamples[i], lowerQ, upperQ)
	}
}

func bounds(x []float64, lo, hi float64) (float64, float64) {
	sort.Float64s(x)
	return stat.Quantile(lo, stat.LinInterp, x, nil), stat.Quantile(hi, stat.LinInterp, x, nil)
}
