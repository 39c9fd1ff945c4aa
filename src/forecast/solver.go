package forecast

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	maxIterations = 100
	tolerance     = 1e-8
	laplaceFloor  = 1e-6
	minVariance   = 1e-12
)

var errSingular = errors.New("normal equations are singular")

// penalties holds one prior per design column. Laplace columns ignore
// normalScale and use tau.
type penalties struct {
	normalScale []float64
	laplace     []bool
	tau         float64
}

type fitResult struct {
	beta  []float64
	sigma float64 // in scaled y units
}

func (r fitResult) dot(row []float64, from, to int) float64 {
	var v float64
	for i := from; i < to; i++ {
		v += r.beta[i] * row[i]
	}
	return v
}

// -----------------------------------------------------------------------------

// solveMAP maximizes the posterior
//
//	-|y - X b|^2 / (2 s^2) - sum b_i^2 / (2 v_i^2) - sum |d_j| / tau
//
// by iteratively reweighted ridge regression. Each round the Laplace
// terms are replaced by the quadratic that touches them at the current
// estimate and s^2 is re-estimated from the residuals.
func solveMAP(rows [][]float64, y []float64, pen penalties) (fitResult, error) {
	n := len(rows)
	if n == 0 {
		return fitResult{}, errSingular
	}
	p := len(rows[0])

	flat := make([]float64, 0, n*p)
	for _, r := range rows {
		flat = append(flat, r...)
	}
	x := mat.NewDense(n, p, flat)
	yv := mat.NewVecDense(n, y)

	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())
	var xty mat.VecDense
	xty.MulVec(x.T(), yv)

	weights := make([]float64, p)
	for i := range weights {
		switch {
		case pen.laplace[i]:
			weights[i] = 1 / (pen.tau * pen.tau)
		case pen.normalScale[i] > 0:
			weights[i] = 1 / (pen.normalScale[i] * pen.normalScale[i])
		}
	}

	variance := initialVariance(y)
	beta := make([]float64, p)
	var fitted mat.VecDense

	for iter := 0; iter < maxIterations; iter++ {
		a := mat.NewSymDense(p, nil)
		a.CopySym(&xtx)
		for i := 0; i < p; i++ {
			a.SetSym(i, i, a.At(i, i)+variance*weights[i])
		}

		next, err := solveSPD(a, &xty)
		if err != nil {
			return fitResult{}, err
		}

		var change float64
		for i := range beta {
			change = math.Max(change, math.Abs(next[i]-beta[i]))
		}
		beta = next

		fitted.MulVec(x, mat.NewVecDense(p, beta))
		var rss float64
		for i := 0; i < n; i++ {
			d := y[i] - fitted.AtVec(i)
			rss += d * d
		}
		variance = math.Max(rss/float64(n), minVariance)

		for i := range weights {
			if pen.laplace[i] {
				weights[i] = 1 / (pen.tau * math.Max(math.Abs(beta[i]), laplaceFloor))
			}
		}

		if iter > 0 && change < tolerance {
			break
		}
	}

	return fitResult{beta: beta, sigma: math.Sqrt(variance)}, nil
}

// -----------------------------------------------------------------------------

// solveSPD solves a*b = rhs, adding diagonal jitter when a is numerically
// indefinite and falling back to a general solve as a last resort.
func solveSPD(a *mat.SymDense, rhs *mat.VecDense) ([]float64, error) {
	p, _ := a.Dims()
	var out mat.VecDense

	var trace float64
	for i := 0; i < p; i++ {
		trace += a.At(i, i)
	}
	jitter := 1e-12 * math.Max(trace/float64(p), 1)

	for attempt := 0; attempt < 4; attempt++ {
		var chol mat.Cholesky
		if chol.Factorize(a) {
			if err := chol.SolveVecTo(&out, rhs); err == nil {
				return vecData(&out), nil
			}
		}
		for i := 0; i < p; i++ {
			a.SetSym(i, i, a.At(i, i)+jitter)
		}
		jitter *= 100
	}

	if err := out.SolveVec(a, rhs); err != nil {
		return nil, errors.Join(errSingular, err)
	}
	return vecData(&out), nil
}

func vecData(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}

func initialVariance(y []float64) float64 {
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))
	var ss float64
	for _, v := range y {
		ss += (v - mean) * (v - mean)
	}
	return math.Max(ss/float64(len(y)), minVariance)
}
