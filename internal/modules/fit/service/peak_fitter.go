package service

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"peaklab/internal/modules/fit/domain"
)

const (
	ResampleCount  = 1000
	defaultTol     = 1.49012e-8
	initialDamping = 1e-3
	maxDamping     = 1e16
)

type PeakFitter struct {
	maxIterations int
	tolerance     float64
}

func NewPeakFitter() *PeakFitter {
	return &PeakFitter{maxIterations: 200 * (domain.ParamCount + 1), tolerance: defaultTol}
}

// Fit fits model to x[lo:hi], y[lo:hi] and returns the x of the first
// local maximum of the fitted curve resampled over the window. A window
// whose first sample is its maximum is treated as a valley and negated.
func (f *PeakFitter) Fit(x, y []float64, lo, hi int, model domain.Model) (domain.Result, error) {
	if len(x) != len(y) {
		return domain.Result{}, domain.FitError("x has %d samples, y has %d", len(x), len(y))
	}
	if lo < 0 || hi > len(x) || lo >= hi {
		return domain.Result{}, domain.FitError("window [%d, %d) outside curve of %d samples", lo, hi, len(x))
	}
	if hi-lo < domain.ParamCount {
		return domain.Result{}, domain.FitError("window has %d samples, need at least %d", hi-lo, domain.ParamCount)
	}
	wx := append([]float64(nil), x[lo:hi]...)
	wy := append([]float64(nil), y[lo:hi]...)
	for i := range wx {
		if !finite(wx[i]) || !finite(wy[i]) {
			return domain.Result{}, domain.FitError("window contains non-finite samples")
		}
	}
	first, last := wx[0], wx[len(wx)-1]
	if first == last || floats.Max(wx) == floats.Min(wx) {
		return domain.Result{}, domain.FitError("window has zero x span")
	}
	if floats.Max(wy) == floats.Min(wy) {
		return domain.Result{}, domain.FitError("window is flat")
	}

	inverted := wy[0] >= floats.Max(wy)
	if inverted {
		floats.Scale(-1, wy)
	}

	guess := domain.Params{Amplitude: 1, Width: math.Abs(first - last), Centre: (first + last) / 2}
	params, iterations, err := f.solve(wx, wy, guess, model)
	if err != nil {
		return domain.Result{}, err
	}

	xs := make([]float64, ResampleCount)
	floats.Span(xs, first, last)
	ys := make([]float64, ResampleCount)
	for i, v := range xs {
		ys[i] = model.Eval(v, params)
	}
	idx, ok := firstLocalMax(ys)
	if !ok {
		return domain.Result{}, domain.FitError("fitted curve has no local maximum inside the window")
	}
	return domain.Result{
		Model:      model,
		Params:     params,
		Peak:       xs[idx],
		Inverted:   inverted,
		Iterations: iterations,
	}, nil
}

// solve runs Levenberg-Marquardt on the sum of squared residuals, scaling
// the damping term by the diagonal of JᵀJ.
func (f *PeakFitter) solve(x, y []float64, guess domain.Params, model domain.Model) (domain.Params, int, error) {
	n := len(x)
	p := guess.Vector()
	jac := mat.NewDense(n, domain.ParamCount, nil)
	res := mat.NewVecDense(n, nil)
	grad := make([]float64, domain.ParamCount)

	cost := f.residuals(x, y, p, model, res)
	if !finite(cost) {
		return domain.Params{}, 0, domain.FitError("initial guess gives non-finite residuals")
	}
	lambda := initialDamping
	var jtj mat.Dense
	var jtr mat.VecDense
	var delta mat.VecDense
	trial := make([]float64, domain.ParamCount)
	trialRes := mat.NewVecDense(n, nil)

	for iter := 1; iter <= f.maxIterations; iter++ {
		params := domain.ParamsFrom(p)
		for i, xi := range x {
			model.Gradient(xi, params, grad)
			jac.SetRow(i, grad)
		}
		jtj.Mul(jac.T(), jac)
		jtr.MulVec(jac.T(), res)

		improved := false
		for !improved {
			if lambda > maxDamping {
				// No step reduces the cost any more: p is a minimum.
				return domain.ParamsFrom(p), iter, checkFinite(p)
			}
			damped := mat.DenseCopyOf(&jtj)
			for k := 0; k < domain.ParamCount; k++ {
				d := jtj.At(k, k)
				if d < 1e-12 {
					d = 1e-12
				}
				damped.Set(k, k, d*(1+lambda))
			}
			if err := delta.SolveVec(damped, &jtr); err != nil {
				lambda *= 10
				continue
			}
			for k := range trial {
				trial[k] = p[k] + delta.AtVec(k)
			}
			trialCost := f.residuals(x, y, trial, model, trialRes)
			if !finite(trialCost) || trialCost >= cost {
				lambda *= 10
				continue
			}
			improved = true
			reduction := (cost - trialCost) / math.Max(cost, math.SmallestNonzeroFloat64)
			stepNorm := floats.Norm(delta.RawVector().Data, 2)
			paramNorm := floats.Norm(p, 2)
			copy(p, trial)
			res.CopyVec(trialRes)
			cost = trialCost
			lambda /= 10
			if cost == 0 {
				return domain.ParamsFrom(p), iter, checkFinite(p)
			}
			// Only near Gauss-Newton steps count toward convergence.
			if lambda > 1 {
				continue
			}
			if reduction <= f.tolerance || stepNorm <= f.tolerance*(paramNorm+f.tolerance) {
				return domain.ParamsFrom(p), iter, checkFinite(p)
			}
		}
	}
	return domain.Params{}, f.maxIterations, domain.FitError("no convergence after %d iterations", f.maxIterations)
}

func (f *PeakFitter) residuals(x, y, p []float64, model domain.Model, out *mat.VecDense) float64 {
	params := domain.ParamsFrom(p)
	cost := 0.0
	for i, xi := range x {
		r := y[i] - model.Eval(xi, params)
		out.SetVec(i, r)
		cost += r * r
	}
	return cost
}

func checkFinite(p []float64) error {
	if !domain.ParamsFrom(p).Finite() {
		return domain.FitError("fitted parameters are not finite")
	}
	return nil
}

// firstLocalMax returns the first interior sample strictly higher than its
// left neighbour and higher than the first differing sample to its right.
// Plateaus resolve to their middle sample. Edges never qualify.
func firstLocalMax(ys []float64) (int, bool) {
	i := 1
	last := len(ys) - 1
	for i < last {
		if ys[i-1] < ys[i] {
			ahead := i + 1
			for ahead < last && ys[ahead] == ys[i] {
				ahead++
			}
			if ys[ahead] < ys[i] {
				return (i + ahead - 1) / 2, true
			}
			i = ahead
			continue
		}
		i++
	}
	return 0, false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
