package service

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	apperrors "peaklab/internal/platform/errors"
)

// Smoother is a Savitzky-Golay filter. Samples beyond either edge take the
// value of the nearest edge sample.
type Smoother struct {
	coeffs []float64
}

// NewSmoother builds the filter for an odd window and a polynomial order
// below it. A zero window disables smoothing.
func NewSmoother(window, order int) (*Smoother, error) {
	if window == 0 {
		return &Smoother{}, nil
	}
	if window < 1 || window%2 == 0 || order < 0 || order >= window {
		return nil, fmt.Errorf("%w: savitzky-golay window %d order %d", apperrors.ErrInvalidInput, window, order)
	}
	half := window / 2
	vander := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		for j := 0; j <= order; j++ {
			vander.Set(i, j, math.Pow(float64(i-half), float64(j)))
		}
	}
	var normal mat.Dense
	normal.Mul(vander.T(), vander)
	unit := mat.NewVecDense(order+1, nil)
	unit.SetVec(0, 1)
	var sol mat.VecDense
	if err := sol.SolveVec(&normal, unit); err != nil {
		return nil, fmt.Errorf("solve savitzky-golay normal equations: %w", err)
	}
	var coeffs mat.VecDense
	coeffs.MulVec(vander, &sol)
	return &Smoother{coeffs: append([]float64(nil), coeffs.RawVector().Data...)}, nil
}

func (s *Smoother) Coefficients() []float64 {
	return append([]float64(nil), s.coeffs...)
}

func (s *Smoother) Apply(y []float64) []float64 {
	out := make([]float64, len(y))
	if len(s.coeffs) == 0 || len(y) == 0 {
		copy(out, y)
		return out
	}
	half := len(s.coeffs) / 2
	window := make([]float64, len(s.coeffs))
	last := len(y) - 1
	for i := range y {
		for k := range window {
			j := min(max(i+k-half, 0), last)
			window[k] = y[j]
		}
		out[i] = floats.Dot(s.coeffs, window)
	}
	return out
}
