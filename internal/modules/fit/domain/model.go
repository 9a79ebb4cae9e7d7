package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	apperrors "peaklab/internal/platform/errors"
	"peaklab/internal/platform/kind"
)

var ErrPeakFit = errors.New("peak fit failed")

type PeakFitError struct {
	Reason string
}

func (e *PeakFitError) Error() string {
	return "peak fit failed: " + e.Reason
}

func (e *PeakFitError) Is(target error) bool {
	return target == ErrPeakFit
}

func FitError(format string, args ...any) error {
	return &PeakFitError{Reason: fmt.Sprintf(format, args...)}
}

// Model is a three parameter peak shape. Parameters are ordered
// amplitude, width, centre.
type Model string

const (
	Lorentzian Model = "lorentzian"
	Gaussian   Model = "gaussian"
)

const ParamCount = 3

// ModelFor picks the sharp shape for spectra and the broad one for
// voltammograms.
func ModelFor(k kind.Kind) Model {
	if k == kind.Nova {
		return Gaussian
	}
	return Lorentzian
}

func ParseModel(value string) (Model, error) {
	switch Model(strings.ToLower(strings.TrimSpace(value))) {
	case Lorentzian, "lorentz":
		return Lorentzian, nil
	case Gaussian, "gauss":
		return Gaussian, nil
	default:
		return "", fmt.Errorf("%w: unknown model %q", apperrors.ErrInvalidInput, value)
	}
}

type Params struct {
	Amplitude float64
	Width     float64
	Centre    float64
}

func (p Params) Vector() []float64 {
	return []float64{p.Amplitude, p.Width, p.Centre}
}

func ParamsFrom(v []float64) Params {
	return Params{Amplitude: v[0], Width: v[1], Centre: v[2]}
}

func (p Params) Finite() bool {
	for _, v := range p.Vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (m Model) Eval(x float64, p Params) float64 {
	d := x - p.Centre
	switch m {
	case Gaussian:
		z := d / p.Width
		return p.Amplitude * math.Exp(-0.5*z*z)
	default:
		h := p.Width / 2
		return p.Amplitude * (h / (d*d + h*h))
	}
}

// Gradient writes the partial derivatives of Eval with respect to
// amplitude, width and centre into grad.
func (m Model) Gradient(x float64, p Params, grad []float64) {
	d := x - p.Centre
	switch m {
	case Gaussian:
		z := d / p.Width
		e := math.Exp(-0.5 * z * z)
		grad[0] = e
		grad[1] = p.Amplitude * e * z * z / p.Width
		grad[2] = p.Amplitude * e * z / p.Width
	default:
		h := p.Width / 2
		den := d*d + h*h
		grad[0] = h / den
		grad[1] = p.Amplitude * 0.5 * (d*d - h*h) / (den * den)
		grad[2] = p.Amplitude * 2 * h * d / (den * den)
	}
}

type Result struct {
	Model      Model
	Params     Params
	Peak       float64
	Inverted   bool
	Iterations int
}
