package usecase

import (
	"context"

	"peaklab/internal/modules/fit/domain"
	"peaklab/internal/modules/fit/dto"
	fitin "peaklab/internal/modules/fit/port/in"
	"peaklab/internal/modules/fit/service"
)

type Interactor struct {
	fitter *service.PeakFitter
}

func NewInteractor(fitter *service.PeakFitter) fitin.Usecase {
	return &Interactor{fitter: fitter}
}

// Fit accepts the two boundary indices in either order; the window runs
// from the lower index up to but excluding the higher one.
func (i *Interactor) Fit(ctx context.Context, input dto.FitInput) (dto.FitOutput, error) {
	if err := ctx.Err(); err != nil {
		return dto.FitOutput{}, err
	}
	model, err := domain.ParseModel(input.Model)
	if err != nil {
		return dto.FitOutput{}, err
	}
	lo, hi := input.From, input.To
	if lo > hi {
		lo, hi = hi, lo
	}
	res, err := i.fitter.Fit(input.X, input.Y, lo, hi, model)
	if err != nil {
		return dto.FitOutput{}, err
	}
	return dto.FitOutput{
		Model:     string(res.Model),
		Peak:      res.Peak,
		Amplitude: res.Params.Amplitude,
		Width:     res.Params.Width,
		Centre:    res.Params.Centre,
		Inverted:  res.Inverted,
	}, nil
}
