package in

import (
	"context"

	"peaklab/internal/modules/fit/dto"
	fitin "peaklab/internal/modules/fit/port/in"
)

type CLIHandler struct {
	usecase fitin.Usecase
}

func NewCLIHandler(usecase fitin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Fit(ctx context.Context, x, y []float64, from, to int, model string) (dto.FitOutput, error) {
	return h.usecase.Fit(ctx, dto.FitInput{X: x, Y: y, From: from, To: to, Model: model})
}
