package in

import (
	"context"

	"peaklab/internal/modules/fit/dto"
)

type Usecase interface {
	Fit(ctx context.Context, input dto.FitInput) (dto.FitOutput, error)
}
