package in

import (
	"context"

	"peaklab/internal/modules/measurement/dto"
)

type Usecase interface {
	Open(ctx context.Context, input dto.OpenInput) (dto.DatasetOutput, error)
}
