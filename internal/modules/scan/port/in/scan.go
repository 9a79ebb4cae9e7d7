package in

import (
	"context"

	"peaklab/internal/modules/scan/dto"
)

type Usecase interface {
	Encode(ctx context.Context, scans []int) (dto.SelectionOutput, error)
	Decode(ctx context.Context, text string) (dto.SelectionOutput, error)
	Default(ctx context.Context, available []int) dto.SelectionOutput
}
