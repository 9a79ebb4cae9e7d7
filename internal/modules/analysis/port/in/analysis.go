package in

import (
	"context"
	"io"

	"peaklab/internal/modules/analysis/dto"
)

// Usecase drives one open analysis at a time.
type Usecase interface {
	// Open starts an analysis of a raw file, or restores the one stored in
	// a saved session file.
	Open(ctx context.Context, path string) (dto.StateOutput, error)
	Current(ctx context.Context) (dto.StateOutput, error)
	SelectScans(ctx context.Context, text string) (dto.StateOutput, error)
	AddPeak(ctx context.Context) (dto.StateOutput, error)
	ArmBound(ctx context.Context, peak, which int) (dto.StateOutput, error)
	PickPoint(ctx context.Context, index int) (dto.StateOutput, error)
	DeletePeak(ctx context.Context, peak int) (dto.StateOutput, error)
	Save(ctx context.Context) (dto.StateOutput, error)
	Render(ctx context.Context, w io.Writer) error
}
