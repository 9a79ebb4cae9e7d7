package in

import (
	"context"

	"peaklab/internal/modules/session/dto"
)

type Usecase interface {
	Save(ctx context.Context, input dto.SaveInput) (dto.SaveOutput, error)
	Load(ctx context.Context, path string) (dto.SessionOutput, error)
	Reindex(ctx context.Context) (dto.ReindexOutput, error)
	ListPeaks(ctx context.Context, kind string) ([]dto.PeakRow, error)
	Export(ctx context.Context, dest string) (dto.ExportOutput, error)
}
