package in

import (
	"context"

	"peaklab/internal/modules/tree/dto"
)

type Usecase interface {
	List(ctx context.Context, input dto.TreeInput) (dto.TreeOutput, error)
	Reconcile(ctx context.Context, input dto.TreeInput) (dto.ReportOutput, error)
	ReconcileAll(ctx context.Context) ([]dto.ReportOutput, error)
	// Refresh reconciles whichever tree holds path.
	Refresh(ctx context.Context, path string) (dto.ReportOutput, error)
	Delete(ctx context.Context, input dto.DeleteInput) (dto.ReportOutput, error)
}
