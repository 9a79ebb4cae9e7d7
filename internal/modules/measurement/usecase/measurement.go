package usecase

import (
	"context"

	"peaklab/internal/modules/measurement/domain"
	"peaklab/internal/modules/measurement/dto"
	measurementin "peaklab/internal/modules/measurement/port/in"
	"peaklab/internal/modules/measurement/service"
	"peaklab/internal/platform/kind"
)

type Interactor struct {
	svc *service.MeasurementService
}

func NewInteractor(svc *service.MeasurementService) measurementin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Open(ctx context.Context, input dto.OpenInput) (dto.DatasetOutput, error) {
	k, err := kind.Parse(input.Kind)
	if err != nil {
		return dto.DatasetOutput{}, err
	}
	ds, err := i.svc.Open(ctx, input.Path, k)
	if err != nil {
		return dto.DatasetOutput{}, err
	}
	return toOutput(ds), nil
}

func toOutput(ds domain.Dataset) dto.DatasetOutput {
	out := dto.DatasetOutput{
		Kind:       ds.Kind.String(),
		SourcePath: ds.SourcePath,
		Scans:      ds.Scans(),
		Curves:     make(map[int]dto.CurveOutput, len(ds.Curves)),
	}
	for scan, c := range ds.Curves {
		out.Curves[scan] = dto.CurveOutput{X: c.X, Y: c.Y}
	}
	return out
}
