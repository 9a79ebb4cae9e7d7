package in

import (
	"context"

	sessiondto "peaklab/internal/modules/session/dto"
	sessionin "peaklab/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Save(ctx context.Context, input sessiondto.SaveInput) (sessiondto.SaveOutput, error) {
	return h.usecase.Save(ctx, input)
}

func (h CLIHandler) Show(ctx context.Context, path string) (sessiondto.SessionOutput, error) {
	return h.usecase.Load(ctx, path)
}

func (h CLIHandler) Reindex(ctx context.Context) (sessiondto.ReindexOutput, error) {
	return h.usecase.Reindex(ctx)
}

func (h CLIHandler) Peaks(ctx context.Context, kind string) ([]sessiondto.PeakRow, error) {
	return h.usecase.ListPeaks(ctx, kind)
}

func (h CLIHandler) Export(ctx context.Context, dest string) (sessiondto.ExportOutput, error) {
	return h.usecase.Export(ctx, dest)
}
