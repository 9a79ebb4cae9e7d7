package in

import (
	"context"
	"io"

	"peaklab/internal/modules/analysis/dto"
	analysisin "peaklab/internal/modules/analysis/port/in"
)

type TUIHandler struct {
	usecase analysisin.Usecase
}

func NewTUIHandler(usecase analysisin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Open(ctx context.Context, path string) (dto.StateOutput, error) {
	return h.usecase.Open(ctx, path)
}

func (h TUIHandler) SelectScans(ctx context.Context, text string) (dto.StateOutput, error) {
	return h.usecase.SelectScans(ctx, text)
}

func (h TUIHandler) AddPeak(ctx context.Context) (dto.StateOutput, error) {
	return h.usecase.AddPeak(ctx)
}

func (h TUIHandler) ArmBound(ctx context.Context, peak, which int) (dto.StateOutput, error) {
	return h.usecase.ArmBound(ctx, peak, which)
}

func (h TUIHandler) PickPoint(ctx context.Context, index int) (dto.StateOutput, error) {
	return h.usecase.PickPoint(ctx, index)
}

func (h TUIHandler) DeletePeak(ctx context.Context, peak int) (dto.StateOutput, error) {
	return h.usecase.DeletePeak(ctx, peak)
}

func (h TUIHandler) Save(ctx context.Context) (dto.StateOutput, error) {
	return h.usecase.Save(ctx)
}

func (h TUIHandler) Plot(ctx context.Context, w io.Writer) error {
	return h.usecase.Render(ctx, w)
}
