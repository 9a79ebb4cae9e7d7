package in

import (
	"context"

	scandto "peaklab/internal/modules/scan/dto"
	scanin "peaklab/internal/modules/scan/port/in"
)

type CLIHandler struct {
	usecase scanin.Usecase
}

func NewCLIHandler(usecase scanin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Encode(ctx context.Context, scans []int) (scandto.SelectionOutput, error) {
	return h.usecase.Encode(ctx, scans)
}

func (h CLIHandler) Decode(ctx context.Context, text string) (scandto.SelectionOutput, error) {
	return h.usecase.Decode(ctx, text)
}
