package in

import (
	"context"

	"peaklab/internal/modules/measurement/dto"
	measurementin "peaklab/internal/modules/measurement/port/in"
)

type CLIHandler struct {
	usecase measurementin.Usecase
}

func NewCLIHandler(usecase measurementin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Open(ctx context.Context, path, kind string) (dto.DatasetOutput, error) {
	return h.usecase.Open(ctx, dto.OpenInput{Path: path, Kind: kind})
}
