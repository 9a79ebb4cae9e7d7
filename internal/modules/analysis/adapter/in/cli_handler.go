package in

import (
	"context"
	"fmt"
	"io"

	"peaklab/internal/modules/analysis/dto"
	analysisin "peaklab/internal/modules/analysis/port/in"
)

const (
	firstBound  = 1
	secondBound = 2
)

type CLIHandler struct {
	usecase analysisin.Usecase
}

func NewCLIHandler(usecase analysisin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Annotate opens raw, applies scanText when given, picks one peak per
// bound pair and saves the result.
func (h CLIHandler) Annotate(ctx context.Context, raw, scanText string, bounds [][2]int) (dto.StateOutput, error) {
	st, err := h.open(ctx, raw, scanText)
	if err != nil {
		return dto.StateOutput{}, err
	}
	for n, b := range bounds {
		if _, err := h.usecase.AddPeak(ctx); err != nil {
			return dto.StateOutput{}, fmt.Errorf("peak %d: %w", n+1, err)
		}
		peak := len(st.Peaks) + n
		for _, pick := range [][2]int{{firstBound, b[0]}, {secondBound, b[1]}} {
			if _, err := h.usecase.ArmBound(ctx, peak, pick[0]); err != nil {
				return dto.StateOutput{}, fmt.Errorf("peak %d: %w", n+1, err)
			}
			if _, err := h.usecase.PickPoint(ctx, pick[1]); err != nil {
				return dto.StateOutput{}, fmt.Errorf("peak %d: %w", n+1, err)
			}
		}
	}
	return h.usecase.Save(ctx)
}

func (h CLIHandler) Open(ctx context.Context, path, scanText string) (dto.StateOutput, error) {
	return h.open(ctx, path, scanText)
}

// Plot renders path with the given scan selection, or its own.
func (h CLIHandler) Plot(ctx context.Context, path, scanText string, w io.Writer) error {
	if _, err := h.open(ctx, path, scanText); err != nil {
		return err
	}
	return h.usecase.Render(ctx, w)
}

func (h CLIHandler) open(ctx context.Context, path, scanText string) (dto.StateOutput, error) {
	st, err := h.usecase.Open(ctx, path)
	if err != nil {
		return dto.StateOutput{}, err
	}
	if scanText == "" {
		return st, nil
	}
	st, err = h.usecase.SelectScans(ctx, scanText)
	if err != nil {
		return dto.StateOutput{}, err
	}
	if st.ScanError != "" {
		return dto.StateOutput{}, fmt.Errorf("scans %q: %s", scanText, st.ScanError)
	}
	return st, nil
}
