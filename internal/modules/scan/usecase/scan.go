package usecase

import (
	"context"
	"fmt"

	"peaklab/internal/modules/scan/domain"
	"peaklab/internal/modules/scan/dto"
	scanin "peaklab/internal/modules/scan/port/in"
	apperrors "peaklab/internal/platform/errors"
)

type Interactor struct {
	defaults domain.Selection
}

func NewInteractor(defaults []int) scanin.Usecase {
	return &Interactor{defaults: domain.Selection(defaults)}
}

func (i *Interactor) Encode(_ context.Context, scans []int) (dto.SelectionOutput, error) {
	seen := map[int]struct{}{}
	for _, scan := range scans {
		if scan < 1 {
			return dto.SelectionOutput{}, fmt.Errorf("%w: scan %d is not positive", apperrors.ErrInvalidInput, scan)
		}
		if _, ok := seen[scan]; ok {
			return dto.SelectionOutput{}, fmt.Errorf("%w: scan %d repeated", apperrors.ErrInvalidInput, scan)
		}
		seen[scan] = struct{}{}
	}
	return toOutput(domain.Selection(scans)), nil
}

func (i *Interactor) Decode(_ context.Context, text string) (dto.SelectionOutput, error) {
	sel, err := domain.Decode(text)
	if err != nil {
		return dto.SelectionOutput{}, err
	}
	return toOutput(sel), nil
}

// Default is the configured selection narrowed to the scans a dataset has.
// A nil available list means no narrowing.
func (i *Interactor) Default(_ context.Context, available []int) dto.SelectionOutput {
	if available == nil {
		return toOutput(i.defaults)
	}
	return toOutput(i.defaults.Restrict(available))
}

func toOutput(sel domain.Selection) dto.SelectionOutput {
	return dto.SelectionOutput{Scans: append([]int(nil), sel...), Text: domain.Encode(sel)}
}
