package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	measurementout "peaklab/internal/modules/measurement/adapter/out"
	"peaklab/internal/modules/measurement/domain"
	"peaklab/internal/modules/measurement/dto"
	"peaklab/internal/modules/measurement/service"
	"peaklab/internal/modules/measurement/usecase"
	apperrors "peaklab/internal/platform/errors"
)

func newInteractor(t *testing.T) func(context.Context, dto.OpenInput) (dto.DatasetOutput, error) {
	t.Helper()
	smoother, err := service.NewSmoother(11, 3)
	if err != nil {
		t.Fatalf("new smoother: %v", err)
	}
	uc := usecase.NewInteractor(service.NewMeasurementService(measurementout.NewFileDatasetReader(), smoother, 1200))
	return uc.Open
}

func TestOpenSpectrumEndToEnd(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	b.WriteString("#Wave\t#Intensity\n")
	for shift := 1400; shift >= 1000; shift -= 10 {
		b.WriteString(strconv.Itoa(shift) + "\t5")
		b.WriteByte('\n')
	}
	path := filepath.Join(t.TempDir(), "sample.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	out, err := newInteractor(t)(context.Background(), dto.OpenInput{Path: path, Kind: "raman"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	c := out.Curves[domain.SpectrumScan]
	if len(c.X) != 20 || c.X[0] != 1000 || c.X[19] != 1190 {
		t.Fatalf("expected 20 ascending samples below 1200, got %v", c.X)
	}
	for i, y := range c.Y {
		if y < 0.999999 || y > 1.000001 {
			t.Fatalf("sample %d: constant spectrum must normalise to 1, got %v", i, y)
		}
	}
	if out.Scans != nil {
		t.Fatalf("spectra have no scans, got %v", out.Scans)
	}
}

func TestOpenRejectsUnknownKind(t *testing.T) {
	t.Parallel()
	_, err := newInteractor(t)(context.Background(), dto.OpenInput{Path: "x.txt", Kind: "xrd"})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
