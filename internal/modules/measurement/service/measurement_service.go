package service

import (
	"context"

	"gonum.org/v1/gonum/floats"

	"peaklab/internal/modules/measurement/domain"
	measurementout "peaklab/internal/modules/measurement/port/out"
	"peaklab/internal/platform/kind"
)

type MeasurementService struct {
	reader      measurementout.DatasetReader
	smoother    *Smoother
	ramanCutoff float64
}

func NewMeasurementService(reader measurementout.DatasetReader, smoother *Smoother, ramanCutoff float64) *MeasurementService {
	return &MeasurementService{reader: reader, smoother: smoother, ramanCutoff: ramanCutoff}
}

// Open reads a raw file and smooths every curve. Spectra are then cut at
// the configured shift and scaled to a maximum of one.
func (s *MeasurementService) Open(ctx context.Context, path string, k kind.Kind) (domain.Dataset, error) {
	ds, err := s.reader.Read(ctx, path, k)
	if err != nil {
		return domain.Dataset{}, err
	}
	curves := make(map[int]domain.Curve, len(ds.Curves))
	for scan, c := range ds.Curves {
		smoothed := domain.Curve{X: append([]float64(nil), c.X...), Y: s.smoother.Apply(c.Y)}
		if k == kind.Raman {
			smoothed = NormaliseSpectrum(smoothed, s.ramanCutoff)
		}
		curves[scan] = smoothed
	}
	ds.Curves = curves
	return ds, nil
}

// NormaliseSpectrum keeps samples with x below cutoff and divides by the
// largest remaining intensity when it is positive.
func NormaliseSpectrum(c domain.Curve, cutoff float64) domain.Curve {
	out := domain.Curve{}
	for i, x := range c.X {
		if x < cutoff {
			out.X = append(out.X, x)
			out.Y = append(out.Y, c.Y[i])
		}
	}
	if len(out.Y) == 0 {
		return out
	}
	if peak := floats.Max(out.Y); peak > 0 {
		floats.Scale(1/peak, out.Y)
	}
	return out
}
