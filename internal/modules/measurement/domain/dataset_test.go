package domain_test

import (
	"testing"

	"peaklab/internal/modules/measurement/domain"
	"peaklab/internal/platform/kind"
)

func TestDatasetCurveLookup(t *testing.T) {
	t.Parallel()
	spectrum := domain.Dataset{Kind: kind.Raman, Curves: map[int]domain.Curve{domain.SpectrumScan: {X: []float64{1}, Y: []float64{2}}}}
	if _, ok := spectrum.Curve(7); !ok {
		t.Fatalf("spectra must ignore the scan number")
	}
	if spectrum.Scans() != nil {
		t.Fatalf("spectra have no scans")
	}

	cv := domain.Dataset{Kind: kind.Nova, Curves: map[int]domain.Curve{3: {}, 1: {}, 2: {}}}
	scans := cv.Scans()
	if len(scans) != 3 || scans[0] != 1 || scans[2] != 3 {
		t.Fatalf("unexpected scans %v", scans)
	}
	if _, ok := cv.Curve(4); ok {
		t.Fatalf("scan 4 does not exist")
	}
}
