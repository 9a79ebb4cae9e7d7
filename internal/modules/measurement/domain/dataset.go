package domain

import (
	"slices"

	"peaklab/internal/platform/kind"
)

// SpectrumScan keys the single curve of a dataset without scans.
const SpectrumScan = 0

type Curve struct {
	X []float64
	Y []float64
}

func (c Curve) Len() int {
	return len(c.X)
}

func (c Curve) Clone() Curve {
	return Curve{X: slices.Clone(c.X), Y: slices.Clone(c.Y)}
}

// Dataset is one raw file after loading. Raman files carry one curve under
// SpectrumScan; nova files carry one curve per 1-based scan number.
type Dataset struct {
	Kind       kind.Kind
	SourcePath string
	Curves     map[int]Curve
}

func (d Dataset) Scans() []int {
	if !d.Kind.MultiScan() {
		return nil
	}
	scans := make([]int, 0, len(d.Curves))
	for scan := range d.Curves {
		scans = append(scans, scan)
	}
	slices.Sort(scans)
	return scans
}

// Curve returns the curve a peak owned by scan was fitted on. Spectra
// ignore the scan number.
func (d Dataset) Curve(scan int) (Curve, bool) {
	if !d.Kind.MultiScan() {
		c, ok := d.Curves[SpectrumScan]
		return c, ok
	}
	c, ok := d.Curves[scan]
	return c, ok
}
