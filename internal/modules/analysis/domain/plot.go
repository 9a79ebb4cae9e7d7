package domain

import (
	"fmt"
	"path/filepath"
	"strings"

	"peaklab/internal/platform/kind"
)

type Series struct {
	Name string
	X    []float64
	Y    []float64
}

// Marker is a fitted peak position drawn as a vertical line.
type Marker struct {
	X     float64
	Label string
}

// Plot is a figure ready to draw. YScale multiplies every y sample.
type Plot struct {
	Title   string
	XLabel  string
	YLabel  string
	Series  []Series
	YScale  float64
	Markers []Marker
}

// Axes returns the axis names used for a domain.
func Axes(k kind.Kind) (string, string) {
	if k == kind.Nova {
		return "Applied potential (V) vs. Ag", "Current (mA)"
	}
	return "Raman shift (cm-1)", "Relative Intensity"
}

// NewPlot lays out a figure for k titled after the file name.
func NewPlot(k kind.Kind, source string) Plot {
	x, y := Axes(k)
	scale := 1.0
	if k == kind.Nova {
		// Currents are stored in A and shown in mA.
		scale = 1000
	}
	title := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return Plot{Title: title, XLabel: x, YLabel: y, YScale: scale}
}

func SeriesName(k kind.Kind, scan int) string {
	if !k.MultiScan() {
		return "spectrum"
	}
	return fmt.Sprintf("scan %d", scan)
}

func MarkerLabel(i int, x float64) string {
	return fmt.Sprintf("peak %d: %.2f", i+1, x)
}
