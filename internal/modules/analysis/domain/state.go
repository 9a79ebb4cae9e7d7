package domain

import (
	"slices"

	measurementdomain "peaklab/internal/modules/measurement/domain"
	scandomain "peaklab/internal/modules/scan/domain"
	"peaklab/internal/platform/kind"
)

// Unset marks a boundary that has not been picked yet.
const Unset = -1

type Boundary struct {
	Bound1 int
	Bound2 int
}

func NewBoundary() Boundary {
	return Boundary{Bound1: Unset, Bound2: Unset}
}

func (b Boundary) Complete() bool {
	return b.Bound1 >= 0 && b.Bound2 >= 0
}

// Ordered returns the boundary as (lo, hi) whatever order it was picked in.
func (b Boundary) Ordered() (int, int) {
	if b.Bound1 > b.Bound2 {
		return b.Bound2, b.Bound1
	}
	return b.Bound1, b.Bound2
}

type Peak struct {
	OwnerScan int
	Boundary
	Value     float64
	Available bool
}

type Which int

const (
	FirstBound Which = iota + 1
	SecondBound
)

func (w Which) String() string {
	if w == SecondBound {
		return "bound_2"
	}
	return "bound_1"
}

// Arm is the boundary the next picked point is written to.
type Arm struct {
	Peak  int
	Which Which
}

// State is everything the analysis view shows for one raw file.
type State struct {
	Kind       kind.Kind
	SourcePath string
	Available  []int
	Scans      scandomain.Selection
	ScanText   string
	// ScanError holds the message of the last rejected range text. Saving
	// is blocked until a valid range is submitted.
	ScanError  string
	Peaks      []Peak
	Armed      *Arm
}

// NewState opens a file. Nova files start on the default scans present in
// the file, or on every scan when none of the defaults is.
func NewState(k kind.Kind, source string, available []int, defaults scandomain.Selection) State {
	s := State{Kind: k, SourcePath: source}
	if !k.MultiScan() {
		return s
	}
	s.Available = slices.Clone(available)
	s.Scans = defaults.Restrict(available)
	if len(s.Scans) == 0 {
		s.Scans = slices.Clone(available)
	}
	s.ScanText = scandomain.Encode(s.Scans)
	return s
}

// SlotsOffered reports whether peaks can be picked: always on spectra, and
// on voltammograms only while exactly one scan is shown.
func (s State) SlotsOffered() bool {
	if !s.Kind.MultiScan() {
		return true
	}
	_, ok := s.Scans.Single()
	return ok
}

// OwnerScan is the scan new peaks are fitted on.
func (s State) OwnerScan() int {
	if !s.Kind.MultiScan() {
		return measurementdomain.SpectrumScan
	}
	scan, _ := s.Scans.Single()
	return scan
}

func (s State) Clone() State {
	out := s
	out.Available = slices.Clone(s.Available)
	out.Scans = slices.Clone(s.Scans)
	out.Peaks = slices.Clone(s.Peaks)
	if s.Armed != nil {
		arm := *s.Armed
		out.Armed = &arm
	}
	return out
}

// Snapshot is what gets persisted for a state.
type Snapshot struct {
	SourcePath string
	Kind       kind.Kind
	Scans      []int
	Peaks      []Peak
}

func (s State) Snapshot() Snapshot {
	snap := Snapshot{SourcePath: s.SourcePath, Kind: s.Kind, Peaks: slices.Clone(s.Peaks)}
	if s.Kind.MultiScan() {
		snap.Scans = slices.Clone(s.Scans)
	}
	return snap
}
