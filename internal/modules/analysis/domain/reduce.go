package domain

import (
	"fmt"
	"slices"

	scandomain "peaklab/internal/modules/scan/domain"
	apperrors "peaklab/internal/platform/errors"
)

// Curves is what the reducer needs from the open file: the sample count of
// a scan and a peak fit over a window of it.
type Curves interface {
	Len(scan int) int
	PeakX(scan, lo, hi int) (float64, error)
}

type Event interface {
	event()
}

type SelectScans struct{ Text string }

type AddPeak struct{}

type ArmBound struct {
	Peak  int
	Which Which
}

type PickPoint struct{ Index int }

type DeletePeak struct{ Peak int }

type RequestSave struct{}

func (SelectScans) event() {}
func (AddPeak) event()     {}
func (ArmBound) event()    {}
func (PickPoint) event()   {}
func (DeletePeak) event()  {}
func (RequestSave) event() {}

type Effect interface {
	effect()
}

type SaveSession struct {
	Snapshot Snapshot
}

func (SaveSession) effect() {}

// Reduce applies one user action. It never mutates s. A rejected action
// returns s unchanged together with the error; a bad range text is not
// rejected but recorded in ScanError.
func Reduce(s State, e Event, curves Curves) (State, []Effect, error) {
	next := s.Clone()
	switch ev := e.(type) {
	case SelectScans:
		return selectScans(next, ev.Text)
	case AddPeak:
		if !next.SlotsOffered() {
			return s, nil, fmt.Errorf("%w: select exactly one scan to pick peaks", apperrors.ErrNoPeakSlot)
		}
		next.Peaks = append(next.Peaks, Peak{OwnerScan: next.OwnerScan(), Boundary: NewBoundary()})
		return next, nil, nil
	case ArmBound:
		if err := checkPeak(next, ev.Peak); err != nil {
			return s, nil, err
		}
		if ev.Which != FirstBound && ev.Which != SecondBound {
			return s, nil, fmt.Errorf("%w: unknown boundary %d", apperrors.ErrInvalidInput, ev.Which)
		}
		next.Armed = &Arm{Peak: ev.Peak, Which: ev.Which}
		return next, nil, nil
	case PickPoint:
		return pickPoint(s, next, ev.Index, curves)
	case DeletePeak:
		if err := checkPeak(next, ev.Peak); err != nil {
			return s, nil, err
		}
		next.Peaks = slices.Delete(next.Peaks, ev.Peak, ev.Peak+1)
		if a := next.Armed; a != nil {
			switch {
			case a.Peak == ev.Peak:
				next.Armed = nil
			case a.Peak > ev.Peak:
				a.Peak--
			}
		}
		return next, nil, nil
	case RequestSave:
		if next.ScanError != "" {
			return s, nil, fmt.Errorf("%w: fix the scan range before saving: %s", apperrors.ErrInvalidInput, next.ScanError)
		}
		return next, []Effect{SaveSession{Snapshot: next.Snapshot()}}, nil
	default:
		return s, nil, fmt.Errorf("%w: unknown event %T", apperrors.ErrInvalidInput, e)
	}
}

func selectScans(next State, text string) (State, []Effect, error) {
	if !next.Kind.MultiScan() {
		return next, nil, fmt.Errorf("%w: %s files have no scans", apperrors.ErrInvalidInput, next.Kind)
	}
	sel, err := scandomain.Decode(text)
	if err != nil {
		next.ScanText = text
		next.ScanError = err.Error()
		return next, nil, nil
	}
	sel = sel.Restrict(next.Available)
	if !sel.Equal(next.Scans) {
		next.Peaks = nil
		next.Armed = nil
	}
	next.Scans = sel
	next.ScanText = scandomain.Encode(sel)
	next.ScanError = ""
	return next, nil, nil
}

func pickPoint(s, next State, index int, curves Curves) (State, []Effect, error) {
	arm := next.Armed
	if arm == nil {
		return s, nil, fmt.Errorf("%w: no boundary armed", apperrors.ErrInvalidInput)
	}
	if err := checkPeak(next, arm.Peak); err != nil {
		return s, nil, err
	}
	p := &next.Peaks[arm.Peak]
	if n := curves.Len(p.OwnerScan); index < 0 || index >= n {
		return s, nil, fmt.Errorf("%w: sample %d outside 0..%d", apperrors.ErrInvalidInput, index, n-1)
	}
	if arm.Which == FirstBound {
		p.Bound1 = index
	} else {
		p.Bound2 = index
	}
	next.Armed = nil
	p.Value, p.Available = 0, false
	if p.Complete() {
		lo, hi := p.Ordered()
		if x, err := curves.PeakX(p.OwnerScan, lo, hi); err == nil {
			p.Value, p.Available = x, true
		}
	}
	return next, nil, nil
}

func checkPeak(s State, i int) error {
	if i < 0 || i >= len(s.Peaks) {
		return fmt.Errorf("%w: no peak %d", apperrors.ErrInvalidInput, i+1)
	}
	return nil
}
