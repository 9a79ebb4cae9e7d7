package domain_test

import (
	"errors"
	"testing"

	"peaklab/internal/modules/analysis/domain"
	fitdomain "peaklab/internal/modules/fit/domain"
	scandomain "peaklab/internal/modules/scan/domain"
	apperrors "peaklab/internal/platform/errors"
	"peaklab/internal/platform/kind"
)

type fakeCurves struct {
	samples int
	fail    bool
	calls   [][3]int
}

func (f *fakeCurves) Len(int) int { return f.samples }

func (f *fakeCurves) PeakX(scan, lo, hi int) (float64, error) {
	f.calls = append(f.calls, [3]int{scan, lo, hi})
	if f.fail || lo >= hi {
		return 0, fitdomain.FitError("window too small")
	}
	return float64(lo+hi) / 2, nil
}

func mustReduce(t *testing.T, s domain.State, e domain.Event, c domain.Curves) domain.State {
	t.Helper()
	next, _, err := domain.Reduce(s, e, c)
	if err != nil {
		t.Fatalf("reduce %T: %v", e, err)
	}
	return next
}

func novaState() domain.State {
	return domain.NewState(kind.Nova, "/ws/data/nova/run.txt", []int{1, 2, 3, 4, 5}, scandomain.Selection{1, 2, 5, 10})
}

func TestNewStateRestrictsDefaults(t *testing.T) {
	t.Parallel()
	s := novaState()
	if s.ScanText != "1-2,5," || s.SlotsOffered() {
		t.Fatalf("unexpected initial state %+v", s)
	}
	fallback := domain.NewState(kind.Nova, "x", []int{7, 8}, scandomain.Selection{1})
	if fallback.ScanText != "7-8," {
		t.Fatalf("expected every scan when no default is present, got %q", fallback.ScanText)
	}
	raman := domain.NewState(kind.Raman, "x", nil, scandomain.Selection{1, 2})
	if len(raman.Scans) != 0 || !raman.SlotsOffered() || raman.OwnerScan() != 0 {
		t.Fatalf("spectra have no scans but always offer slots, got %+v", raman)
	}
}

func TestPickBothBoundsFitsPeak(t *testing.T) {
	t.Parallel()
	c := &fakeCurves{samples: 100}
	s := mustReduce(t, novaState(), domain.SelectScans{Text: "3"}, c)
	if !s.SlotsOffered() || s.OwnerScan() != 3 {
		t.Fatalf("single scan must offer slots for that scan, got %+v", s)
	}
	s = mustReduce(t, s, domain.AddPeak{}, c)
	s = mustReduce(t, s, domain.ArmBound{Peak: 0, Which: domain.SecondBound}, c)
	s = mustReduce(t, s, domain.PickPoint{Index: 40}, c)
	if s.Peaks[0].Available || len(c.calls) != 0 {
		t.Fatalf("half a boundary must not fit, got %+v", s.Peaks[0])
	}
	s = mustReduce(t, s, domain.ArmBound{Peak: 0, Which: domain.FirstBound}, c)
	s = mustReduce(t, s, domain.PickPoint{Index: 10}, c)

	p := s.Peaks[0]
	if !p.Available || p.Value != 25 || p.OwnerScan != 3 {
		t.Fatalf("unexpected peak %+v", p)
	}
	if len(c.calls) != 1 || c.calls[0] != [3]int{3, 10, 40} {
		t.Fatalf("fit must run on the ordered window of the owner scan, got %v", c.calls)
	}
	if s.Armed != nil {
		t.Fatalf("picking must disarm")
	}
}

func TestFailedFitMarksPeakUnavailable(t *testing.T) {
	t.Parallel()
	c := &fakeCurves{samples: 50}
	s := domain.NewState(kind.Raman, "/ws/data/raman/a.txt", nil, nil)
	s = mustReduce(t, s, domain.AddPeak{}, c)
	s = mustReduce(t, s, domain.AddPeak{}, c)
	for _, e := range []domain.Event{
		domain.ArmBound{Peak: 0, Which: domain.FirstBound}, domain.PickPoint{Index: 5},
		domain.ArmBound{Peak: 0, Which: domain.SecondBound}, domain.PickPoint{Index: 5},
		domain.ArmBound{Peak: 1, Which: domain.FirstBound}, domain.PickPoint{Index: 1},
		domain.ArmBound{Peak: 1, Which: domain.SecondBound}, domain.PickPoint{Index: 9},
	} {
		s = mustReduce(t, s, e, c)
	}
	if s.Peaks[0].Available {
		t.Fatalf("equal bounds must leave the peak unavailable")
	}
	if !s.Peaks[1].Available {
		t.Fatalf("other peaks keep their fit, got %+v", s.Peaks[1])
	}
}

func TestChangingSelectionClearsPeaks(t *testing.T) {
	t.Parallel()
	c := &fakeCurves{samples: 10}
	s := mustReduce(t, novaState(), domain.SelectScans{Text: "2"}, c)
	s = mustReduce(t, s, domain.AddPeak{}, c)

	same := mustReduce(t, s, domain.SelectScans{Text: " 2, "}, c)
	if len(same.Peaks) != 1 {
		t.Fatalf("resubmitting the same set keeps peaks")
	}
	other := mustReduce(t, s, domain.SelectScans{Text: "1-3"}, c)
	if len(other.Peaks) != 0 || other.SlotsOffered() {
		t.Fatalf("new selection must clear peaks, got %+v", other)
	}
	if _, _, err := domain.Reduce(other, domain.AddPeak{}, c); !errors.Is(err, apperrors.ErrNoPeakSlot) {
		t.Fatalf("expected no peak slot, got %v", err)
	}
}

func TestMalformedRangeBlocksSaveUntilFixed(t *testing.T) {
	t.Parallel()
	c := &fakeCurves{samples: 10}
	start := novaState()
	bad := mustReduce(t, start, domain.SelectScans{Text: "3-1"}, c)
	if bad.ScanError == "" || !bad.Scans.Equal(start.Scans) || bad.ScanText != "3-1" {
		t.Fatalf("bad text must be recorded and keep the selection, got %+v", bad)
	}
	if _, effects, err := domain.Reduce(bad, domain.RequestSave{}, c); err == nil || len(effects) != 0 {
		t.Fatalf("save must be refused, got %v %v", effects, err)
	}

	fixed := mustReduce(t, bad, domain.SelectScans{Text: "1-3"}, c)
	_, effects, err := domain.Reduce(fixed, domain.RequestSave{}, c)
	if err != nil || len(effects) != 1 {
		t.Fatalf("expected one effect, got %v %v", effects, err)
	}
	save, ok := effects[0].(domain.SaveSession)
	if !ok || !scandomain.Selection(save.Snapshot.Scans).Equal(scandomain.Selection{1, 2, 3}) {
		t.Fatalf("unexpected effect %+v", effects[0])
	}
}

func TestDeletePeakShiftsArm(t *testing.T) {
	t.Parallel()
	c := &fakeCurves{samples: 10}
	s := domain.NewState(kind.Raman, "a", nil, nil)
	for i := 0; i < 3; i++ {
		s = mustReduce(t, s, domain.AddPeak{}, c)
	}
	s = mustReduce(t, s, domain.ArmBound{Peak: 2, Which: domain.FirstBound}, c)
	s = mustReduce(t, s, domain.DeletePeak{Peak: 0}, c)
	if len(s.Peaks) != 2 || s.Armed == nil || s.Armed.Peak != 1 {
		t.Fatalf("arm must follow its peak, got %+v", s.Armed)
	}
	s = mustReduce(t, s, domain.DeletePeak{Peak: 1}, c)
	if s.Armed != nil {
		t.Fatalf("deleting the armed peak disarms")
	}
}

func TestReduceRejectsBadEventsWithoutMutation(t *testing.T) {
	t.Parallel()
	c := &fakeCurves{samples: 10}
	s := mustReduce(t, domain.NewState(kind.Raman, "a", nil, nil), domain.AddPeak{}, c)
	cases := []domain.Event{
		domain.ArmBound{Peak: 3, Which: domain.FirstBound},
		domain.ArmBound{Peak: 0, Which: 0},
		domain.PickPoint{Index: 1},
		domain.DeletePeak{Peak: -1},
		domain.SelectScans{Text: "1"},
	}
	for _, e := range cases {
		next, _, err := domain.Reduce(s, e, c)
		if !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("%T: expected invalid input, got %v", e, err)
		}
		if len(next.Peaks) != 1 || next.Armed != nil {
			t.Fatalf("%T: state must be unchanged, got %+v", e, next)
		}
	}

	armed := mustReduce(t, s, domain.ArmBound{Peak: 0, Which: domain.FirstBound}, c)
	if _, _, err := domain.Reduce(armed, domain.PickPoint{Index: 10}, c); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected out of range pick to fail, got %v", err)
	}
	if armed.Peaks[0].Bound1 != domain.Unset {
		t.Fatalf("input state must not be mutated")
	}
}
