package analysis_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	analysisdto "peaklab/internal/modules/analysis/dto"
	analysisview "peaklab/internal/ui/views/analysis"
)

type call struct {
	op    string
	peak  int
	which int
	index int
	text  string
}

type fakePort struct {
	calls []call
	state analysisdto.StateOutput
}

func (f *fakePort) record(c call) (analysisdto.StateOutput, error) {
	f.calls = append(f.calls, c)
	return f.state, nil
}

func (f *fakePort) Open(_ context.Context, path string) (analysisdto.StateOutput, error) {
	return f.record(call{op: "open", text: path})
}

func (f *fakePort) SelectScans(_ context.Context, text string) (analysisdto.StateOutput, error) {
	return f.record(call{op: "scans", text: text})
}

func (f *fakePort) AddPeak(context.Context) (analysisdto.StateOutput, error) {
	return f.record(call{op: "add"})
}

func (f *fakePort) ArmBound(_ context.Context, peak, which int) (analysisdto.StateOutput, error) {
	return f.record(call{op: "arm", peak: peak, which: which})
}

func (f *fakePort) PickPoint(_ context.Context, index int) (analysisdto.StateOutput, error) {
	return f.record(call{op: "pick", index: index})
}

func (f *fakePort) DeletePeak(_ context.Context, peak int) (analysisdto.StateOutput, error) {
	return f.record(call{op: "delete", peak: peak})
}

func (f *fakePort) Save(context.Context) (analysisdto.StateOutput, error) {
	return f.record(call{op: "save"})
}

func (f *fakePort) Plot(context.Context, io.Writer) error { return nil }

// drive runs cmd and feeds the resulting message back into m.
func drive(t *testing.T, m analysisview.Model, cmd tea.Cmd) analysisview.Model {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	m, _ = m.Update(cmd())
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func novaState() analysisdto.StateOutput {
	return analysisdto.StateOutput{
		Kind:         "nova",
		SourcePath:   "/w/data/nova/cv.txt",
		Available:    []int{1, 2},
		Scans:        []int{1},
		ScanText:     "1,",
		SlotsOffered: true,
		Samples:      5,
		OwnerX:       []float64{0, 0.1, 0.2, 0.3, 0.4},
		OwnerY:       []float64{0, 1, 4, 1, 0},
		Peaks:        []analysisdto.PeakOutput{{Bound1: -1, Bound2: -1, ValueText: "N/A"}},
	}
}

func TestKeysDriveThePort(t *testing.T) {
	t.Parallel()
	port := &fakePort{state: novaState()}
	m := analysisview.New(port)
	m = drive(t, m, m.Open("/w/data/nova/cv.txt"))
	if !m.Loaded() {
		t.Fatalf("expected the view to be loaded")
	}

	m, _ = m.Update(key("right"))
	m, _ = m.Update(key("right"))
	var cmd tea.Cmd
	m, cmd = m.Update(key("2"))
	m = drive(t, m, cmd)
	m, cmd = m.Update(key("enter"))
	m = drive(t, m, cmd)

	want := []call{
		{op: "open", text: "/w/data/nova/cv.txt"},
		{op: "arm", peak: 0, which: 2},
		{op: "pick", index: 2},
	}
	if len(port.calls) != len(want) {
		t.Fatalf("expected %d calls, got %+v", len(want), port.calls)
	}
	for i := range want {
		if port.calls[i] != want[i] {
			t.Fatalf("call %d: expected %+v, got %+v", i, want[i], port.calls[i])
		}
	}
	if m.Cursor() != 2 {
		t.Fatalf("cursor must survive state updates, got %d", m.Cursor())
	}
}

func TestCursorIsClampedToSamples(t *testing.T) {
	t.Parallel()
	port := &fakePort{state: novaState()}
	m := analysisview.New(port)
	m = drive(t, m, m.Open("cv.txt"))
	for i := 0; i < 20; i++ {
		m, _ = m.Update(key("right"))
	}
	if m.Cursor() != 4 {
		t.Fatalf("expected cursor 4, got %d", m.Cursor())
	}
}

func TestScanInputSubmitsText(t *testing.T) {
	t.Parallel()
	port := &fakePort{state: novaState()}
	m := analysisview.New(port)
	m = drive(t, m, m.Open("cv.txt"))

	m, _ = m.Update(key("/"))
	if !m.Editing() {
		t.Fatalf("expected scan input to take focus")
	}
	for _, r := range "-2" {
		m, _ = m.Update(key(string(r)))
	}
	m, cmd := m.Update(key("enter"))
	if m.Editing() {
		t.Fatalf("enter must leave the scan input")
	}
	drive(t, m, cmd)
	last := port.calls[len(port.calls)-1]
	if last.op != "scans" || last.text != "1,-2" {
		t.Fatalf("expected scans call with 1,-2, got %+v", last)
	}
}

func TestSaveEmitsSavedMsg(t *testing.T) {
	t.Parallel()
	st := novaState()
	st.LastSave = &analysisdto.SaveOutput{Outcome: "saved", Path: "/w/saved_data/nova/cv_CVs.txt"}
	port := &fakePort{state: st}
	m := analysisview.New(port)
	m, cmd := m.Update(analysisview.StateMsg{Op: "save", State: st})
	if cmd == nil {
		t.Fatalf("expected a follow-up command")
	}
	msg, ok := cmd().(analysisview.SavedMsg)
	if !ok || msg.Save.Path != st.LastSave.Path {
		t.Fatalf("expected SavedMsg, got %#v", msg)
	}
	if !strings.Contains(m.View(), "cv_CVs.txt") {
		t.Fatalf("save outcome must be shown")
	}
}

func TestSparkline(t *testing.T) {
	t.Parallel()
	line, at := analysisview.Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8, 3)
	if line != "▁▂▃▄▅▆▇█" {
		t.Fatalf("unexpected sparkline %q", line)
	}
	if at != 3 {
		t.Fatalf("expected cursor column 3, got %d", at)
	}

	line, at = analysisview.Sparkline(make([]float64, 100), 10, 55)
	if utf8.RuneCountInString(line) != 10 || at != 5 {
		t.Fatalf("expected 10 columns with cursor at 5, got %q %d", line, at)
	}
	if line, at = analysisview.Sparkline(nil, 10, 0); line != "" || at != -1 {
		t.Fatalf("empty input must render nothing")
	}
}
