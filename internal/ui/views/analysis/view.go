package analysis

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	analysisdto "peaklab/internal/modules/analysis/dto"
	"peaklab/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type AnalysisPort interface {
	Open(ctx context.Context, path string) (analysisdto.StateOutput, error)
	SelectScans(ctx context.Context, text string) (analysisdto.StateOutput, error)
	AddPeak(ctx context.Context) (analysisdto.StateOutput, error)
	ArmBound(ctx context.Context, peak, which int) (analysisdto.StateOutput, error)
	PickPoint(ctx context.Context, index int) (analysisdto.StateOutput, error)
	DeletePeak(ctx context.Context, peak int) (analysisdto.StateOutput, error)
	Save(ctx context.Context) (analysisdto.StateOutput, error)
	Plot(ctx context.Context, w io.Writer) error
}

// ─── messages ────────────────────────────────────────────────────────────────

// StateMsg carries the analysis state after an operation named Op.
type StateMsg struct {
	Op    string
	State analysisdto.StateOutput
	Err   error
}

type PlottedMsg struct {
	Path string
	Err  error
}

// SavedMsg is emitted after a save reached the disk so the saved trees
// can be reloaded.
type SavedMsg struct {
	Save analysisdto.SaveOutput
}

var sparks = []rune("▁▂▃▄▅▆▇█")

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    AnalysisPort
	state   analysisdto.StateOutput
	loaded  bool
	cursor  int
	peak    int
	scans   textinput.Model
	editing bool
	err     error
	width   int
	height  int
}

func New(port AnalysisPort) Model {
	ti := textinput.New()
	ti.Placeholder = "1-3,5"
	ti.CharLimit = 128
	ti.Prompt = "scans: "
	return Model{port: port, scans: ti}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Loaded() bool { return m.loaded }

// Editing reports whether the scan input has focus, in which case global
// key bindings must yield.
func (m Model) Editing() bool { return m.editing }

func (m Model) State() analysisdto.StateOutput { return m.state }

func (m Model) Cursor() int { return m.cursor }

func (m Model) SelectedPeak() int { return m.peak }

func (m Model) run(op string, fn func(ctx context.Context) (analysisdto.StateOutput, error)) tea.Cmd {
	return func() tea.Msg {
		st, err := fn(context.Background())
		return StateMsg{Op: op, State: st, Err: err}
	}
}

func (m Model) Open(path string) tea.Cmd {
	return m.run("open", func(ctx context.Context) (analysisdto.StateOutput, error) {
		return m.port.Open(ctx, path)
	})
}

func (m Model) SelectScans(text string) tea.Cmd {
	return m.run("scans", func(ctx context.Context) (analysisdto.StateOutput, error) {
		return m.port.SelectScans(ctx, text)
	})
}

func (m Model) Save() tea.Cmd {
	return m.run("save", m.port.Save)
}

// PlotTo renders the current plot as a PNG file at path.
func (m Model) PlotTo(path string) tea.Cmd {
	return func() tea.Msg {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return PlottedMsg{Path: path, Err: err}
		}
		f, err := os.Create(path)
		if err != nil {
			return PlottedMsg{Path: path, Err: err}
		}
		err = m.port.Plot(context.Background(), f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return PlottedMsg{Path: path, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scans.Width = max(msg.Width-12, 10)

	case StateMsg:
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		if msg.Op == "open" {
			m.cursor, m.peak = 0, 0
		}
		m.state = msg.State
		m.loaded = true
		m.clamp()
		if msg.State.LastSave != nil {
			save := *msg.State.LastSave
			return m, func() tea.Msg { return SavedMsg{Save: save} }
		}

	case tea.KeyMsg:
		if m.editing {
			return m.updateScanInput(msg)
		}
		if !m.loaded {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) updateScanInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.scans.Blur()
		return m, nil
	case "enter":
		m.editing = false
		m.scans.Blur()
		return m, m.SelectScans(m.scans.Value())
	}
	var cmd tea.Cmd
	m.scans, cmd = m.scans.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		m.cursor--
	case "right", "l":
		m.cursor++
	case "H", "pgup":
		m.cursor -= 10
	case "L", "pgdown":
		m.cursor += 10
	case "home":
		m.cursor = 0
	case "end":
		m.cursor = m.state.Samples - 1
	case "up", "k":
		m.peak--
	case "down", "j":
		m.peak++
	case "/":
		if m.state.Kind != "nova" {
			return m, nil
		}
		m.editing = true
		m.scans.SetValue(m.state.ScanText)
		m.scans.CursorEnd()
		return m, m.scans.Focus()
	case "a":
		m.peak = len(m.state.Peaks)
		return m, m.run("add", m.port.AddPeak)
	case "1", "2":
		which := 1
		if msg.String() == "2" {
			which = 2
		}
		peak := m.peak
		return m, m.run("arm", func(ctx context.Context) (analysisdto.StateOutput, error) {
			return m.port.ArmBound(ctx, peak, which)
		})
	case "enter", " ":
		index := m.cursor
		return m, m.run("pick", func(ctx context.Context) (analysisdto.StateOutput, error) {
			return m.port.PickPoint(ctx, index)
		})
	case "x":
		peak := m.peak
		return m, m.run("delete", func(ctx context.Context) (analysisdto.StateOutput, error) {
			return m.port.DeletePeak(ctx, peak)
		})
	case "w":
		return m, m.Save()
	}
	m.clamp()
	return m, nil
}

func (m *Model) clamp() {
	m.cursor = max(min(m.cursor, m.state.Samples-1), 0)
	m.peak = max(min(m.peak, len(m.state.Peaks)-1), 0)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	if !m.loaded {
		body := theme.Title.Render("Analysis") + "\n\n" +
			theme.Muted.Render("open a file from the Trees tab (enter) or with :open <path>")
		if m.err != nil {
			body += "\n\n" + theme.Error.Render(m.err.Error())
		}
		return lipgloss.NewStyle().Width(m.width).Height(m.height).Render(body)
	}
	st := m.state
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(filepath.Base(st.SourcePath)) + "  " + theme.Muted.Render(st.Kind) + "\n")
	if st.Kind == "nova" {
		if m.editing {
			sb.WriteString(m.scans.View() + "\n")
		} else {
			sb.WriteString(theme.Muted.Render(fmt.Sprintf("scans: %s  available: %s", st.ScanText, intList(st.Available))) + "\n")
		}
		if st.ScanError != "" {
			sb.WriteString(theme.Error.Render("scan range: "+st.ScanError) + "\n")
		}
	}
	sb.WriteString("\n")

	if st.SlotsOffered {
		sb.WriteString(m.renderCurve())
	} else {
		sb.WriteString(theme.Muted.Render("select exactly one scan to add peaks") + "\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.renderPeaks())

	if st.LastSave != nil {
		sb.WriteString("\n" + theme.Good.Render(saveLine(*st.LastSave)) + "\n")
	}
	if m.err != nil {
		sb.WriteString("\n" + theme.Error.Render(m.err.Error()) + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("←/→ move  a add  1/2 arm  enter pick  x delete  ↑/↓ peak  / scans  w save"))
	return lipgloss.NewStyle().Width(m.width).Height(m.height).Render(sb.String())
}

func (m Model) renderCurve() string {
	st := m.state
	width := max(m.width-4, 16)
	line, at := Sparkline(st.OwnerY, width, m.cursor)
	var sb strings.Builder
	sb.WriteString(line + "\n")
	if at >= 0 {
		sb.WriteString(strings.Repeat(" ", at) + theme.Cursor.Render("^") + "\n")
	}
	if m.cursor < len(st.OwnerX) && m.cursor < len(st.OwnerY) {
		sb.WriteString(fmt.Sprintf("sample %d/%d  x=%.4g  y=%.4g\n", m.cursor, st.Samples-1, st.OwnerX[m.cursor], st.OwnerY[m.cursor]))
	}
	return sb.String()
}

func (m Model) renderPeaks() string {
	st := m.state
	if len(st.Peaks) == 0 {
		return theme.Muted.Render("no peaks") + "\n"
	}
	var sb strings.Builder
	for i, p := range st.Peaks {
		line := fmt.Sprintf("peak %d  [%s, %s]  %s", i+1, orDash(p.X1), orDash(p.X2), p.ValueText)
		if st.Armed != nil && st.Armed.Peak == i {
			line += "  " + theme.Hot.Render("armed "+st.Armed.Which)
		}
		if i == m.peak {
			sb.WriteString(theme.Cursor.Render("> "+line) + "\n")
		} else {
			sb.WriteString("  " + line + "\n")
		}
	}
	return sb.String()
}

// Sparkline renders y as one block character per column, averaging
// samples that share a column. It also returns the column holding sample
// cursor, or -1.
func Sparkline(y []float64, width, cursor int) (string, int) {
	if len(y) == 0 || width <= 0 {
		return "", -1
	}
	cols := min(width, len(y))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range y {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	out := make([]rune, cols)
	for c := 0; c < cols; c++ {
		from := c * len(y) / cols
		to := max((c+1)*len(y)/cols, from+1)
		sum := 0.0
		for _, v := range y[from:to] {
			sum += v
		}
		level := 0
		if hi > lo {
			level = int(math.Round((sum/float64(to-from) - lo) / (hi - lo) * float64(len(sparks)-1)))
		}
		out[c] = sparks[level]
	}
	at := -1
	if cursor >= 0 && cursor < len(y) {
		at = cursor * cols / len(y)
	}
	return string(out), at
}

func saveLine(s analysisdto.SaveOutput) string {
	switch {
	case s.StaleRemoved:
		return "removed stale session " + s.Path
	case s.Path != "":
		return s.Outcome + ": " + s.Path
	default:
		return s.Outcome
	}
}

func intList(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ",")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
