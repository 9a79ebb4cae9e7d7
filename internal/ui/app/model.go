package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	treedto "peaklab/internal/modules/tree/dto"
	"peaklab/internal/ui/components"
	"peaklab/internal/ui/theme"
	analysisview "peaklab/internal/ui/views/analysis"
	treeview "peaklab/internal/ui/views/tree"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type treePort interface {
	treeview.TreePort
	ReconcileAll(ctx context.Context) ([]treedto.ReportOutput, error)
}

type analysisPort = analysisview.AnalysisPort

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabTrees tabID = iota
	tabAnalysis
	tabCount
)

var tabLabels = [tabCount]string{"Trees", "Analysis"}

var paletteHints = []string{
	"open <path>",
	"scans <range>",
	"save",
	"plot <out.png>",
	"delete <path> [keep]",
	"reload",
}

// ─── async messages ───────────────────────────────────────────────────────────

type reconciledMsg struct {
	reports []treedto.ReportOutput
	err     error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Trees   key.Binding
	Open    key.Binding
	Pick    key.Binding
	Arm     key.Binding
	Add     key.Binding
	Delete  key.Binding
	Save    key.Binding
	Scans   key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Trees:   key.NewBinding(key.WithKeys("[", "]"), key.WithHelp("[/]", "switch tree")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open file / pick sample")),
		Pick:    key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "move cursor")),
		Arm:     key.NewBinding(key.WithKeys("1", "2"), key.WithHelp("1/2", "arm bound")),
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add peak")),
		Delete:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete peak")),
		Save:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save session")),
		Scans:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "edit scans")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Trees, k.Open},
		{k.Pick, k.Arm, k.Add, k.Delete, k.Scans, k.Save},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It routes input between the tree
// browser and the analysis view and runs palette commands.
type Model struct {
	workspace string
	trees     treePort

	treeView     treeview.Model
	analysisView analysisview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

func NewModel(workspace string, trees treePort, analysis analysisPort) Model {
	return Model{
		workspace:    workspace,
		trees:        trees,
		treeView:     treeview.New(trees),
		analysisView: analysisview.New(analysis),
		activeTab:    tabTrees,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(paletteHints),
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return m.reconcileCmd()
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case reconciledMsg:
		if msg.err != nil {
			m.status = "sync: " + msg.err.Error()
		} else {
			m.status = syncStatus(msg.reports)
		}
		return m, m.treeView.Reload()

	case treeview.LoadedMsg, treeview.DeletedMsg:
		if d, ok := msg.(treeview.DeletedMsg); ok {
			if d.Err != nil {
				m.status = "delete: " + d.Err.Error()
			} else {
				m.status = fmt.Sprintf("deleted %d entries, %d failures", len(d.Report.Deleted), len(d.Report.Failures))
			}
		}
		var cmd tea.Cmd
		m.treeView, cmd = m.treeView.Update(msg)
		return m, cmd

	case treeview.OpenMsg:
		m.activeTab = tabAnalysis
		m.status = "opening " + msg.Path
		return m, m.analysisView.Open(msg.Path)

	case analysisview.StateMsg:
		if msg.Err != nil {
			m.status = msg.Op + ": " + msg.Err.Error()
		} else {
			m.status = msg.Op + " ok"
		}
		var cmd tea.Cmd
		m.analysisView, cmd = m.analysisView.Update(msg)
		return m, cmd

	case analysisview.SavedMsg:
		m.status = "save: " + msg.Save.Outcome
		return m, m.reconcileCmd()

	case analysisview.PlottedMsg:
		if msg.Err != nil {
			m.status = "plot: " + msg.Err.Error()
		} else {
			m.status = "plot written to " + msg.Path
		}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.subViewCapturing() {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = true
			return m, nil
		case ":":
			return m, m.palette.Open("")
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case tabTrees:
		m.treeView, cmd = m.treeView.Update(msg)
	case tabAnalysis:
		m.analysisView, cmd = m.analysisView.Update(msg)
	}
	return m, cmd
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar), 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabAnalysis:
		content = m.analysisView.View()
	default:
		content = m.treeView.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := " " + tabLabels[i] + " "
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(label)
		} else {
			parts[i] = theme.Muted.Render(label)
		}
	}
	bar := "peaklab  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	arg := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))

	switch parts[0] {
	case "open":
		if arg == "" {
			m.status = "usage: open <path>"
			return m, nil
		}
		m.activeTab = tabAnalysis
		return m, m.analysisView.Open(m.resolve(arg))

	case "scans":
		if !m.analysisView.Loaded() {
			m.status = "no file open"
			return m, nil
		}
		m.activeTab = tabAnalysis
		return m, m.analysisView.SelectScans(arg)

	case "save":
		if !m.analysisView.Loaded() {
			m.status = "no file open"
			return m, nil
		}
		return m, m.analysisView.Save()

	case "plot":
		if arg == "" || !m.analysisView.Loaded() {
			m.status = "usage: plot <out.png> with a file open"
			return m, nil
		}
		return m, m.analysisView.PlotTo(m.resolve(arg))

	case "delete":
		if len(parts) < 2 {
			if path, ok := m.treeView.Selected(); ok && m.activeTab == tabTrees {
				return m, m.treeView.Delete(path, true)
			}
			m.status = "usage: delete <path> [keep]"
			return m, nil
		}
		cascade := !(len(parts) > 2 && parts[2] == "keep")
		return m, m.treeView.Delete(m.resolve(parts[1]), cascade)

	case "reload":
		return m, m.reconcileCmd()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewCapturing reports whether the active view is taking free text.
func (m Model) subViewCapturing() bool {
	switch m.activeTab {
	case tabTrees:
		return m.treeView.Filtering()
	case tabAnalysis:
		return m.analysisView.Editing()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.treeView, _ = m.treeView.Update(sz)
	m.analysisView, _ = m.analysisView.Update(sz)
}

func (m Model) resolve(path string) string {
	if filepath.IsAbs(path) || m.workspace == "" {
		return path
	}
	return filepath.Join(m.workspace, path)
}

func (m Model) reconcileCmd() tea.Cmd {
	return func() tea.Msg {
		reports, err := m.trees.ReconcileAll(context.Background())
		return reconciledMsg{reports: reports, err: err}
	}
}

func syncStatus(reports []treedto.ReportOutput) string {
	var added, pruned, failures int
	for _, r := range reports {
		added += len(r.Added)
		pruned += len(r.Pruned)
		failures += len(r.Failures)
	}
	if added+pruned+failures == 0 {
		return "trees in sync"
	}
	return fmt.Sprintf("trees synced: %d added, %d pruned, %d failures", added, pruned, failures)
}
