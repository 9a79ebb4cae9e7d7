package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	treedto "peaklab/internal/modules/tree/dto"
	"peaklab/internal/ui/theme"
)

type TreePort interface {
	List(ctx context.Context, kind string, saved bool) (treedto.TreeOutput, error)
	Delete(ctx context.Context, path string, cascade bool) (treedto.ReportOutput, error)
}

// Target names one of the four browsable trees.
type Target struct {
	Kind  string
	Saved bool
}

func (t Target) String() string {
	if t.Saved {
		return "saved/" + t.Kind
	}
	return "data/" + t.Kind
}

var Targets = []Target{
	{Kind: "raman"},
	{Kind: "nova"},
	{Kind: "raman", Saved: true},
	{Kind: "nova", Saved: true},
}

type LoadedMsg struct {
	Target Target
	Tree   treedto.TreeOutput
	Err    error
}

type DeletedMsg struct {
	Report treedto.ReportOutput
	Err    error
}

// OpenMsg asks the app to open a file in the analysis view.
type OpenMsg struct {
	Path string
}

type nodeItem struct {
	node treedto.NodeOutput
}

func (i nodeItem) Title() string {
	name := i.node.Name
	if i.node.Kind == "directory" {
		name += "/"
	}
	return strings.Repeat("  ", i.node.Depth) + name
}

func (i nodeItem) Description() string { return i.node.Kind }
func (i nodeItem) FilterValue() string { return i.node.Name }

type Model struct {
	port   TreePort
	list   list.Model
	target int
	root   string
	err    error
	width  int
	height int
}

func New(port TreePort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	m := Model{port: port, list: l}
	m.list.Title = Targets[0].String()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.Reload()
}

func (m Model) Target() Target { return Targets[m.target] }

// Reload re-reads the current tree from disk.
func (m Model) Reload() tea.Cmd {
	target := m.Target()
	return func() tea.Msg {
		out, err := m.port.List(context.Background(), target.Kind, target.Saved)
		return LoadedMsg{Target: target, Tree: out, Err: err}
	}
}

func (m Model) Delete(path string, cascade bool) tea.Cmd {
	return func() tea.Msg {
		report, err := m.port.Delete(context.Background(), path, cascade)
		return DeletedMsg{Report: report, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, msg.Height)

	case LoadedMsg:
		if msg.Target != m.Target() {
			return m, nil
		}
		m.err = msg.Err
		m.root = msg.Tree.Root
		items := make([]list.Item, len(msg.Tree.Nodes))
		for i, n := range msg.Tree.Nodes {
			items[i] = nodeItem{node: n}
		}
		cmds = append(cmds, m.list.SetItems(items))

	case DeletedMsg:
		if msg.Err == nil {
			cmds = append(cmds, m.Reload())
		}

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch msg.String() {
		case "]":
			m.target = (m.target + 1) % len(Targets)
			m.list.Title = m.Target().String()
			return m, m.Reload()
		case "[":
			m.target = (m.target + len(Targets) - 1) % len(Targets)
			m.list.Title = m.Target().String()
			return m, m.Reload()
		case "r":
			return m, m.Reload()
		case "enter":
			if item, ok := m.list.SelectedItem().(nodeItem); ok && item.node.Kind == "file" {
				path := item.node.Path
				return m, func() tea.Msg { return OpenMsg{Path: path} }
			}
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.err != nil {
		return theme.Error.Render(fmt.Sprintf("%s: %v", m.Target(), m.err))
	}
	if len(m.list.Items()) == 0 {
		body := theme.Title.Render(m.Target().String()) + "\n\n" +
			theme.Muted.Render("empty: "+m.root) + "\n\n" +
			theme.Muted.Render("[ ]: switch tree  r: reload")
		return lipgloss.NewStyle().Width(m.width).Height(m.height).Render(body)
	}
	return m.list.View()
}

// Selected returns the path under the cursor.
func (m Model) Selected() (string, bool) {
	if item, ok := m.list.SelectedItem().(nodeItem); ok {
		return item.node.Path, true
	}
	return "", false
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}
