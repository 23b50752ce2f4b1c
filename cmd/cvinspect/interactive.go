package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/cv-bridge/boundary"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nsStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#87CEEB"))

	opStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const visibleRows = 18

type browserModel struct {
	filter   textinput.Model
	ops      []*boundary.Op
	matched  []*boundary.Op
	selected int
	offset   int
	backend  string
}

func newBrowserModel(backend string) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "filter operations"
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 48

	ops := boundary.Default().Ops("")
	return &browserModel{
		filter:  ti,
		ops:     ops,
		matched: ops,
		backend: backend,
	}
}

func (m *browserModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selected > 0 {
				m.selected--
			}
		case tea.KeyDown:
			if m.selected < len(m.matched)-1 {
				m.selected++
			}
		case tea.KeyPgUp:
			m.selected -= visibleRows
			if m.selected < 0 {
				m.selected = 0
			}
		case tea.KeyPgDown:
			m.selected += visibleRows
			if m.selected >= len(m.matched) {
				m.selected = len(m.matched) - 1
			}
		}
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refilter()
	return m, cmd
}

func (m *browserModel) refilter() {
	needle := strings.ToLower(m.filter.Value())
	if needle == "" {
		m.matched = m.ops
	} else {
		var out []*boundary.Op
		for _, op := range m.ops {
			if strings.Contains(strings.ToLower(op.Symbol()), needle) {
				out = append(out, op)
			}
		}
		m.matched = out
	}
	if m.selected >= len(m.matched) {
		m.selected = len(m.matched) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *browserModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("boundary operations"))
	b.WriteString(fmt.Sprintf("  %d/%d  backend: %s\n\n", len(m.matched), len(m.ops), m.backend))
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+visibleRows {
		m.offset = m.selected - visibleRows + 1
	}

	end := m.offset + visibleRows
	if end > len(m.matched) {
		end = len(m.matched)
	}
	for i := m.offset; i < end; i++ {
		op := m.matched[i]
		line := nsStyle.Render(op.Namespace) + "#" + opStyle.Render(op.Name)
		if i == m.selected {
			line = selectedStyle.Render(op.Symbol())
		}
		b.WriteString("  " + line + "\n")
	}

	if m.selected < len(m.matched) {
		op := m.matched[m.selected]
		b.WriteString("\n")
		b.WriteString(detailStyle.Render(fmt.Sprintf("  kind:   %s", op.Kind)) + "\n")
		b.WriteString(detailStyle.Render(fmt.Sprintf("  sig:    %s", signature(op))) + "\n")
		b.WriteString(detailStyle.Render(fmt.Sprintf("  export: %s", op.Export())) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("type to filter - up/down to move - esc to quit"))
	return b.String()
}

func runInteractive(wasmFile string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	backend := "in-process host"
	if wasmFile != "" {
		backend = wasmFile
	}
	p := tea.NewProgram(newBrowserModel(backend))
	_, err := p.Run()
	return err
}
