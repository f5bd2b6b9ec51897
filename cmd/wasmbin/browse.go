package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasmbin/codec"
	"github.com/wippyai/wasmbin/wasm"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))
)

// listWidth is the width of the section list pane.
const listWidth = 28

type browseModel struct {
	module   *wasm.Module
	filename string
	view     viewport.Model
	selected int
	force    bool
	ready    bool
	width    int
	height   int
}

func newBrowseModel(filename string, m *wasm.Module) *browseModel {
	return &browseModel{module: m, filename: filename}
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.refresh()
			}
			return m, nil

		case "down", "j":
			if m.selected < len(m.module.Sections)-1 {
				m.selected++
				m.refresh()
			}
			return m, nil

		case "f":
			m.force = !m.force
			m.refresh()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w, h := m.detailSize()
		if !m.ready {
			m.view = viewport.New(w, h)
			m.ready = true
		} else {
			m.view.Width, m.view.Height = w, h
		}
		m.refresh()
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m *browseModel) detailSize() (int, int) {
	return max(m.width-listWidth-4, 10), max(m.height-5, 3)
}

// refresh renders the selected section into the detail pane.
func (m *browseModel) refresh() {
	if !m.ready || len(m.module.Sections) == 0 {
		return
	}
	var b strings.Builder
	p := &printer{w: &b, force: m.force, styled: true}
	p.section(m.selected, m.module.Sections[m.selected])
	m.view.SetContent(b.String())
	m.view.GotoTop()
}

func (m *browseModel) sectionLabel(i int) string {
	s := m.module.Sections[i]
	label := fmt.Sprintf("%2d %s", i, s.ID())
	if cs, ok := s.(*wasm.CustomSection); ok {
		if name, err := cs.Name(); err == nil {
			label += " " + name
		}
	}
	if l, ok := s.(codec.LazyNode); ok && l.State() != codec.Undecoded {
		label += " *"
	}
	if len(label) > listWidth-2 {
		label = label[:listWidth-3] + "~"
	}
	return label
}

func (m *browseModel) View() string {
	if !m.ready {
		return "Loading module..."
	}

	var list strings.Builder
	for i := range m.module.Sections {
		label := m.sectionLabel(i)
		if i == m.selected {
			list.WriteString(selectedStyle.Render("> " + label))
		} else {
			list.WriteString("  " + label)
		}
		list.WriteString("\n")
	}

	_, h := m.detailSize()
	left := paneStyle.Width(listWidth).Height(h).Render(list.String())
	right := paneStyle.Render(m.view.View())

	mode := "lazy"
	if m.force {
		mode = "forced"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("wasmbin"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("↑/↓ section • pgup/pgdn scroll • f force (%s) • q quit", mode)))
	return b.String()
}

func (a *app) browse(args []string) error {
	fs := a.flags("browse")
	path, err := a.parse(fs, args)
	if err != nil {
		return err
	}
	_, m, err := a.load(path, codec.Options{})
	if err != nil {
		return err
	}
	if len(m.Sections) == 0 {
		return fmt.Errorf("%s has no sections", path)
	}
	p := tea.NewProgram(newBrowseModel(path, m), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
