package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/typeforge/typecatalog/catalog"
	"github.com/typeforge/typecatalog/descriptor"
	"github.com/typeforge/typecatalog/importer"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	declStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type typeEntry struct {
	name string
	decl string
	ord  descriptor.Ordinal
	size uint64
}

type modelState int

const (
	stateBrowse modelState = iota
	stateDetail
)

type inspectModel struct {
	err      error
	cat      *catalog.Catalog
	filename string
	filter   textinput.Model
	entries  []typeEntry
	visible  []typeEntry
	selected int
	state    modelState
}

func newInspectModel(filename string) *inspectModel {
	ti := textinput.New()
	ti.Placeholder = "filter types"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()
	return &inspectModel{
		filename: filename,
		filter:   ti,
		state:    stateBrowse,
	}
}

type loadedMsg struct {
	err     error
	cat     *catalog.Catalog
	entries []typeEntry
}

func (m *inspectModel) Init() tea.Cmd {
	return m.loadCatalog
}

func (m *inspectModel) loadCatalog() tea.Msg {
	cat := catalog.Open()
	if _, err := importer.LoadCatalogFile(m.filename, cat); err != nil {
		cat.Close()
		return loadedMsg{err: err}
	}

	// Collect under the iteration lock, size and render outside it.
	var entries []typeEntry
	cat.Each(func(ord descriptor.Ordinal, name string, d descriptor.Descriptor) bool {
		entries = append(entries, typeEntry{name: name, ord: ord})
		return true
	})
	for i := range entries {
		d, err := cat.Get(entries[i].ord)
		if err != nil {
			continue
		}
		entries[i].decl = descriptor.Render(d, entries[i].name, cat.Resolver())
		entries[i].size = cat.TypeSize(entries[i].ord)
	}
	return loadedMsg{cat: cat, entries: entries}
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.cat != nil {
				m.cat.Close()
			}
			return m, tea.Quit

		case "q":
			if m.state == stateBrowse && m.filter.Value() == "" {
				if m.cat != nil {
					m.cat.Close()
				}
				return m, tea.Quit
			}

		case "up", "ctrl+p":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}

		case "down", "ctrl+n":
			if m.state == stateBrowse && m.selected < len(m.visible)-1 {
				m.selected++
			}

		case "enter":
			if m.state == stateBrowse && len(m.visible) > 0 {
				m.state = stateDetail
			}

		case "esc":
			switch m.state {
			case stateDetail:
				m.state = stateBrowse
			case stateBrowse:
				m.filter.SetValue("")
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.cat = msg.cat
		m.entries = msg.entries
		m.refilter()
	}

	if m.state == stateBrowse {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.refilter()
		return m, cmd
	}
	return m, nil
}

func (m *inspectModel) refilter() {
	needle := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for _, e := range m.entries {
		if needle == "" ||
			strings.Contains(strings.ToLower(e.name), needle) ||
			strings.Contains(strings.ToLower(e.decl), needle) {
			m.visible = append(m.visible, e)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = 0
	}
}

func (m *inspectModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress ctrl+c to quit.", m.err))
	}
	if m.entries == nil {
		return "Loading catalog..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Type Catalog"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		for i, e := range m.visible {
			line := fmt.Sprintf("%4d  %s", e.ord, m.formatEntry(e))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if len(m.visible) == 0 {
			b.WriteString(helpStyle.Render("no matching types"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter details • esc clear filter • q quit"))

	case stateDetail:
		e := m.visible[m.selected]
		title := e.name
		if title == "" {
			title = fmt.Sprintf("ordinal %d", e.ord)
		}
		b.WriteString(nameStyle.Render(title))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("Ordinal: %d\n", e.ord))
		b.WriteString(fmt.Sprintf("Size: %d bytes\n\n", e.size))
		b.WriteString(declStyle.Render(e.decl))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("esc back • ctrl+c quit"))
	}

	return b.String()
}

func (m *inspectModel) formatEntry(e typeEntry) string {
	if e.name != "" {
		return nameStyle.Render(e.name) + "  " + declStyle.Render(e.decl)
	}
	return declStyle.Render(e.decl)
}

func runInteractive(filename string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}
	p := tea.NewProgram(newInspectModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
