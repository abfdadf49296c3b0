package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ConverterListModel - Interactive converter browsing
// =============================================================================

// ConverterListModel is the bubbletea model for browsing the converter
// registry. Navigation moves a cursor over the node types; the table shows
// aliases and per-language dependencies for everything in view.
type ConverterListModel struct {
	Converters []converterInfo
	Cursor     int
	Height     int
	Offset     int
}

// NewConverterListModel creates a new converter list model.
func NewConverterListModel(converters []converterInfo) ConverterListModel {
	return ConverterListModel{
		Converters: converters,
		Cursor:     0,
		Height:     15,
		Offset:     0,
	}
}

func (m ConverterListModel) Init() tea.Cmd {
	return nil
}

func (m ConverterListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Converters)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ConverterListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Supported Node Types"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Converters) {
		end = len(m.Converters)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		info := m.Converters[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		rows = append(rows, []string{
			cursor,
			info.Type,
			joinOrDash(info.Aliases),
			joinOrDash(info.PyDeps),
			joinOrDash(info.TSDeps),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node Type", "Aliases", "Python", "TypeScript").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Converters) {
				return lipgloss.NewStyle()
			}

			base := lipgloss.NewStyle()
			if col >= 2 {
				base = base.Foreground(colorGray)
			}
			if actualIdx == m.Cursor {
				if col == 1 {
					return listSelectedStyle
				}
				return base.Bold(true)
			}
			if col == 1 {
				return base.Foreground(colorWhite)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Converters))))

	return b.String()
}

// =============================================================================
// FlowPickerModel - Interactive flow export selection
// =============================================================================

// FlowPickerModel is the bubbletea model for picking one flow export out
// of a directory.
type FlowPickerModel struct {
	Files    []string
	Cursor   int
	Selected string
}

// NewFlowPickerModel creates a new flow picker model.
func NewFlowPickerModel(files []string) FlowPickerModel {
	return FlowPickerModel{Files: files}
}

func (m FlowPickerModel) Init() tea.Cmd {
	return nil
}

func (m FlowPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Files)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = m.Files[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m FlowPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Flow Export"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, f := range m.Files {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := cursor + f
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Files))))

	return b.String()
}
