package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mcptooling/mcpreg/pkg/errors"
	"github.com/mcptooling/mcpreg/pkg/registry"
)

var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// ServerListModel is the bubbletea model for interactive server selection.
type ServerListModel struct {
	Servers  []registry.Server
	Cursor   int
	Selected *registry.Server
	Height   int
	Offset   int
}

// NewServerListModel creates a server list model over search results.
func NewServerListModel(servers []registry.Server) ServerListModel {
	return ServerListModel{
		Servers: servers,
		Height:  15,
	}
}

func (m ServerListModel) Init() tea.Cmd {
	return nil
}

func (m ServerListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Servers)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = &m.Servers[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ServerListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Server"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Servers) {
		end = len(m.Servers)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		srv := m.Servers[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			srv.Name,
			truncate(srv.Description, descriptionWidth),
			srv.Version,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Description", "Version").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			return StyleValue
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Servers))))

	return b.String()
}

// pickServer runs the interactive picker and returns the chosen server,
// or nil when the user backed out.
func pickServer(servers []registry.Server) (*registry.Server, error) {
	model := NewServerListModel(servers)
	finalModel, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "interactive picker")
	}

	result, ok := finalModel.(ServerListModel)
	if !ok {
		return nil, errors.New(errors.ErrCodeInternal, "unexpected picker model type")
	}
	return result.Selected, nil
}
