package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/planit/internal/i18n"
	"github.com/nhle/planit/internal/keys"
	"github.com/nhle/planit/internal/theme"
	"github.com/nhle/planit/internal/ui/command"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	cat    *i18n.Catalog
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, cat *i18n.Catalog, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		cat:    cat,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the key bindings followed by the palette commands.
func (m Model) View() string {
	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	bindings := m.help.View(m.keys)

	var cmds strings.Builder
	for _, c := range command.Usage {
		cmds.WriteString(theme.HelpStyle.Render(":"+c) + "\n")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render(m.cat.T(i18n.HelpTitle)),
		bindings,
		"",
		sectionStyle.Render(m.cat.T(i18n.CommandTitle)),
		strings.TrimSuffix(cmds.String(), "\n"),
	)

	return theme.DetailPanelStyle.
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
