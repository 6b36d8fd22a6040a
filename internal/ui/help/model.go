package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailterm/internal/keys"
	"github.com/nhle/mailterm/internal/theme"
)

// Model is the shortcut overlay.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates the shortcut overlay.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	h.ShowAll = true
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// View renders the overlay.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Atalhos")
	hint := theme.HelpStyle.Render("? ou esc fechar")

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.help.View(m.keys), "", hint)

	return theme.PanelStyle.
		Width(max(m.width-4, 10)).
		Height(max(m.height-4, 3)).
		Render(content)
}

// SetSize updates the overlay dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = max(width-4, 10)
}
