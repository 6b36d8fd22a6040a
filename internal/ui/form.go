package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailterm/internal/theme"
)

// UpdateForm forwards msg to form and returns the updated form.
func UpdateForm(form *huh.Form, msg tea.Msg) (*huh.Form, tea.Cmd) {
	if form == nil {
		return nil, nil
	}
	mdl, cmd := form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		form = f
	}
	return form, cmd
}

// FormDone reports whether the user submitted or aborted form.
func FormDone(form *huh.Form) (submitted, aborted bool) {
	if form == nil {
		return false, false
	}
	return form.State == huh.StateCompleted, form.State == huh.StateAborted
}

// RenderForm frames a form below title, with an optional error line and
// a pending notice.
func RenderForm(title string, form *huh.Form, errText string, pending bool) string {
	parts := []string{theme.TitleStyle.Render(title)}
	if form != nil {
		parts = append(parts, form.View())
	}
	if pending {
		parts = append(parts, theme.HelpStyle.Render("Carregando..."))
	}
	if errText != "" {
		parts = append(parts, theme.ErrorStyle.Render(errText))
	}
	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// Centered renders text in the middle of a width by height box.
func Centered(width, height int, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(text)
}
