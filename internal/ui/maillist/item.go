package maillist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/theme"
)

// Row is one line of the list: a message or a draft.
type Row struct {
	ID      model.ID
	Who     string
	Subject string
	Preview string
	Date    string
	Read    bool
	Draft   bool
}

// MailRow builds the row of a received or sent message.
func MailRow(m model.Mail) Row {
	return Row{
		ID:      m.EmailID,
		Who:     m.EmailRemetente,
		Subject: m.Assunto,
		Preview: m.Corpo,
		Date:    m.DataEnvio,
		Read:    m.IsRead(),
	}
}

// DraftRow builds the row of a draft; drafts show their recipient.
func DraftRow(d model.Draft) Row {
	return Row{
		ID:      d.RascunhoID,
		Who:     d.EmailDestinatario,
		Subject: d.Assunto,
		Preview: d.Corpo,
		Draft:   true,
	}
}

// FilterValue returns the string used for fuzzy filtering.
func (r Row) FilterValue() string { return r.Who + " " + r.Subject }

// rowDelegate implements list.ItemDelegate for rendering rows.
type rowDelegate struct{}

// Height returns the number of lines each item takes.
func (d rowDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d rowDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render draws a single row.
func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, ok := item.(Row)
	if !ok {
		return
	}

	width := m.Width()
	who := truncate(orDash(r.Who), 28)
	subject := truncate(orDash(r.Subject), 32)
	date := ""
	if !r.Draft && r.Date != "" {
		date = "  " + r.Date
	}

	used := lipgloss.Width(who) + lipgloss.Width(subject) + lipgloss.Width(date) + 8
	preview := truncate(oneLine(r.Preview), max(width-used, 0))

	line := fmt.Sprintf("%-28s  %-32s  %s", who, subject, theme.DimmedStyle.Render(preview))
	if date != "" {
		line += theme.DimmedStyle.Render(date)
	}

	_, _ = fmt.Fprint(w, theme.MailRowStyle(r.Read, index == m.Index()).Render(line))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
