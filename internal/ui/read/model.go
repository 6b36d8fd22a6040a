// Package read shows one message and lets the user answer it.
package read

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/mailbox"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/queries"
	"github.com/nhle/mailterm/internal/query"
	"github.com/nhle/mailterm/internal/route"
	"github.com/nhle/mailterm/internal/theme"
	"github.com/nhle/mailterm/internal/ui"
	"github.com/nhle/mailterm/internal/validation"
)

const (
	Replied    = "Resposta enviada com sucesso!"
	ReplyError = "Erro ao responder o email, tente novamente mais tarde"
	LoadError  = "Erro ao carregar o email, tente novamente mais tarde"
	EmptyReply = "Escreva a resposta antes de enviar"
)

// ResultMsg carries the outcome of sending a reply.
type ResultMsg struct {
	Err error
}

type formBindings struct {
	body string
}

// Model is the message screen.
type Model struct {
	env      ui.Env
	mailID   model.ID
	composer *mailbox.Composer
	mail     *model.Mail
	viewport viewport.Model
	fb       *formBindings
	form     *huh.Form
	replying bool
	pending  bool
	loadErr  string
	rootErr  string
}

// New creates the screen for mailID.
func New(env ui.Env, mailID model.ID) *Model {
	vp := viewport.New(env.Width, max(env.Height-2, 1))
	return &Model{
		env:      env,
		mailID:   mailID,
		composer: mailbox.NewComposer(env.Client),
		viewport: vp,
		fb:       &formBindings{},
	}
}

// Init shows the cached message, if any, and refetches it.
func (m *Model) Init() tea.Cmd {
	if mail, ok := query.Get[*model.Mail](m.env.Cache, queries.MailKey(m.mailID)); ok && mail != nil {
		m.setMail(mail)
	}
	return m.env.Cache.Fetch(queries.Mail(m.env.Client, m.mailID))
}

func (m *Model) setMail(mail *model.Mail) {
	m.mail = mail
	m.loadErr = ""
	m.viewport.SetContent(m.renderMail())
}

func (m *Model) renderMail() string {
	if m.mail == nil {
		return ""
	}
	meta := func(label, value string) string {
		if strings.TrimSpace(value) == "" {
			value = "—"
		}
		return theme.MetaStyle.Render(fmt.Sprintf("%-8s", label)) + theme.ValueStyle.Render(value)
	}
	header := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render(m.mail.Assunto),
		meta("De:", m.mail.EmailRemetente),
		meta("Para:", m.mail.EmailDestinatario),
		meta("Data:", m.mail.DataEnvio),
	)
	body := lipgloss.NewStyle().Width(max(m.viewport.Width-2, 10)).Render(m.mail.Corpo)
	return header + "\n\n" + body
}

// StartReply opens the reply form.
func (m *Model) StartReply() tea.Cmd {
	if m.mail == nil {
		return nil
	}
	m.replying = true
	m.fb.body = ""
	m.rootErr = ""
	return m.buildReply()
}

func (m *Model) buildReply() tea.Cmd {
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Resposta para " + m.mail.EmailRemetente).
				CharLimit(10000).
				Lines(max(m.env.Height/3, 4)).
				Value(&m.fb.body).
				Validate(validation.FieldFunc(validation.MessageForm{}, "corpo")),
		),
	).WithWidth(m.env.FormWidth()).WithShowHelp(false)
	return m.form.Init()
}

// Update handles messages for the message screen.
func (m *Model) Update(msg tea.Msg) (ui.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		return m, m.settle(msg)

	case query.ResultMsg:
		if msg.Discarded || !msg.Key.Equal(queries.MailKey(m.mailID)) {
			return m, nil
		}
		if msg.Err != nil {
			m.loadErr = api.UserMessage(msg.Err, LoadError)
			return m, nil
		}
		if mail, _ := msg.Data.(*model.Mail); mail != nil {
			m.setMail(mail)
		}
		return m, nil

	case ui.RefetchMsg:
		if msg.Has(queries.MailKey(m.mailID)) {
			return m, m.env.Cache.Fetch(queries.Mail(m.env.Client, m.mailID))
		}
		return m, nil

	case tea.KeyMsg:
		if m.replying {
			if key.Matches(msg, m.env.Keys.Back) && !m.pending {
				m.replying = false
				m.rootErr = ""
				return m, nil
			}
			break
		}
		switch {
		case key.Matches(msg, m.env.Keys.Reply):
			return m, m.StartReply()
		case key.Matches(msg, m.env.Keys.Back):
			return m, ui.Do(ui.Back())
		case key.Matches(msg, m.env.Keys.Refresh):
			return m, m.env.Cache.Fetch(queries.Mail(m.env.Client, m.mailID))
		}
	}

	if !m.replying {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	if m.pending {
		return m, nil
	}

	var cmd tea.Cmd
	m.form, cmd = ui.UpdateForm(m.form, msg)
	if submitted, _ := ui.FormDone(m.form); submitted {
		return m, m.Submit()
	}
	return m, cmd
}

// Submit sends the typed reply.
func (m *Model) Submit() tea.Cmd {
	if m.pending || m.mail == nil {
		return nil
	}
	body := m.fb.body
	if strings.TrimSpace(body) == "" {
		m.rootErr = EmptyReply
		return m.buildReply()
	}
	if ferr := validation.Validate(validation.MessageForm{Corpo: body}); ferr != nil {
		m.rootErr = ferr.Error()
		return m.buildReply()
	}

	m.pending = true
	m.rootErr = ""
	original, composer := *m.mail, m.composer
	return func() tea.Msg {
		return ResultMsg{Err: composer.Reply(context.Background(), original, body)}
	}
}

func (m *Model) settle(res ResultMsg) tea.Cmd {
	m.pending = false
	if res.Err != nil {
		m.rootErr = api.UserMessage(res.Err, ReplyError)
		return m.buildReply()
	}
	m.replying = false
	return ui.Do(
		ui.InvalidateMsg{Key: queries.MailsKey, Exact: true},
		ui.Info(Replied),
		ui.Redirect(route.PathInbox),
	)
}

// SeedReply sets the reply body.
func (m *Model) SeedReply(body string) { m.fb.body = body }

// Mail returns the message shown, or nil while loading.
func (m *Model) Mail() *model.Mail { return m.mail }

// Replying reports whether the reply form is open.
func (m *Model) Replying() bool { return m.replying }

// Pending reports whether a reply is in flight.
func (m *Model) Pending() bool { return m.pending }

// Err returns the reply or load error shown.
func (m *Model) Err() string {
	if m.rootErr != "" {
		return m.rootErr
	}
	return m.loadErr
}

// Capturing is true while the reply form is open.
func (m *Model) Capturing() bool { return m.replying }

// View renders the message screen.
func (m *Model) View() string {
	if m.mail == nil {
		if m.loadErr != "" {
			return ui.Centered(m.env.Width, m.env.Height, theme.ErrorStyle.Render(m.loadErr)+"\n\nr atualizar • esc voltar")
		}
		return ui.Centered(m.env.Width, m.env.Height, "Carregando...")
	}
	if m.replying {
		return ui.RenderForm(m.mail.Assunto, m.form, m.rootErr, m.pending) +
			"\n  " + theme.HelpStyle.Render("esc cancelar")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		theme.HelpStyle.Render("R responder • esc voltar"),
	)
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.env.Width = width
	m.env.Height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 1)
	if m.mail != nil {
		m.viewport.SetContent(m.renderMail())
	}
	if m.form != nil {
		m.form = m.form.WithWidth(m.env.FormWidth())
	}
}
