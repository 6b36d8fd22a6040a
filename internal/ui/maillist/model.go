package maillist

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/mailbox"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/queries"
	"github.com/nhle/mailterm/internal/query"
	"github.com/nhle/mailterm/internal/route"
	"github.com/nhle/mailterm/internal/theme"
	"github.com/nhle/mailterm/internal/ui"
)

// Mode selects what the list shows.
type Mode int

const (
	ModeInbox Mode = iota
	ModeDrafts
	ModeSent
)

func (m Mode) title() string {
	switch m {
	case ModeDrafts:
		return "Rascunhos"
	case ModeSent:
		return "Enviados"
	default:
		return "Caixa de entrada"
	}
}

func (m Mode) loadError() string {
	if m == ModeDrafts {
		return "Erro ao carregar os rascunhos, tente novamente mais tarde"
	}
	return "Erro ao carregar os emails, tente novamente mais tarde"
}

// Model is the message list screen.
type Model struct {
	env       ui.Env
	mode      Mode
	list      list.Model
	userEmail string
	loaded    bool
	loadErr   string
}

// New creates a list screen in mode.
func New(env ui.Env, mode Mode) *Model {
	l := list.New([]list.Item{}, rowDelegate{}, env.Width, max(env.Height-2, 1))
	l.Title = mode.title()
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = theme.HeaderStyle

	return &Model{env: env, mode: mode, list: l}
}

// Init shows whatever is cached and refetches.
func (m *Model) Init() tea.Cmd {
	if m.mode == ModeDrafts {
		m.applyCached()
		return m.env.Cache.Fetch(queries.Drafts(m.env.Client))
	}

	if u, ok := query.Get[*model.User](m.env.Cache, queries.UserProfileKey); ok && u != nil {
		m.userEmail = u.Email
	}
	m.applyCached()
	profile := m.env.Cache.Fetch(queries.UserProfile(m.env.Client))
	if m.userEmail == "" {
		return profile
	}
	return tea.Batch(profile, m.fetchMails())
}

// fetchMails loads the mailbox once the profile email is known.
func (m *Model) fetchMails() tea.Cmd {
	return m.env.Cache.Fetch(queries.Inbox(m.env.Client, m.userEmail))
}

// Refresh refetches the list.
func (m *Model) Refresh() tea.Cmd {
	if m.mode == ModeDrafts {
		return m.env.Cache.Fetch(queries.Drafts(m.env.Client))
	}
	if m.userEmail == "" {
		return m.env.Cache.Fetch(queries.UserProfile(m.env.Client))
	}
	return m.fetchMails()
}

func (m *Model) applyCached() {
	switch m.mode {
	case ModeDrafts:
		if drafts, ok := query.Get[[]model.Draft](m.env.Cache, queries.DraftsKey); ok {
			m.setDrafts(drafts)
		}
	default:
		if m.userEmail == "" {
			return
		}
		if mails, ok := query.Get[[]model.Mail](m.env.Cache, queries.InboxKey); ok {
			m.setMails(mails)
		}
	}
}

func (m *Model) setMails(mails []model.Mail) tea.Cmd {
	if m.mode == ModeSent {
		mails = mailbox.SentBy(mails, m.userEmail)
	}
	items := make([]list.Item, len(mails))
	for i, mail := range mails {
		items[i] = MailRow(mail)
	}
	m.loaded = true
	m.loadErr = ""
	return m.list.SetItems(items)
}

func (m *Model) setDrafts(drafts []model.Draft) tea.Cmd {
	items := make([]list.Item, len(drafts))
	for i, d := range drafts {
		items[i] = DraftRow(d)
	}
	m.loaded = true
	m.loadErr = ""
	return m.list.SetItems(items)
}

// Update handles messages for the list screen.
func (m *Model) Update(msg tea.Msg) (ui.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case query.ResultMsg:
		if msg.Discarded {
			return m, nil
		}
		return m, m.handleResult(msg)

	case ui.RefetchMsg:
		for _, k := range []query.Key{queries.InboxKey, queries.DraftsKey, queries.UserProfileKey} {
			if msg.Has(k) {
				return m, m.Refresh()
			}
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.env.Keys.Select):
			row, ok := m.list.SelectedItem().(Row)
			if !ok {
				return m, nil
			}
			if row.Draft {
				return m, ui.Do(ui.Navigate(route.Compose(row.ID)))
			}
			return m, ui.Do(ui.Navigate(route.Read(row.ID)))

		case key.Matches(msg, m.env.Keys.Refresh):
			return m, m.Refresh()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleResult(msg query.ResultMsg) tea.Cmd {
	switch {
	case msg.Key.Equal(queries.UserProfileKey) && m.mode != ModeDrafts:
		if msg.Err != nil {
			m.loadErr = api.UserMessage(msg.Err, m.mode.loadError())
			return nil
		}
		u, _ := msg.Data.(*model.User)
		if u == nil || u.Email == "" {
			return nil
		}
		first := m.userEmail == ""
		m.userEmail = u.Email
		if first {
			return m.fetchMails()
		}
		return nil

	case msg.Key.Equal(queries.InboxKey) && m.mode != ModeDrafts:
		if msg.Err != nil {
			m.loadErr = api.UserMessage(msg.Err, m.mode.loadError())
			return nil
		}
		mails, _ := msg.Data.([]model.Mail)
		return m.setMails(mails)

	case msg.Key.Equal(queries.DraftsKey) && m.mode == ModeDrafts:
		if msg.Err != nil {
			m.loadErr = api.UserMessage(msg.Err, m.mode.loadError())
			return nil
		}
		drafts, _ := msg.Data.([]model.Draft)
		return m.setDrafts(drafts)
	}
	return nil
}

// Rows returns the rows currently listed.
func (m *Model) Rows() []Row {
	items := m.list.Items()
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		if r, ok := it.(Row); ok {
			rows = append(rows, r)
		}
	}
	return rows
}

// Err returns the last load error shown.
func (m *Model) Err() string { return m.loadErr }

// Capturing is false: the list leaves single keys to the root.
func (m *Model) Capturing() bool { return false }

// View renders the list screen.
func (m *Model) View() string {
	if m.loadErr != "" && len(m.list.Items()) == 0 {
		return ui.Centered(m.env.Width, m.env.Height, theme.ErrorStyle.Render(m.loadErr)+"\n\nr atualizar")
	}
	if !m.loaded {
		return ui.Centered(m.env.Width, m.env.Height, "Carregando...")
	}
	if len(m.list.Items()) == 0 {
		return ui.Centered(m.env.Width, m.env.Height, m.emptyText())
	}

	view := m.list.View()
	if m.loadErr != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, theme.ErrorStyle.Render(m.loadErr), view)
	}
	return view
}

func (m *Model) emptyText() string {
	switch m.mode {
	case ModeDrafts:
		return "Nenhum rascunho.\n\nn escrever"
	case ModeSent:
		return "Nenhum email enviado."
	default:
		return "Caixa de entrada vazia.\n\nr atualizar"
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.env.Width = width
	m.env.Height = height
	m.list.SetSize(width, max(height-2, 1))
}
