package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/keys"
	"github.com/nhle/mailterm/internal/logging"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/query"
	"github.com/nhle/mailterm/internal/route"
	"github.com/nhle/mailterm/internal/session"
	"github.com/nhle/mailterm/internal/ui"
	"github.com/nhle/mailterm/internal/ui/account"
	"github.com/nhle/mailterm/internal/ui/command"
	"github.com/nhle/mailterm/internal/ui/compose"
	helpview "github.com/nhle/mailterm/internal/ui/help"
	"github.com/nhle/mailterm/internal/ui/login"
	"github.com/nhle/mailterm/internal/ui/maillist"
	"github.com/nhle/mailterm/internal/ui/navbar"
	"github.com/nhle/mailterm/internal/ui/read"
	"github.com/nhle/mailterm/internal/ui/signup"
)

// Overlay is drawn over the routed screen.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayHelp
	OverlayCommand
)

// Model is the root Bubble Tea model. It owns the session, the router and
// the mounted screen, and applies the effects screens ask for.
type Model struct {
	store   *session.Store
	client  *api.Client
	cache   *query.Cache
	router  *route.Router
	history *route.History
	keys    *keys.KeyMap
	layout  ui.Layout
	ready   bool

	res          route.Resolution
	screen       ui.Screen
	mountedPath  string
	mountedSess  *model.Session
	pendingMount tea.Cmd

	overlay     Overlay
	helpView    helpview.Model
	commandView command.Model

	alert      ui.AlertMsg
	loggingOut bool
}

// New creates the root model. The store should already be bootstrapped.
func New(store *session.Store, client *api.Client, cache *query.Cache) Model {
	k := keys.DefaultKeyMap()
	m := Model{
		store:       store,
		client:      client,
		cache:       cache,
		router:      route.NewRouter(),
		history:     route.NewHistory(route.PathInbox),
		keys:        k,
		layout:      ui.NewLayout(80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
	}
	m, m.pendingMount = m.resolve()
	return m
}

// Init mounts the first screen.
func (m Model) Init() tea.Cmd {
	return m.pendingMount
}

// Update handles msg, then re-runs the route guards against the session.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.handle(msg)
	m, mount := m.resolve()
	return m, tea.Batch(cmd, mount)
}

func (m Model) handle(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.helpView.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
		m.commandView.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
		if m.screen != nil {
			m.screen.SetSize(m.layout.ContentWidth(), m.contentHeight())
		}
		// Forward so huh forms can compute their layout.
		return m.updateScreen(msg)

	case ui.Effects:
		cmds := make([]tea.Cmd, 0, len(msg))
		for _, e := range msg {
			var cmd, mount tea.Cmd
			m, cmd = m.apply(e)
			m, mount = m.resolve()
			cmds = append(cmds, cmd, mount)
		}
		return m, tea.Batch(cmds...)

	case ui.NavigateMsg, ui.ChangeUserMsg, ui.InvalidateMsg, ui.AlertMsg, command.LogoutMsg:
		return m.apply(msg)

	case command.CommandMsg:
		m.overlay = OverlayNone
		parsed, err := command.Parse(string(msg))
		if err != nil {
			m.alert = ui.Failure(err.Error())
			return m, nil
		}
		if _, ok := parsed.(tea.QuitMsg); ok {
			return m, tea.Quit
		}
		return m.handle(parsed)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateScreen(msg)
}

// apply runs one effect.
func (m Model) apply(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.NavigateMsg:
		switch {
		case msg.Back:
			if !m.history.Back() {
				m.history.Replace(route.PathInbox)
			}
		case msg.Replace:
			m.history.Replace(msg.Path)
		default:
			m.history.Push(msg.Path)
		}
		logging.Debug().Str("path", m.history.Current()).Msg("navigate")
		return m, nil

	case ui.ChangeUserMsg:
		m.store.ChangeUser(msg.Token)
		m.cache.Clear()
		m.loggingOut = false
		return m, nil

	case ui.InvalidateMsg:
		matched := m.cache.Invalidate(msg.Key, msg.Exact)
		if len(matched) == 0 {
			return m, nil
		}
		return m.updateScreen(ui.RefetchMsg{Keys: matched})

	case ui.AlertMsg:
		m.alert = msg
		return m, nil

	case command.LogoutMsg:
		if !m.store.LoggedIn() || m.loggingOut {
			return m, nil
		}
		m.loggingOut = true
		return m, navbar.Logout(m.client)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	m.alert = ui.AlertMsg{}

	switch m.overlay {
	case OverlayHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
			m.overlay = OverlayNone
		}
		return m, nil

	case OverlayCommand:
		if key.Matches(msg, m.keys.Back) {
			m.overlay = OverlayNone
			return m, nil
		}
		var cmd tea.Cmd
		m.commandView, cmd = m.commandView.Update(msg)
		return m, cmd
	}

	if m.screen != nil && m.screen.Capturing() {
		return m.updateScreen(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.overlay = OverlayHelp
		return m, nil
	case key.Matches(msg, m.keys.Command):
		m.overlay = OverlayCommand
		return m, m.commandView.Focus()
	}

	if m.res.Chrome {
		switch {
		case key.Matches(msg, m.keys.Inbox):
			return m.apply(ui.Navigate(route.PathInbox))
		case key.Matches(msg, m.keys.Drafts):
			return m.apply(ui.Navigate(route.PathDrafts))
		case key.Matches(msg, m.keys.Sent):
			return m.apply(ui.Navigate(route.PathSent))
		case key.Matches(msg, m.keys.Compose):
			return m.apply(ui.Navigate(route.PathCompose))
		case key.Matches(msg, m.keys.Profile):
			return m.apply(ui.Navigate(route.PathAccount))
		case key.Matches(msg, m.keys.Logout):
			return m.apply(command.LogoutMsg{})
		}
	}

	return m.updateScreen(msg)
}

func (m Model) updateScreen(msg tea.Msg) (Model, tea.Cmd) {
	if m.screen == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)
	return m, cmd
}

// resolve matches the current path against the session, replaces the
// history entry when a guard redirects and mounts a new screen when the
// route or the session changed.
func (m Model) resolve() (Model, tea.Cmd) {
	sess := m.store.Current()
	res := m.router.Resolve(m.history.Current(), sess)
	if res.Redirect != "" {
		logging.Debug().
			Str("from", m.history.Current()).
			Str("to", res.Redirect).
			Msg("route guard redirect")
		m.history.Replace(res.Redirect)
	}
	m.res = res

	if m.screen != nil && res.Path == m.mountedPath && sess == m.mountedSess {
		return m, nil
	}
	m.mountedPath = res.Path
	m.mountedSess = sess
	m.screen = m.screenFor(res, sess)
	if m.screen == nil {
		return m, nil
	}
	return m, m.screen.Init()
}

func (m Model) screenFor(res route.Resolution, sess *model.Session) ui.Screen {
	env := ui.Env{
		Client:  m.client,
		Cache:   m.cache,
		Session: sess,
		Keys:    m.keys,
		Width:   m.layout.ContentWidth(),
		Height:  m.contentHeight(),
	}
	switch res.Screen {
	case route.ScreenInbox:
		return maillist.New(env, maillist.ModeInbox)
	case route.ScreenDrafts:
		return maillist.New(env, maillist.ModeDrafts)
	case route.ScreenSent:
		return maillist.New(env, maillist.ModeSent)
	case route.ScreenCompose:
		return compose.New(env, res.Param("draftId"))
	case route.ScreenRead:
		return read.New(env, res.Param("mailId"))
	case route.ScreenAccount:
		return account.New(env)
	case route.ScreenLogin:
		return login.New(env)
	case route.ScreenSignup:
		return signup.New(env)
	}
	return nil
}

// contentHeight is the room left for the screen once the chrome and the
// status bar are drawn.
func (m Model) contentHeight() int {
	h := m.layout.Height - m.layout.StatusBarHeight
	if m.res.Chrome {
		h -= m.layout.HeaderHeight
	}
	return max(h, 1)
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Carregando..."
	}

	header := ""
	if m.res.Chrome {
		header = navbar.View(m.layout, m.res.Path, m.email())
	}
	return m.layout.RenderWithFrame(header, m.renderContent(), m.renderStatusBar())
}

func (m Model) renderContent() string {
	switch m.overlay {
	case OverlayHelp:
		return m.helpView.View()
	case OverlayCommand:
		return m.commandView.View()
	}
	if m.screen == nil {
		return ""
	}
	return m.screen.View()
}

func (m Model) email() string {
	if s := m.store.Current(); s != nil {
		return s.Email
	}
	return ""
}

// Path returns the current route path.
func (m Model) Path() string { return m.res.Path }

// Screen returns the mounted screen.
func (m Model) Screen() ui.Screen { return m.screen }

// Alert returns the alert in the status bar.
func (m Model) Alert() ui.AlertMsg { return m.alert }

// Overlay returns the overlay currently shown.
func (m Model) Overlay() Overlay { return m.overlay }
