package login

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/logging"
	"github.com/nhle/mailterm/internal/route"
	"github.com/nhle/mailterm/internal/theme"
	"github.com/nhle/mailterm/internal/ui"
	"github.com/nhle/mailterm/internal/validation"
)

// DefaultError is shown when the server gives no usable message.
const DefaultError = "Erro ao efetuar o login, tente novamente mais tarde"

// ResultMsg carries the outcome of POST /login.
type ResultMsg struct {
	Token string
	Err   error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	email string
	senha string
}

// Model is the login screen.
type Model struct {
	env     ui.Env
	fb      *formBindings
	form    *huh.Form
	pending bool
	rootErr string
}

// New creates the login screen.
func New(env ui.Env) *Model {
	return &Model{env: env, fb: &formBindings{}}
}

// Init builds the form.
func (m *Model) Init() tea.Cmd {
	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("email@exemplo.com").
				Value(&m.fb.email).
				Validate(validation.FieldFunc(validation.LoginForm{}, "email")),
			huh.NewInput().
				Title("Senha").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.senha).
				Validate(validation.FieldFunc(validation.LoginForm{}, "senha")),
		),
	).WithWidth(m.env.FormWidth()).WithShowHelp(false)
}

// Update handles messages for the login screen.
func (m *Model) Update(msg tea.Msg) (ui.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		return m, m.settle(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.env.Keys.Signup) {
			return m, ui.Do(ui.Navigate(route.PathSignup))
		}
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

// Submit validates the form and posts the credentials. It does nothing
// while a login is already in flight.
func (m *Model) Submit() tea.Cmd {
	if m.pending {
		return nil
	}

	input := validation.LoginForm{Email: m.fb.email, Senha: m.fb.senha}
	if ferr := validation.Validate(input); ferr != nil {
		m.rootErr = ferr.Error()
		return m.Init()
	}

	m.pending = true
	m.rootErr = ""
	client := m.env.Client
	creds := api.Credentials{Email: input.Email, Senha: input.Senha}
	return func() tea.Msg {
		resp, err := client.Login(context.Background(), creds)
		return ResultMsg{Token: resp.Token, Err: err}
	}
}

func (m *Model) settle(res ResultMsg) tea.Cmd {
	m.pending = false

	if res.Err != nil {
		m.rootErr = api.ResponseMessage(res.Err, DefaultError)
		return m.Init()
	}
	if res.Token == "" {
		logging.Warn().Msg("login succeeded without a token")
		return m.Init()
	}

	m.fb.senha = ""
	return ui.Do(ui.ChangeUserMsg{Token: res.Token})
}

// Seed fills the form fields, replacing what was typed.
func (m *Model) Seed(email, senha string) {
	m.fb.email = email
	m.fb.senha = senha
}

// Pending reports whether a login request is in flight.
func (m *Model) Pending() bool { return m.pending }

// Err returns the message shown under the form.
func (m *Model) Err() string { return m.rootErr }

// Capturing is true: the form owns the keyboard.
func (m *Model) Capturing() bool { return true }

// View renders the login screen.
func (m *Model) View() string {
	body := ui.RenderForm("Entrar no mailterm", m.form, m.rootErr, m.pending)
	return body + "\n  " + theme.HelpStyle.Render("ctrl+n criar conta")
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.env.Width = width
	m.env.Height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.env.FormWidth())
	}
}
