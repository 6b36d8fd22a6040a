package signup

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/route"
	"github.com/nhle/mailterm/internal/theme"
	"github.com/nhle/mailterm/internal/ui"
	"github.com/nhle/mailterm/internal/validation"
)

const (
	// DefaultError is shown when the server gives no usable message.
	DefaultError = "Erro ao realizar cadastro, tente novamente mais tarde"
	// Success is the alert shown after the account is created.
	Success = "Usuário cadastrado com sucesso!"
)

// ResultMsg carries the outcome of POST /usuarios.
type ResultMsg struct {
	Err error
}

type formBindings struct {
	nome  string
	email string
	senha string
}

// Model is the registration screen.
type Model struct {
	env     ui.Env
	fb      *formBindings
	form    *huh.Form
	pending bool
	rootErr string
}

// New creates the registration screen.
func New(env ui.Env) *Model {
	return &Model{env: env, fb: &formBindings{}}
}

// Init builds the form.
func (m *Model) Init() tea.Cmd {
	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	rules := validation.SignupForm{}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nome").
				Placeholder("Nome completo").
				CharLimit(255).
				Value(&m.fb.nome).
				Validate(validation.FieldFunc(rules, "nome")),
			huh.NewInput().
				Title("Email").
				Placeholder("email@exemplo.com").
				Value(&m.fb.email).
				Validate(validation.FieldFunc(rules, "email")),
			huh.NewInput().
				Title("Senha").
				Placeholder("Senha com mínimo 8 e máximo 20 caracteres").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.senha).
				Validate(validation.FieldFunc(rules, "senha")),
		),
	).WithWidth(m.env.FormWidth()).WithShowHelp(false)
}

// Update handles messages for the registration screen.
func (m *Model) Update(msg tea.Msg) (ui.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		return m, m.settle(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.env.Keys.Back) {
			return m, ui.Do(ui.Back())
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

// Submit validates the form and registers the account.
func (m *Model) Submit() tea.Cmd {
	if m.pending {
		return nil
	}

	input := validation.SignupForm{Nome: m.fb.nome, Email: m.fb.email, Senha: m.fb.senha}
	if ferr := validation.Validate(input); ferr != nil {
		m.rootErr = ferr.Error()
		return m.Init()
	}

	m.pending = true
	m.rootErr = ""
	client := m.env.Client
	reg := api.Registration{Nome: input.Nome, Email: input.Email, Senha: input.Senha}
	return func() tea.Msg {
		return ResultMsg{Err: client.CreateUser(context.Background(), reg)}
	}
}

func (m *Model) settle(res ResultMsg) tea.Cmd {
	m.pending = false
	if res.Err != nil {
		m.rootErr = api.UserMessage(res.Err, DefaultError)
		return m.Init()
	}
	return ui.Do(ui.Info(Success), ui.Navigate(route.PathLogin))
}

// Seed fills the form fields.
func (m *Model) Seed(nome, email, senha string) {
	m.fb.nome, m.fb.email, m.fb.senha = nome, email, senha
}

// Pending reports whether the registration is in flight.
func (m *Model) Pending() bool { return m.pending }

// Err returns the message shown under the form.
func (m *Model) Err() string { return m.rootErr }

// Capturing is true: the form owns the keyboard.
func (m *Model) Capturing() bool { return true }

// View renders the registration screen.
func (m *Model) View() string {
	body := ui.RenderForm("Criar conta", m.form, m.rootErr, m.pending)
	return body + "\n  " + theme.HelpStyle.Render("esc voltar")
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.env.Width = width
	m.env.Height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.env.FormWidth())
	}
}
