// Package account is the profile screen: rename, change password and
// delete the account.
package account

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/queries"
	"github.com/nhle/mailterm/internal/query"
	"github.com/nhle/mailterm/internal/theme"
	"github.com/nhle/mailterm/internal/token"
	"github.com/nhle/mailterm/internal/ui"
	"github.com/nhle/mailterm/internal/validation"
)

// Action is what the user picked at the bottom of the form.
type Action string

const (
	ActionUpdate Action = "salvar"
	ActionDelete Action = "excluir"
	ActionBack   Action = "voltar"
)

const (
	Updated      = "Cadastro atualizado com sucesso!"
	Deleted      = "Cadastro excluído com sucesso!"
	Unauthorized = "Seu usuário não está autorizado, faça login novamente."

	ConfirmDelete = "Tem certeza que deseja excluir sua conta?"

	UpdateError = "Erro ao atualizar o cadastro, tente novamente mais tarde"
	DeleteError = "Erro ao excluir o cadastro, tente novamente mais tarde"
	LoadError   = "Erro ao carregar o cadastro, tente novamente mais tarde"
)

// ResultMsg carries the outcome of an update or delete.
type ResultMsg struct {
	Action Action
	Err    error
}

type formBindings struct {
	nome    string
	senha   string
	action  Action
	confirm bool
}

// Model is the account screen.
type Model struct {
	env        ui.Env
	fb         *formBindings
	form       *huh.Form
	profile    *model.User
	confirming bool
	pending    bool
	rootErr    string
	now        func() time.Time
}

// New creates the account screen.
func New(env ui.Env) *Model {
	return &Model{env: env, fb: &formBindings{action: ActionUpdate}, now: time.Now}
}

// Init shows the cached profile, if any, and refetches it.
func (m *Model) Init() tea.Cmd {
	if u, ok := query.Get[*model.User](m.env.Cache, queries.UserProfileKey); ok && u != nil {
		m.setProfile(u)
	}
	return tea.Batch(m.edit(), m.env.Cache.Fetch(queries.UserProfile(m.env.Client)))
}

func (m *Model) setProfile(u *model.User) {
	if m.profile == nil || m.fb.nome == m.profile.Nome {
		m.fb.nome = u.Nome
	}
	m.profile = u
}

func (m *Model) edit() tea.Cmd {
	m.confirming = false
	m.fb.confirm = false
	rules := validation.ProfileForm{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nome").
				CharLimit(255).
				Value(&m.fb.nome).
				Validate(validation.FieldFunc(rules, "nome")),
			huh.NewInput().
				Title("Nova senha").
				Placeholder("Senha com mínimo 8 e máximo 20 caracteres").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.senha),
			huh.NewSelect[Action]().
				Title("Ação").
				Options(
					huh.NewOption("Salvar", ActionUpdate),
					huh.NewOption("Excluir conta", ActionDelete),
					huh.NewOption("Voltar", ActionBack),
				).
				Value(&m.fb.action),
		),
	).WithWidth(m.env.FormWidth()).WithShowHelp(false)
	return m.form.Init()
}

func (m *Model) confirm() tea.Cmd {
	m.confirming = true
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(ConfirmDelete).
				Affirmative("Sim").
				Negative("Não").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.env.FormWidth()).WithShowHelp(false)
	return m.form.Init()
}

// Update handles messages for the account screen.
func (m *Model) Update(msg tea.Msg) (ui.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		return m, m.settle(msg)

	case query.ResultMsg:
		if msg.Discarded || !msg.Key.Equal(queries.UserProfileKey) {
			return m, nil
		}
		if msg.Err != nil {
			m.rootErr = api.UserMessage(msg.Err, LoadError)
			return m, nil
		}
		u, _ := msg.Data.(*model.User)
		if u == nil || m.pending || m.confirming {
			return m, nil
		}
		m.setProfile(u)
		return m, m.edit()

	case ui.RefetchMsg:
		if msg.Has(queries.UserProfileKey) {
			return m, m.env.Cache.Fetch(queries.UserProfile(m.env.Client))
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.env.Keys.Back) && !m.pending {
			if m.confirming {
				return m, m.edit()
			}
			return m, ui.Do(ui.Back())
		}
	}

	if m.pending {
		return m, nil
	}

	var cmd tea.Cmd
	m.form, cmd = ui.UpdateForm(m.form, msg)
	if submitted, _ := ui.FormDone(m.form); submitted {
		if m.confirming {
			return m, m.Confirm(m.fb.confirm)
		}
		return m, m.Submit(m.fb.action)
	}
	return m, cmd
}

// Submit runs action against the form contents.
func (m *Model) Submit(action Action) tea.Cmd {
	if m.pending {
		return nil
	}
	m.rootErr = ""

	switch action {
	case ActionBack:
		return ui.Do(ui.Back())

	case ActionDelete:
		return m.confirm()

	default:
		input := validation.ProfileForm{Nome: m.fb.nome, Senha: m.fb.senha}
		if ferr := validation.Validate(input); ferr != nil {
			m.rootErr = ferr.Error()
			return m.edit()
		}
		client := m.env.Client
		upd := api.UserUpdate{Nome: input.Nome, Senha: input.Senha}
		return m.run(ActionUpdate, func(ctx context.Context) error {
			return client.UpdateUser(ctx, upd)
		})
	}
}

// Confirm answers the delete prompt.
func (m *Model) Confirm(yes bool) tea.Cmd {
	if m.pending {
		return nil
	}
	if !yes {
		return m.edit()
	}
	client := m.env.Client
	return m.run(ActionDelete, client.DeleteUser)
}

func (m *Model) run(action Action, fn func(context.Context) error) tea.Cmd {
	m.pending = true
	return func() tea.Msg {
		return ResultMsg{Action: action, Err: fn(context.Background())}
	}
}

func (m *Model) settle(res ResultMsg) tea.Cmd {
	m.pending = false
	if res.Err != nil {
		if api.IsUnauthorized(res.Err) {
			return ui.Do(ui.Failure(Unauthorized), ui.Logout())
		}
		fallback := UpdateError
		if res.Action == ActionDelete {
			fallback = DeleteError
		}
		m.rootErr = api.UserMessage(res.Err, fallback)
		return m.edit()
	}

	if res.Action == ActionDelete {
		return ui.Do(ui.Info(Deleted), ui.Logout())
	}
	m.fb.senha = ""
	return tea.Batch(
		ui.Do(
			ui.InvalidateMsg{Key: queries.UserProfileKey, Exact: true},
			ui.Info(Updated),
		),
		m.edit(),
	)
}

// Seed fills the form fields.
func (m *Model) Seed(nome, senha string) {
	m.fb.nome, m.fb.senha = nome, senha
}

// Name returns the name in the form.
func (m *Model) Name() string { return m.fb.nome }

// Confirming reports whether the delete prompt is shown.
func (m *Model) Confirming() bool { return m.confirming }

// Pending reports whether a mutation is in flight.
func (m *Model) Pending() bool { return m.pending }

// Err returns the message shown under the form.
func (m *Model) Err() string { return m.rootErr }

// Capturing is true: the form owns the keyboard.
func (m *Model) Capturing() bool { return true }

// Details renders what the client knows about the session.
func (m *Model) Details() string {
	line := func(label, value string) string {
		if value == "" {
			value = "—"
		}
		return theme.MetaStyle.Render(fmt.Sprintf("%-10s", label)) + theme.ValueStyle.Render(value)
	}

	email := m.env.Email()
	if m.profile != nil && m.profile.Email != "" {
		email = m.profile.Email
	}
	var id, expiry string
	if s := m.env.Session; s != nil {
		id = s.ID
		if p, ok := token.Decode(s.Token); ok {
			if exp, ok := p.Expiry(); ok {
				expiry = exp.Local().Format("02/01/2006 15:04")
				if exp.Before(m.now()) {
					expiry += " (expirado)"
				}
			}
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		line("Email:", email),
		line("Usuário:", id),
		line("Expira:", expiry),
	)
}

// View renders the account screen.
func (m *Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Padding(1, 2, 0).Render(m.Details()),
		ui.RenderForm("Minha conta", m.form, m.rootErr, m.pending),
		"  "+theme.HelpStyle.Render("esc voltar"),
	)
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.env.Width = width
	m.env.Height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.env.FormWidth())
	}
}
