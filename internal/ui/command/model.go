package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/route"
	"github.com/nhle/mailterm/internal/theme"
	"github.com/nhle/mailterm/internal/ui"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// LogoutMsg asks the root to end the session through the API.
type LogoutMsg struct{}

// Parse turns a palette entry into the message the root should handle.
// Paths are taken as they are; names accept English and Portuguese.
func Parse(input string) (tea.Msg, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("comando vazio")
	}
	if strings.HasPrefix(input, "/") {
		return ui.Navigate(route.Clean(input)), nil
	}

	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "inbox", "entrada", "caixa":
		return ui.Navigate(route.PathInbox), nil
	case "drafts", "rascunhos":
		return ui.Navigate(route.PathDrafts), nil
	case "sent", "enviados":
		return ui.Navigate(route.PathSent), nil
	case "compose", "escrever", "novo":
		return ui.Navigate(route.Compose(model.ID(arg))), nil
	case "read", "ler":
		if arg == "" {
			return nil, fmt.Errorf("informe o id do email")
		}
		return ui.Navigate(route.Read(model.ID(arg))), nil
	case "profile", "account", "perfil", "conta":
		return ui.Navigate(route.PathAccount), nil
	case "login", "entrar":
		return ui.Navigate(route.PathLogin), nil
	case "signup", "cadastro":
		return ui.Navigate(route.PathSignup), nil
	case "back", "voltar":
		return ui.Back(), nil
	case "logout", "sair":
		return LogoutMsg{}, nil
	case "quit", "q", "fechar":
		return tea.QuitMsg{}, nil
	}
	return nil, fmt.Errorf("comando desconhecido: %s", name)
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "inbox, drafts, compose, read <id>, logout, quit ou /caminho"
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = max(width-6, 10)

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEnter {
		cmd := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if cmd == "" {
			return m, nil
		}
		return m, func() tea.Msg { return CommandMsg(cmd) }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("Comandos"),
		m.input.View(),
	)
	return theme.PanelStyle.
		Width(max(m.width-4, 10)).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-6, 10)
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
