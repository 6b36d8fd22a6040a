// Package compose is the draft editor: save, send and discard.
package compose

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/logging"
	"github.com/nhle/mailterm/internal/mailbox"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/queries"
	"github.com/nhle/mailterm/internal/query"
	"github.com/nhle/mailterm/internal/route"
	"github.com/nhle/mailterm/internal/theme"
	"github.com/nhle/mailterm/internal/ui"
	"github.com/nhle/mailterm/internal/validation"
)

// Action is what the user picked at the bottom of the editor.
type Action string

const (
	ActionSave    Action = "salvar"
	ActionSend    Action = "enviar"
	ActionDiscard Action = "excluir"
	ActionBack    Action = "voltar"
)

// Alerts and fallbacks shown by the editor.
const (
	Saved     = "Rascunho salvo com sucesso!"
	Sent      = "Email enviado com sucesso!"
	Discarded = "Rascunho excluído com sucesso!"

	ConfirmDiscard = "Tem certeza que deseja excluir o rascunho?"

	SaveError    = "Erro ao salvar o rascunho, tente novamente mais tarde"
	SendError    = "Erro ao enviar o email, tente novamente mais tarde"
	DiscardError = "Erro ao excluir o rascunho, tente novamente mais tarde"
	LoadError    = "Erro ao carregar o rascunho, tente novamente mais tarde"

	SendIncomplete = "Preencha destinatário, assunto e mensagem com um email válido para enviar"
	NoDraft        = "Salve o rascunho antes de excluí-lo"
)

// ResultMsg carries the outcome of a save, send or discard.
type ResultMsg struct {
	Action Action
	Draft  *model.Draft
	Err    error
}

type formBindings struct {
	recipient string
	subject   string
	body      string
	action    Action
	confirm   bool
}

func (fb *formBindings) mail() model.MailForm {
	return model.MailForm{EmailDestinatario: fb.recipient, Assunto: fb.subject, Corpo: fb.body}
}

type stage int

const (
	stageEdit stage = iota
	stageConfirm
)

// Model is the compose screen. With a draft id it edits that draft.
type Model struct {
	env      ui.Env
	draftID  model.ID
	composer *mailbox.Composer
	fb       *formBindings
	form     *huh.Form
	stage    stage
	loaded   model.MailForm
	pending  bool
	rootErr  string
}

// New creates the compose screen for draftID, which may be empty.
func New(env ui.Env, draftID model.ID) *Model {
	return &Model{
		env:      env,
		draftID:  draftID,
		composer: mailbox.NewComposer(env.Client),
		fb:       &formBindings{action: ActionSave},
	}
}

// Init shows any cached copy of the draft and refetches it.
func (m *Model) Init() tea.Cmd {
	if d, ok := query.Get[*model.Draft](m.env.Cache, queries.DraftKey(m.draftID)); ok && d != nil {
		m.prefill(d.Form())
	}
	return tea.Batch(m.edit(), m.env.Cache.Fetch(queries.Draft(m.env.Client, m.draftID)))
}

func (m *Model) edit() tea.Cmd {
	m.stage = stageEdit
	m.fb.confirm = false
	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	actions := []huh.Option[Action]{
		huh.NewOption("Salvar", ActionSave),
		huh.NewOption("Enviar", ActionSend),
	}
	if m.draftID != "" {
		actions = append(actions, huh.NewOption("Excluir", ActionDiscard))
	}
	actions = append(actions, huh.NewOption("Voltar", ActionBack))

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Para").
				Placeholder("email@exemplo.com").
				Value(&m.fb.recipient),
			huh.NewInput().
				Title("Assunto").
				Value(&m.fb.subject),
			huh.NewText().
				Title("Mensagem").
				CharLimit(10000).
				Lines(max(m.env.Height-16, 5)).
				Value(&m.fb.body).
				Validate(validation.FieldFunc(validation.MessageForm{}, "corpo")),
			huh.NewSelect[Action]().
				Title("Ação").
				Options(actions...).
				Value(&m.fb.action),
		),
	).WithWidth(m.env.FormWidth()).WithShowHelp(false)
}

func (m *Model) buildConfirm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(ConfirmDiscard).
				Affirmative("Sim").
				Negative("Não").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.env.FormWidth()).WithShowHelp(false)
}

// prefill replaces the form contents with draft unless the user has
// changed them since the last prefill.
func (m *Model) prefill(draft model.MailForm) bool {
	if m.fb.mail() != m.loaded {
		return false
	}
	m.fb.recipient, m.fb.subject, m.fb.body = draft.EmailDestinatario, draft.Assunto, draft.Corpo
	m.loaded = draft
	return true
}

// Update handles messages for the compose screen.
func (m *Model) Update(msg tea.Msg) (ui.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		return m, m.settle(msg)

	case query.ResultMsg:
		if msg.Discarded || !msg.Key.Equal(queries.DraftKey(m.draftID)) {
			return m, nil
		}
		if msg.Err != nil {
			m.rootErr = api.UserMessage(msg.Err, LoadError)
			return m, nil
		}
		d, _ := msg.Data.(*model.Draft)
		if d == nil || m.pending || m.stage != stageEdit {
			return m, nil
		}
		if m.prefill(d.Form()) {
			return m, m.edit()
		}
		return m, nil

	case ui.RefetchMsg:
		if msg.Has(queries.DraftKey(m.draftID)) {
			return m, m.env.Cache.Fetch(queries.Draft(m.env.Client, m.draftID))
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.env.Keys.Back) {
			if m.stage == stageConfirm {
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
		if m.stage == stageConfirm {
			return m, m.Confirm(m.fb.confirm)
		}
		return m, m.Submit(m.fb.action)
	}
	return m, cmd
}

// Submit runs action against the current form contents.
func (m *Model) Submit(action Action) tea.Cmd {
	if m.pending {
		return nil
	}
	m.rootErr = ""
	form := m.fb.mail()

	if ferr := validation.Validate(validation.MessageForm{Corpo: form.Corpo}); ferr != nil {
		m.rootErr = ferr.Error()
		return m.edit()
	}

	switch action {
	case ActionBack:
		return ui.Do(ui.Back())

	case ActionDiscard:
		if m.draftID == "" {
			m.rootErr = NoDraft
			return m.edit()
		}
		m.stage = stageConfirm
		m.form = m.buildConfirm()
		return m.form.Init()

	case ActionSend:
		if !mailbox.SendEnabled(form.EmailDestinatario, form.Assunto, form.Corpo) {
			m.rootErr = SendIncomplete
			return m.edit()
		}
		return m.run(ActionSend, func(ctx context.Context) (*model.Draft, error) {
			return nil, m.composer.Send(ctx, m.draftID, form)
		})

	default:
		return m.run(ActionSave, func(ctx context.Context) (*model.Draft, error) {
			return m.composer.Save(ctx, m.draftID, form)
		})
	}
}

// Confirm answers the discard prompt.
func (m *Model) Confirm(yes bool) tea.Cmd {
	if m.pending {
		return nil
	}
	if !yes || m.draftID == "" {
		return m.edit()
	}
	id := m.draftID
	return m.run(ActionDiscard, func(ctx context.Context) (*model.Draft, error) {
		return nil, m.composer.Discard(ctx, id)
	})
}

func (m *Model) run(action Action, fn func(context.Context) (*model.Draft, error)) tea.Cmd {
	m.pending = true
	return func() tea.Msg {
		d, err := fn(context.Background())
		return ResultMsg{Action: action, Draft: d, Err: err}
	}
}

func (m *Model) settle(res ResultMsg) tea.Cmd {
	m.pending = false
	if res.Err != nil {
		fallback := SaveError
		switch res.Action {
		case ActionSend:
			fallback = SendError
		case ActionDiscard:
			fallback = DiscardError
		}
		if errors.Is(res.Err, mailbox.ErrDraftNotConfirmed) {
			logging.Warn().Str("component", "compose").Str("draft", m.draftID.String()).Msg("draft write was not echoed")
		}
		m.rootErr = api.UserMessage(res.Err, fallback)
		return m.edit()
	}

	switch res.Action {
	case ActionSend:
		return ui.Do(ui.Info(Sent), ui.Redirect(route.PathDrafts))
	case ActionDiscard:
		return ui.Do(
			ui.InvalidateMsg{Key: queries.DraftsKey, Exact: true},
			ui.Info(Discarded),
			ui.Navigate(route.PathDrafts),
		)
	default:
		id := m.draftID
		if res.Draft != nil && res.Draft.RascunhoID != "" {
			id = res.Draft.RascunhoID
		}
		m.loaded = m.fb.mail()
		return tea.Batch(
			ui.Do(
				ui.InvalidateMsg{Key: queries.DraftKey(id), Exact: true},
				ui.Info(Saved),
				ui.Redirect(route.Compose(id)),
			),
			m.edit(),
		)
	}
}

// Seed fills the editor fields.
func (m *Model) Seed(form model.MailForm) {
	m.fb.recipient, m.fb.subject, m.fb.body = form.EmailDestinatario, form.Assunto, form.Corpo
}

// Form returns the editor contents.
func (m *Model) Form() model.MailForm { return m.fb.mail() }

// Confirming reports whether the discard prompt is shown.
func (m *Model) Confirming() bool { return m.stage == stageConfirm }

// Pending reports whether a mutation is in flight.
func (m *Model) Pending() bool { return m.pending }

// Err returns the message shown under the form.
func (m *Model) Err() string { return m.rootErr }

// Capturing is true: the editor owns the keyboard.
func (m *Model) Capturing() bool { return true }

// View renders the compose screen.
func (m *Model) View() string {
	title := "Novo email"
	if m.draftID != "" {
		title = "Rascunho"
	}
	body := ui.RenderForm(title, m.form, m.rootErr, m.pending)
	return body + "\n  " + theme.HelpStyle.Render("tab próximo campo • esc voltar")
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.env.Width = width
	m.env.Height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.env.FormWidth())
	}
}
