package login

import (
	"net/http"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/keys"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/query"
	"github.com/nhle/mailterm/internal/route"
	"github.com/nhle/mailterm/internal/ui"
	"github.com/nhle/mailterm/tests/testutil"
)

func newScreen(t *testing.T, f *testutil.FakeAPI) *Model {
	t.Helper()
	m := New(ui.Env{
		Client: api.New(model.APIConfig{BaseURL: f.URL, Timeout: time.Second}),
		Cache:  query.New(),
		Keys:   keys.DefaultKeyMap(),
		Width:  80,
		Height: 24,
	})
	m.Init()
	return m
}

func effects(t *testing.T, cmd tea.Cmd) ui.Effects {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	eff, ok := cmd().(ui.Effects)
	if !ok {
		t.Fatal("command did not produce Effects")
	}
	return eff
}

func TestLoginSuccess(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	f.Handle(http.MethodPost, "/login", testutil.JSON(http.StatusOK, map[string]string{"token": "jwt"}))

	m := newScreen(t, f)
	m.Seed("ana@exemplo.com", "12345678")

	cmd := m.Submit()
	if !m.Pending() {
		t.Error("Pending() = false while request in flight")
	}
	if again := m.Submit(); again != nil {
		t.Error("second Submit while pending should be ignored")
	}

	res := cmd().(ResultMsg)
	_, next := m.Update(res)
	eff := effects(t, next)
	if len(eff) != 1 || eff[0] != (ui.ChangeUserMsg{Token: "jwt"}) {
		t.Errorf("effects = %#v", eff)
	}
	if f.Count(http.MethodPost, "/login") != 1 {
		t.Errorf("login posted %d times", f.Count(http.MethodPost, "/login"))
	}
}

func TestLoginServerMessage(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	f.Handle(http.MethodPost, "/login", testutil.JSON(http.StatusUnauthorized, map[string]string{
		"mensagem": "Credenciais inválidas",
	}))

	m := newScreen(t, f)
	m.Seed("ana@exemplo.com", "12345678")
	m.Update(m.Submit()().(ResultMsg))

	if m.Pending() {
		t.Error("still pending after failure")
	}
	if m.Err() != "Credenciais inválidas" {
		t.Errorf("Err() = %q", m.Err())
	}
}

func TestLoginErroWithoutMensagem(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	f.Handle(http.MethodPost, "/login", testutil.JSON(http.StatusBadRequest, map[string]string{
		"erro": "Usuário não encontrado",
	}))

	m := newScreen(t, f)
	m.Seed("ana@exemplo.com", "12345678")
	m.Update(m.Submit()().(ResultMsg))

	if m.Err() != "Usuário não encontrado" {
		t.Errorf("Err() = %q", m.Err())
	}
}

func TestLoginNetworkFailureUsesDefault(t *testing.T) {
	m := New(ui.Env{
		Client: api.New(model.APIConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}),
		Keys:   keys.DefaultKeyMap(),
	})
	m.Init()
	m.Seed("ana@exemplo.com", "12345678")
	m.Update(m.Submit()().(ResultMsg))

	if m.Err() != DefaultError {
		t.Errorf("Err() = %q, want default", m.Err())
	}
}

func TestLoginValidation(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	m := newScreen(t, f)
	m.Seed("ana@exemplo.com", "curta")

	m.Submit()

	if m.Pending() {
		t.Error("invalid form was submitted")
	}
	if m.Err() != "A senha deve ter no mínimo 8 caracteres" {
		t.Errorf("Err() = %q", m.Err())
	}
	if n := len(f.Requests()); n != 0 {
		t.Errorf("%d requests sent for an invalid form", n)
	}
}

func TestLoginWithoutTokenKeepsScreen(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	m := newScreen(t, f)

	m.Update(ResultMsg{})
	if m.Pending() || m.Err() != "" {
		t.Errorf("pending = %v, err = %q", m.Pending(), m.Err())
	}
}

func TestSignupShortcut(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	m := newScreen(t, f)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	eff := effects(t, cmd)
	if len(eff) != 1 || eff[0] != ui.Navigate(route.PathSignup) {
		t.Errorf("effects = %#v", eff)
	}
}
