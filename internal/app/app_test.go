package app

import (
	"net/http"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/credential"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/queries"
	"github.com/nhle/mailterm/internal/query"
	"github.com/nhle/mailterm/internal/session"
	"github.com/nhle/mailterm/internal/ui"
	"github.com/nhle/mailterm/internal/ui/account"
	"github.com/nhle/mailterm/internal/ui/command"
	"github.com/nhle/mailterm/internal/ui/login"
	"github.com/nhle/mailterm/internal/ui/maillist"
	"github.com/nhle/mailterm/tests/testutil"
)

type harness struct {
	f      *testutil.FakeAPI
	slot   *credential.MemorySlot
	client *api.Client
	cache  *query.Cache
	store  *session.Store
}

// start builds the root model over a fake API. A non-empty token is put
// in the slot before bootstrap, as if left by an earlier run.
func start(t *testing.T, token string) (Model, *harness) {
	t.Helper()
	h := &harness{
		f:     testutil.NewFakeAPI(t),
		slot:  credential.NewMemorySlot(),
		cache: query.New(),
	}
	h.client = api.New(model.APIConfig{BaseURL: h.f.URL, Timeout: time.Second})
	if token != "" {
		h.slot.Set(token)
	}
	h.store = session.New(h.slot, h.client.Credential())
	h.store.Bootstrap()

	m := New(h.store, h.client, h.cache)
	return send(t, m, tea.WindowSizeMsg{Width: 120, Height: 30}), h
}

// send feeds msg to m and drops the resulting command.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	mdl, _ := m.Update(msg)
	return mdl.(Model)
}

// firstEffects runs cmd and returns the effects it carries, looking only
// at the first command of a batch.
func firstEffects(t *testing.T, cmd tea.Cmd) ui.Effects {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	for {
		batch, ok := msg.(tea.BatchMsg)
		if !ok {
			break
		}
		msg = batch[0]()
	}
	eff, ok := msg.(ui.Effects)
	if !ok {
		t.Fatalf("got %T, want effects", msg)
	}
	return eff
}

func TestGuestStartsAtLogin(t *testing.T) {
	m, _ := start(t, "")

	if m.Path() != "/auth/login" {
		t.Fatalf("Path() = %q", m.Path())
	}
	if _, ok := m.Screen().(*login.Model); !ok {
		t.Fatalf("screen = %T", m.Screen())
	}
	if strings.Contains(m.View(), "Rascunhos") {
		t.Error("guest screens must not show the navigation bar")
	}
}

func TestLoginShowsGuardedInbox(t *testing.T) {
	m, h := start(t, "")
	tok := testutil.UserToken(t, "42", "ana@exemplo.com")
	h.f.Handle(http.MethodPost, "/login", testutil.JSON(http.StatusOK, map[string]string{"token": tok}))
	h.f.Handle(http.MethodGet, "/usuarios", testutil.JSON(http.StatusOK, map[string]any{
		"usuario": map[string]any{"nome": "Ana", "email": "ana@exemplo.com"},
	}))

	scr := m.Screen().(*login.Model)
	scr.Seed("ana@exemplo.com", "12345678")
	mdl, cmd := m.Update(scr.Submit()())
	m = send(t, mdl.(Model), firstEffects(t, cmd))

	if m.Path() != "/" {
		t.Fatalf("Path() = %q, want /", m.Path())
	}
	if _, ok := m.Screen().(*maillist.Model); !ok {
		t.Fatalf("screen = %T", m.Screen())
	}
	if got, _ := h.slot.Get(); got != tok {
		t.Error("token was not persisted")
	}
	view := m.View()
	if !strings.Contains(view, "ana@exemplo.com") || !strings.Contains(view, "Rascunhos") {
		t.Errorf("navigation bar missing from view:\n%s", view)
	}

	h.cache.Fetch(queries.UserProfile(h.client))()
	if got := h.f.Last(t, http.MethodGet, "/usuarios").Authorization; got != "Bearer "+tok {
		t.Errorf("Authorization = %q", got)
	}
}

func TestProfileUnauthorizedEndsSession(t *testing.T) {
	m, h := start(t, testutil.UserToken(t, "42", "ana@exemplo.com"))
	h.f.Handle(http.MethodPut, "/usuarios", testutil.JSON(http.StatusUnauthorized, map[string]any{}))

	m = send(t, m, ui.Navigate("/account"))
	scr, ok := m.Screen().(*account.Model)
	if !ok {
		t.Fatalf("screen = %T", m.Screen())
	}

	scr.Seed("Ana", "12345678")
	mdl, cmd := m.Update(scr.Submit(account.ActionUpdate)())
	m = send(t, mdl.(Model), firstEffects(t, cmd))

	if m.Path() != "/auth/login" {
		t.Errorf("Path() = %q, want /auth/login", m.Path())
	}
	if h.store.LoggedIn() {
		t.Error("session survived a 401")
	}
	if _, ok := h.slot.Get(); ok {
		t.Error("token survived a 401")
	}
	if a := m.Alert(); a.Text != account.Unauthorized || !a.Error {
		t.Errorf("alert = %+v", a)
	}
}

func TestGuards(t *testing.T) {
	tok := func(t *testing.T) string { return testutil.UserToken(t, "42", "ana@exemplo.com") }
	tests := []struct {
		name   string
		token  func(*testing.T) string
		target string
		want   string
	}{
		{"guest to compose", nil, "/compose/3", "/auth/login"},
		{"guest to inbox", nil, "/", "/auth/login"},
		{"guest to signup", nil, "/auth/signup", "/auth/signup"},
		{"guest to auth index", nil, "/auth", "/auth"},
		{"user to login", tok, "/auth/login", "/"},
		{"user to read", tok, "/read/3", "/read/3"},
		{"user to unknown", tok, "/nowhere", "/"},
		{"user with query", tok, "/drafts/?page=2", "/drafts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := ""
			if tt.token != nil {
				raw = tt.token(t)
			}
			m, _ := start(t, raw)
			m = send(t, m, ui.Navigate(tt.target))
			if m.Path() != tt.want {
				t.Errorf("Path() = %q, want %q", m.Path(), tt.want)
			}
		})
	}
}

func TestBack(t *testing.T) {
	m, _ := start(t, testutil.UserToken(t, "42", "ana@exemplo.com"))
	m = send(t, m, ui.Navigate("/drafts"))
	m = send(t, m, ui.Navigate("/compose/7"))
	m = send(t, m, ui.Back())
	if m.Path() != "/drafts" {
		t.Errorf("Path() = %q, want /drafts", m.Path())
	}
}

func TestEffectsApplyInOrder(t *testing.T) {
	m, h := start(t, testutil.UserToken(t, "42", "ana@exemplo.com"))
	h.f.Handle(http.MethodGet, "/rascunhos", testutil.JSON(http.StatusOK, map[string]any{"rascunhos": []any{}}))
	h.cache.Fetch(queries.Drafts(h.client))()

	m = send(t, m, ui.Effects{ui.Info("Cadastro excluído com sucesso!"), ui.Logout()})

	if m.Path() != "/auth/login" {
		t.Errorf("Path() = %q", m.Path())
	}
	if m.Alert().Text != "Cadastro excluído com sucesso!" {
		t.Errorf("alert = %+v", m.Alert())
	}
	if _, ok := h.cache.Peek(queries.DraftsKey); ok {
		t.Error("cache kept data across logout")
	}
}

func TestGuardsRerunAfterEachEffect(t *testing.T) {
	m, h := start(t, testutil.UserToken(t, "42", "ana@exemplo.com"))

	m = send(t, m, ui.Effects{ui.Logout(), ui.Navigate("/drafts")})

	if m.Path() != "/auth/login" {
		t.Errorf("Path() = %q, want /auth/login", m.Path())
	}
	if h.store.LoggedIn() {
		t.Error("session survived the logout effect")
	}
	if _, ok := m.Screen().(*login.Model); !ok {
		t.Errorf("screen = %T", m.Screen())
	}
}

func TestInvalidateMarksStaleAndRefetches(t *testing.T) {
	m, h := start(t, testutil.UserToken(t, "42", "ana@exemplo.com"))
	h.f.Handle(http.MethodGet, "/rascunhos", testutil.JSON(http.StatusOK, map[string]any{"rascunhos": []any{}}))
	m = send(t, m, ui.Navigate("/drafts"))
	h.cache.Fetch(queries.Drafts(h.client))()

	mdl, cmd := m.Update(ui.InvalidateMsg{Key: queries.DraftsKey, Exact: true})
	m = mdl.(Model)
	if e, _ := h.cache.Peek(queries.DraftsKey); !e.Stale {
		t.Error("entry not marked stale")
	}
	if cmd == nil {
		t.Fatal("mounted list did not refetch")
	}
	if batch, ok := cmd().(tea.BatchMsg); ok {
		for _, c := range batch {
			c()
		}
	}
	if n := h.f.Count(http.MethodGet, "/rascunhos"); n != 2 {
		t.Errorf("GET /rascunhos called %d times, want 2", n)
	}
}

func TestGlobalKeys(t *testing.T) {
	m, _ := start(t, testutil.UserToken(t, "42", "ana@exemplo.com"))

	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	if m.Path() != "/drafts" {
		t.Errorf("2: Path() = %q", m.Path())
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if m.Overlay() != OverlayHelp {
		t.Fatal("? did not open help")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Overlay() != OverlayNone {
		t.Error("esc did not close help")
	}

	// Forms keep single keys for typing.
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if m.Path() != "/compose" {
		t.Fatalf("n: Path() = %q", m.Path())
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if m.Overlay() != OverlayNone || m.Path() != "/compose" {
		t.Error("a global shortcut fired while the editor had focus")
	}
}

func TestCommandPalette(t *testing.T) {
	m, _ := start(t, testutil.UserToken(t, "42", "ana@exemplo.com"))

	m = send(t, m, command.CommandMsg("sent"))
	if m.Path() != "/sent" {
		t.Errorf("Path() = %q", m.Path())
	}

	m = send(t, m, command.CommandMsg("frobnicate"))
	if a := m.Alert(); !a.Error || a.Text == "" {
		t.Errorf("alert = %+v", a)
	}
}

func TestLogoutKeySettlesWhateverTheOutcome(t *testing.T) {
	m, h := start(t, testutil.UserToken(t, "42", "ana@exemplo.com"))
	h.f.Handle(http.MethodPost, "/logout", testutil.JSON(http.StatusInternalServerError, map[string]any{}))

	mdl, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'L'}})
	m = mdl.(Model)
	if _, again := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'L'}}); again != nil {
		t.Error("a second logout started while the first was in flight")
	}

	m = send(t, m, firstEffects(t, cmd))
	if m.Path() != "/auth/login" || h.store.LoggedIn() {
		t.Errorf("Path() = %q, LoggedIn() = %v", m.Path(), h.store.LoggedIn())
	}
	if n := h.f.Count(http.MethodPost, "/logout"); n != 1 {
		t.Errorf("POST /logout called %d times", n)
	}
}
