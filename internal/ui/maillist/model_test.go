package maillist

import (
	"net/http"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/keys"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/queries"
	"github.com/nhle/mailterm/internal/query"
	"github.com/nhle/mailterm/internal/route"
	"github.com/nhle/mailterm/internal/ui"
	"github.com/nhle/mailterm/tests/testutil"
)

func fakeMailbox(t *testing.T) *testutil.FakeAPI {
	t.Helper()
	f := testutil.NewFakeAPI(t)
	f.Handle(http.MethodGet, "/usuarios", testutil.JSON(http.StatusOK, map[string]any{
		"usuario": map[string]any{"nome": "Ana", "email": "ana@exemplo.com"},
	}))
	f.Handle(http.MethodGet, "/emails", testutil.JSON(http.StatusOK, map[string]any{
		"emails": []map[string]any{
			{"emailId": 1, "emailRemetente": "bia@exemplo.com", "assunto": "Oi", "status": "lido"},
			{"emailId": 2, "emailRemetente": "ana@exemplo.com", "assunto": "Re: Oi"},
		},
	}))
	f.Handle(http.MethodGet, "/rascunhos", testutil.JSON(http.StatusOK, map[string]any{
		"rascunhos": []map[string]any{{"rascunhoId": 7, "emailDestinatario": "bia@exemplo.com"}},
	}))
	return f
}

func newScreen(f *testutil.FakeAPI, mode Mode) *Model {
	return New(ui.Env{
		Client: api.New(model.APIConfig{BaseURL: f.URL, Timeout: time.Second}),
		Cache:  query.New(),
		Keys:   keys.DefaultKeyMap(),
		Width:  100,
		Height: 20,
	}, mode)
}

// pump runs cmd and feeds query results back until the screen stops
// producing them.
func pump(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			pump(t, m, c)
		}
	case query.ResultMsg:
		_, next := m.Update(msg)
		pump(t, m, next)
	}
}

func TestInboxWaitsForProfile(t *testing.T) {
	f := fakeMailbox(t)
	m := newScreen(f, ModeInbox)

	msg, ok := m.Init()().(query.ResultMsg)
	if !ok {
		t.Fatal("Init should fetch only the profile")
	}
	if !msg.Key.Equal(queries.UserProfileKey) {
		t.Fatalf("first fetch = %v, want profile", msg.Key)
	}
	if n := f.Count(http.MethodGet, "/emails"); n != 0 {
		t.Fatalf("inbox fetched %d times before the profile email was known", n)
	}

	_, next := m.Update(msg)
	pump(t, m, next)

	rows := m.Rows()
	if len(rows) != 2 {
		t.Fatalf("rows = %+v", rows)
	}
	if !rows[0].Read || rows[1].Read {
		t.Errorf("read flags = %v, %v", rows[0].Read, rows[1].Read)
	}
}

func TestSentFiltersBySender(t *testing.T) {
	f := fakeMailbox(t)
	m := newScreen(f, ModeSent)
	pump(t, m, m.Init())

	rows := m.Rows()
	if len(rows) != 1 || rows[0].ID != "2" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestDraftsOpenCompose(t *testing.T) {
	f := fakeMailbox(t)
	m := newScreen(f, ModeDrafts)
	pump(t, m, m.Init())

	if rows := m.Rows(); len(rows) != 1 || !rows[0].Draft {
		t.Fatalf("rows = %+v", rows)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	eff := cmd().(ui.Effects)
	if len(eff) != 1 || eff[0] != ui.Navigate(route.Compose("7")) {
		t.Errorf("effects = %#v", eff)
	}
}

func TestInboxOpenRead(t *testing.T) {
	f := fakeMailbox(t)
	m := newScreen(f, ModeInbox)
	pump(t, m, m.Init())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	eff := cmd().(ui.Effects)
	if len(eff) != 1 || eff[0] != ui.Navigate("/read/1") {
		t.Errorf("effects = %#v", eff)
	}
}

func TestLoadError(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	f.Handle(http.MethodGet, "/rascunhos", testutil.JSON(http.StatusInternalServerError, map[string]any{}))

	m := newScreen(f, ModeDrafts)
	pump(t, m, m.Init())

	if m.Err() != ModeDrafts.loadError() {
		t.Errorf("Err() = %q", m.Err())
	}
}

func TestRefetchOnInvalidate(t *testing.T) {
	f := fakeMailbox(t)
	m := newScreen(f, ModeDrafts)
	pump(t, m, m.Init())

	_, cmd := m.Update(ui.RefetchMsg{Keys: []query.Key{queries.DraftsKey}})
	pump(t, m, cmd)

	if n := f.Count(http.MethodGet, "/rascunhos"); n != 2 {
		t.Errorf("drafts fetched %d times, want 2", n)
	}

	if _, cmd := m.Update(ui.RefetchMsg{Keys: []query.Key{queries.MailKey("1")}}); cmd != nil {
		t.Error("unrelated invalidation triggered a refetch")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"abc", 5, "abc"},
		{"abcdef", 4, "abc…"},
		{"ação", 3, "aç…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
