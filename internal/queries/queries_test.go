package queries

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/query"
	"github.com/nhle/mailterm/tests/testutil"
)

func TestDescriptorKeys(t *testing.T) {
	c := api.New(model.APIConfig{BaseURL: "http://unused"})
	tests := []struct {
		name    string
		desc    query.Descriptor
		key     query.Key
		enabled bool
	}{
		{"inbox waits for email", Inbox(c, ""), query.Key{"inbox"}, false},
		{"inbox", Inbox(c, "a@b.co"), query.Key{"inbox"}, true},
		{"drafts", Drafts(c), query.Key{"drafts"}, true},
		{"profile", UserProfile(c), query.Key{"userProfile"}, true},
		{"draft", Draft(c, "4"), query.Key{"draft", "4"}, true},
		{"draft without id", Draft(c, ""), query.Key{"draft", ""}, false},
		{"mail", Mail(c, "8"), query.Key{"mails", "8"}, true},
		{"mail without id", Mail(c, ""), query.Key{"mails", ""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.desc.Key.Equal(tt.key) {
				t.Errorf("Key = %v, want %v", tt.desc.Key, tt.key)
			}
			if tt.desc.Enabled != tt.enabled {
				t.Errorf("Enabled = %v, want %v", tt.desc.Enabled, tt.enabled)
			}
		})
	}
}

func TestFetchUnwrapsEnvelopes(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	f.Handle(http.MethodGet, "/emails", testutil.JSON(http.StatusOK, map[string]any{
		"emails": []map[string]any{{"emailId": 1, "assunto": "oi", "status": "lido"}},
	}))
	f.Handle(http.MethodGet, "/usuarios", testutil.JSON(http.StatusOK, map[string]any{
		"usuario": map[string]any{"nome": "Ana", "email": "ana@exemplo.com"},
	}))
	f.Handle(http.MethodGet, "/rascunhos/3", testutil.JSON(http.StatusOK, map[string]any{
		"rascunho": map[string]any{"rascunhoId": "3", "assunto": "rascunho"},
	}))

	c := api.New(model.APIConfig{BaseURL: f.URL, Timeout: time.Second})
	ctx := context.Background()

	v, err := Inbox(c, "ana@exemplo.com").Fetch(ctx)
	if err != nil {
		t.Fatalf("Inbox fetch: %v", err)
	}
	mails := v.([]model.Mail)
	if len(mails) != 1 || mails[0].EmailID != "1" || !mails[0].IsRead() {
		t.Errorf("mails = %+v", mails)
	}

	v, err = UserProfile(c).Fetch(ctx)
	if err != nil {
		t.Fatalf("UserProfile fetch: %v", err)
	}
	if u := v.(*model.User); u == nil || u.Email != "ana@exemplo.com" {
		t.Errorf("user = %+v", u)
	}

	v, err = Draft(c, "3").Fetch(ctx)
	if err != nil {
		t.Fatalf("Draft fetch: %v", err)
	}
	if d := v.(*model.Draft); d == nil || d.Assunto != "rascunho" {
		t.Errorf("draft = %+v", d)
	}
}
