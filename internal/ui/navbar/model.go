// Package navbar renders the chrome shown above every authenticated
// screen and runs the logout call.
package navbar

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/logging"
	"github.com/nhle/mailterm/internal/route"
	"github.com/nhle/mailterm/internal/theme"
	"github.com/nhle/mailterm/internal/ui"
)

// Link is one navigation entry.
type Link struct {
	Key   string
	Label string
	Path  string
}

// Links are the sections reachable from the bar, in display order.
var Links = []Link{
	{"1", "Caixa de entrada", route.PathInbox},
	{"2", "Rascunhos", route.PathDrafts},
	{"3", "Enviados", route.PathSent},
	{"n", "Escrever", route.PathCompose},
	{"p", "Conta", route.PathAccount},
}

// Active returns the link matching path, by its first segment.
func Active(path string) (Link, bool) {
	path = route.Clean(path)
	for _, l := range Links {
		if l.Path == route.PathInbox {
			if path == route.PathInbox {
				return l, true
			}
			continue
		}
		if path == l.Path || strings.HasPrefix(path, l.Path+"/") {
			return l, true
		}
	}
	if path == route.PathProfile {
		return Links[len(Links)-1], true
	}
	return Link{}, false
}

// View renders the bar for path and the logged-in email.
func View(layout ui.Layout, path, email string) string {
	active, _ := Active(path)
	parts := make([]string, 0, len(Links)+1)
	parts = append(parts, " mailterm ")
	for _, l := range Links {
		parts = append(parts, theme.NavLinkStyle(l == active).Render(l.Key+" "+l.Label))
	}
	right := "L sair "
	if email != "" {
		right = email + "  " + right
	}
	return layout.RenderHeader(strings.Join(parts, ""), right)
}

// Logout ends the server-side session. The local session is cleared
// whatever the outcome.
func Logout(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		if err := client.Logout(context.Background()); err != nil {
			logging.Warn().Err(err).Str("component", "navbar").Msg("logout request failed")
		}
		return ui.Effects{ui.Logout()}
	}
}
