// Package ui holds what the screens share: the messages they send to the
// application root, the Screen contract and the layout helpers.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/keys"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/query"
)

// NavigateMsg asks the root to change the current path. Back pops the
// history and ignores Path.
type NavigateMsg struct {
	Path    string
	Replace bool
	Back    bool
}

// ChangeUserMsg asks the root to replace the session. An empty Token logs
// out.
type ChangeUserMsg struct {
	Token string
}

// InvalidateMsg marks cached reads stale.
type InvalidateMsg struct {
	Key   query.Key
	Exact bool
}

// RefetchMsg tells the mounted screen which keys were invalidated.
type RefetchMsg struct {
	Keys []query.Key
}

// Has reports whether key is among the invalidated keys.
func (m RefetchMsg) Has(key query.Key) bool {
	for _, k := range m.Keys {
		if k.Equal(key) {
			return true
		}
	}
	return false
}

// AlertMsg shows Text in the status bar until the next alert or key press.
type AlertMsg struct {
	Text  string
	Error bool
}

// Effects is an ordered list of messages the root applies one after the
// other.
type Effects []tea.Msg

// Do returns a command emitting msgs as Effects.
func Do(msgs ...tea.Msg) tea.Cmd {
	return func() tea.Msg { return Effects(msgs) }
}

// Navigate pushes path.
func Navigate(path string) NavigateMsg { return NavigateMsg{Path: path} }

// Redirect replaces the current path.
func Redirect(path string) NavigateMsg { return NavigateMsg{Path: path, Replace: true} }

// Back returns to the previous path.
func Back() NavigateMsg { return NavigateMsg{Back: true} }

// Logout clears the session.
func Logout() ChangeUserMsg { return ChangeUserMsg{} }

// Info is a confirmation alert.
func Info(text string) AlertMsg { return AlertMsg{Text: text} }

// Failure is an error alert.
func Failure(text string) AlertMsg { return AlertMsg{Text: text, Error: true} }

// Screen is a routed view mounted by the root.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
	// Capturing reports whether the screen wants raw key input, which
	// turns off the single-key global shortcuts.
	Capturing() bool
}

// Env is what a screen is built with.
type Env struct {
	Client  *api.Client
	Cache   *query.Cache
	Session *model.Session
	Keys    *keys.KeyMap
	Width   int
	Height  int
}

// Email returns the address of the logged-in user, or "".
func (e Env) Email() string {
	if e.Session == nil {
		return ""
	}
	return e.Session.Email
}

// FormWidth clamps the width of a form to a readable range.
func (e Env) FormWidth() int {
	return min(max(e.Width-4, 40), 100)
}
