// Package route maps navigation paths to screens and enforces the
// authenticated and guest-only route groups.
package route

import (
	"strings"

	"github.com/nhle/mailterm/internal/model"
)

// Screen identifies what a resolved path renders.
type Screen int

const (
	ScreenNone Screen = iota
	ScreenInbox
	ScreenDrafts
	ScreenSent
	ScreenCompose
	ScreenRead
	ScreenAccount
	ScreenLogin
	ScreenSignup
)

func (s Screen) String() string {
	switch s {
	case ScreenInbox:
		return "inbox"
	case ScreenDrafts:
		return "drafts"
	case ScreenSent:
		return "sent"
	case ScreenCompose:
		return "compose"
	case ScreenRead:
		return "read"
	case ScreenAccount:
		return "account"
	case ScreenLogin:
		return "login"
	case ScreenSignup:
		return "signup"
	default:
		return "none"
	}
}

// Well-known paths.
const (
	PathInbox   = "/"
	PathDrafts  = "/drafts"
	PathSent    = "/sent"
	PathCompose = "/compose"
	PathRead    = "/read"
	PathAccount = "/account"
	PathProfile = "/profile"
	PathAuth    = "/auth"
	PathLogin   = "/auth/login"
	PathSignup  = "/auth/signup"
)

// Guard decides whether a session may enter a route group. When it may
// not, redirect is the path to go to instead.
type Guard interface {
	Allow(sess *model.Session) (redirect string, ok bool)
}

// GuardFunc adapts a function to Guard.
type GuardFunc func(*model.Session) (string, bool)

func (f GuardFunc) Allow(sess *model.Session) (string, bool) { return f(sess) }

// RequireAuth admits only logged-in sessions.
var RequireAuth Guard = GuardFunc(func(sess *model.Session) (string, bool) {
	if sess == nil {
		return PathLogin, false
	}
	return "", true
})

// GuestOnly admits only logged-out sessions.
var GuestOnly Guard = GuardFunc(func(sess *model.Session) (string, bool) {
	if sess != nil {
		return PathInbox, false
	}
	return "", true
})

// Compose returns the path of the compose screen, for a draft when id is
// not empty.
func Compose(id model.ID) string {
	if id == "" {
		return PathCompose
	}
	return PathCompose + "/" + id.String()
}

// Read returns the path of the message view for id.
func Read(id model.ID) string {
	if id == "" {
		return PathRead
	}
	return PathRead + "/" + id.String()
}

// Clean normalizes a navigation path: query strings and fragments are
// dropped, a leading slash is added and trailing slashes are removed.
func Clean(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
