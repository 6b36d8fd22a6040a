package route

import (
	"strings"

	"github.com/nhle/mailterm/internal/model"
)

// maxRedirects bounds how many guard redirects Resolve follows.
const maxRedirects = 8

// Group is a set of routes sharing a guard.
type Group struct {
	Guard Guard
	// Chrome marks groups rendered inside the navigation bar.
	Chrome bool
}

var (
	authed = Group{Guard: RequireAuth, Chrome: true}
	guest  = Group{Guard: GuestOnly}
)

type entry struct {
	segments []string
	screen   Screen
	group    Group
}

// Resolution is the outcome of resolving a path.
type Resolution struct {
	// Path is the terminal path after redirects.
	Path   string
	Screen Screen
	Params map[string]string
	// Redirect is set when Path differs from the requested path.
	Redirect string
	Chrome   bool
}

// Param returns the named path parameter as an ID.
func (r Resolution) Param(name string) model.ID {
	return model.ID(r.Params[name])
}

// Router resolves paths against a fixed route table.
type Router struct {
	entries []entry
}

// NewRouter returns the mail client route table. Optional parameters are
// written with a trailing '?'.
func NewRouter() *Router {
	r := &Router{}
	r.add("/", ScreenInbox, authed)
	r.add("/drafts", ScreenDrafts, authed)
	r.add("/sent", ScreenSent, authed)
	r.add("/compose/:draftId?", ScreenCompose, authed)
	r.add("/read/:mailId?", ScreenRead, authed)
	r.add("/account", ScreenAccount, authed)
	r.add("/profile", ScreenAccount, authed)
	r.add("/auth", ScreenLogin, guest)
	r.add("/auth/login", ScreenLogin, guest)
	r.add("/auth/signup", ScreenSignup, guest)
	return r
}

func (r *Router) add(pattern string, screen Screen, group Group) {
	r.entries = append(r.entries, entry{
		segments: split(pattern),
		screen:   screen,
		group:    group,
	})
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func (e entry) match(segs []string) (map[string]string, bool) {
	params := map[string]string{}
	if len(segs) > len(e.segments) {
		return nil, false
	}
	for i, pat := range e.segments {
		name, isParam := strings.CutPrefix(pat, ":")
		if isParam {
			name, optional := strings.CutSuffix(name, "?")
			if i >= len(segs) {
				if !optional {
					return nil, false
				}
				continue
			}
			params[name] = segs[i]
			continue
		}
		if i >= len(segs) || segs[i] != pat {
			return nil, false
		}
	}
	return params, true
}

func (r *Router) lookup(path string) (entry, map[string]string, bool) {
	segs := split(path)
	for _, e := range r.entries {
		if params, ok := e.match(segs); ok {
			return e, params, true
		}
	}
	return entry{}, nil, false
}

// Resolve matches path and applies its group guard for sess, following
// redirects until a route admits the session. Unknown paths resolve as
// the inbox.
func (r *Router) Resolve(path string, sess *model.Session) Resolution {
	requested := Clean(path)
	current := requested

	for range maxRedirects {
		e, params, ok := r.lookup(current)
		if !ok {
			current = PathInbox
			continue
		}
		if to, allowed := e.group.Guard.Allow(sess); !allowed {
			current = Clean(to)
			continue
		}

		res := Resolution{
			Path:   current,
			Screen: e.screen,
			Params: params,
			Chrome: e.group.Chrome,
		}
		if current != requested {
			res.Redirect = current
		}
		return res
	}

	// The route table has no cycles; landing here means a guard is broken.
	return Resolution{Path: current, Screen: ScreenNone, Redirect: current}
}
