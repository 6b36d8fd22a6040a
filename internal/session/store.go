// Package session owns the client's notion of who is logged in.
//
// A Store is created once by the application root and passed by reference
// to whatever needs to read or change the session. ChangeUser is the only
// mutation: it keeps the published Session, the persisted token slot and
// the HTTP client's bearer credential in lockstep.
package session

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/nhle/mailterm/internal/credential"
	"github.com/nhle/mailterm/internal/logging"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/token"
)

// Credential is the bearer credential holder of the HTTP client.
type Credential interface {
	Set(token string)
	Clear()
}

// Listener is notified after every session change.
type Listener func(*model.Session)

// Store holds the current session.
type Store struct {
	mu        sync.RWMutex
	current   *model.Session
	slot      credential.Slot
	cred      Credential
	listeners []Listener
	log       zerolog.Logger
}

// New creates an empty store writing through to slot and cred.
func New(slot credential.Slot, cred Credential) *Store {
	return &Store{
		slot: slot,
		cred: cred,
		log:  logging.With("session"),
	}
}

// Bootstrap seeds the store from the persisted slot. It is meant to be
// called exactly once, at start-up.
func (s *Store) Bootstrap() {
	raw, _ := s.slot.Get()
	s.ChangeUser(raw)
}

// ChangeUser replaces the session. A non-empty raw token logs the user in:
// it is persisted, installed as the bearer credential and decoded into the
// published Session. An empty token logs out, clearing all three.
//
// A token whose payload cannot be decoded still counts as a session, with
// blank id and email; the server decides whether it is valid.
func (s *Store) ChangeUser(raw string) {
	var next *model.Session

	s.mu.Lock()
	if raw != "" {
		payload, ok := token.Decode(raw)
		if !ok {
			s.log.Warn().Msg("session token payload could not be decoded")
		}

		s.slot.Set(raw)
		s.cred.Set(raw)

		next = &model.Session{
			Token: raw,
			ID:    payload.ID(),
			Email: payload.Email(),
		}
	} else {
		s.slot.Remove()
		s.cred.Clear()
	}
	s.current = next
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	if next != nil {
		s.log.Info().Str("user_id", next.ID).Str("email", next.Email).Msg("session started")
	} else {
		s.log.Info().Msg("session cleared")
	}

	for _, fn := range listeners {
		fn(next)
	}
}

// Current returns the published session, or nil when logged out.
func (s *Store) Current() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// LoggedIn reports whether a session is present.
func (s *Store) LoggedIn() bool {
	return s.Current() != nil
}

// Subscribe registers fn to run after every ChangeUser call.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
