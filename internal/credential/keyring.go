package credential

import (
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"
	"github.com/rs/zerolog"

	"github.com/nhle/mailterm/internal/logging"
)

const serviceName = "mailterm"

// Slot is a single-key store for the raw bearer token. Absence of the key
// means no session. Implementations never fail from the caller's view:
// backend errors are logged and the slot behaves as empty.
type Slot interface {
	Get() (string, bool)
	Set(token string)
	Remove()
}

// KeyringSlot keeps the token in the system keyring.
type KeyringSlot struct {
	ring keyring.Keyring
	key  string
	log  zerolog.Logger
}

// openKeyring returns a configured keyring instance. fileDir is used by the
// encrypted file backend when no native keyring is available.
func openKeyring(fileDir string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("mailterm-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// NewKeyringSlot opens the system keyring and returns a slot storing the
// token under key.
func NewKeyringSlot(key, fileDir string) (*KeyringSlot, error) {
	ring, err := openKeyring(fileDir)
	if err != nil {
		return nil, err
	}
	return newKeyringSlot(ring, key), nil
}

func newKeyringSlot(ring keyring.Keyring, key string) *KeyringSlot {
	return &KeyringSlot{
		ring: ring,
		key:  key,
		log:  logging.With("credential"),
	}
}

// Get retrieves the token. A missing item is reported as absent.
func (s *KeyringSlot) Get() (string, bool) {
	item, err := s.ring.Get(s.key)
	if err != nil {
		if !errors.Is(err, keyring.ErrKeyNotFound) {
			s.log.Warn().Err(err).Str("key", s.key).Msg("reading token slot")
		}
		return "", false
	}
	if len(item.Data) == 0 {
		return "", false
	}
	return string(item.Data), true
}

// Set stores the token.
func (s *KeyringSlot) Set(token string) {
	err := s.ring.Set(keyring.Item{
		Key:   s.key,
		Data:  []byte(token),
		Label: "mailterm session token",
	})
	if err != nil {
		s.log.Error().Err(err).Str("key", s.key).Msg("writing token slot")
	}
}

// Remove deletes the token. Removing an absent token is not an error.
func (s *KeyringSlot) Remove() {
	err := s.ring.Remove(s.key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		s.log.Error().Err(err).Str("key", s.key).Msg("removing token slot")
	}
}

// MemorySlot is a process-scoped slot: the token disappears when the
// program exits, the terminal analog of tab-scoped browser storage.
type MemorySlot struct {
	mu    sync.Mutex
	token string
	set   bool
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Get returns the stored token.
func (s *MemorySlot) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set || s.token == "" {
		return "", false
	}
	return s.token, true
}

// Set stores the token.
func (s *MemorySlot) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.set = true
}

// Remove clears the slot.
func (s *MemorySlot) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.set = false
}
