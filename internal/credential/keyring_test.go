package credential

import (
	"testing"

	"github.com/99designs/keyring"
)

func exerciseSlot(t *testing.T, s Slot) {
	t.Helper()

	if tok, ok := s.Get(); ok || tok != "" {
		t.Fatalf("fresh slot Get() = %q, %v; want empty", tok, ok)
	}

	s.Set("abc.def.ghi")
	tok, ok := s.Get()
	if !ok || tok != "abc.def.ghi" {
		t.Fatalf("Get() after Set = %q, %v", tok, ok)
	}

	s.Set("second")
	if tok, _ := s.Get(); tok != "second" {
		t.Errorf("Get() after overwrite = %q", tok)
	}

	s.Remove()
	if _, ok := s.Get(); ok {
		t.Error("Get() after Remove reported a token")
	}

	// Removing twice is harmless.
	s.Remove()
	if _, ok := s.Get(); ok {
		t.Error("Get() after second Remove reported a token")
	}
}

func TestMemorySlot(t *testing.T) {
	exerciseSlot(t, NewMemorySlot())
}

func TestMemorySlotEmptyValueIsAbsent(t *testing.T) {
	s := NewMemorySlot()
	s.Set("")
	if _, ok := s.Get(); ok {
		t.Error("empty token should read as absent")
	}
}

func TestKeyringSlot(t *testing.T) {
	exerciseSlot(t, newKeyringSlot(keyring.NewArrayKeyring(nil), "auth_token"))
}

func TestKeyringSlotReadsExistingItem(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{
		{Key: "auth_token", Data: []byte("persisted")},
	})
	s := newKeyringSlot(ring, "auth_token")

	tok, ok := s.Get()
	if !ok || tok != "persisted" {
		t.Errorf("Get() = %q, %v; want persisted token", tok, ok)
	}
}
