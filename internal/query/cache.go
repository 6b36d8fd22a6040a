// Package query caches the results of remote reads per key and delivers
// them to screens as Bubble Tea messages.
package query

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/nhle/mailterm/internal/logging"
)

// Key identifies a cached read, e.g. {"draft", "12"}.
type Key []string

func (k Key) String() string {
	return strings.Join(k, "/")
}

// Equal reports whether k and o are the same key.
func (k Key) Equal(o Key) bool {
	if len(k) != len(o) {
		return false
	}
	for i := range k {
		if k[i] != o[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether p is a leading part of k.
func (k Key) HasPrefix(p Key) bool {
	return len(p) <= len(k) && k[:len(p)].Equal(p)
}

// Status is the lifecycle state of a cache entry.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Entry is the cached state of one key. Data keeps the last successful
// result while a refetch is pending or after it failed.
type Entry struct {
	Data      any
	Err       error
	Status    Status
	UpdatedAt time.Time
	Stale     bool

	// epoch advances on every invalidation. Fetches started in an older
	// epoch neither share a flight with newer ones nor settle the entry.
	epoch uint64
}

// Descriptor describes a read: where it is cached, how it is fetched and
// whether it may run at all.
type Descriptor struct {
	Key     Key
	Fetch   func(ctx context.Context) (any, error)
	Enabled bool
}

// ResultMsg delivers the outcome of a Fetch. Discarded is set when the
// cache was cleared or the key invalidated while the fetch was in flight.
type ResultMsg struct {
	Key       Key
	Data      any
	Err       error
	Discarded bool
}

// Cache holds entries per key. It is safe for use from command goroutines.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Entry
	keys    map[string]Key
	gen     uint64
	flight  singleflight.Group
	now     func() time.Time
	log     zerolog.Logger
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]*Entry),
		keys:    make(map[string]Key),
		now:     time.Now,
		log:     logging.With("query"),
	}
}

// Fetch returns a command that runs desc and caches its result. Disabled
// descriptors yield nil. Concurrent fetches of one key share a single
// request. Failures are not retried.
func (c *Cache) Fetch(desc Descriptor) tea.Cmd {
	if !desc.Enabled || desc.Fetch == nil {
		return nil
	}

	key := append(Key(nil), desc.Key...)
	id := key.String()

	c.mu.Lock()
	e := c.entry(key)
	e.Status = StatusPending
	gen, epoch := c.gen, e.epoch
	c.mu.Unlock()

	return func() tea.Msg {
		flightKey := strconv.FormatUint(gen, 10) + ":" + strconv.FormatUint(epoch, 10) + ":" + id
		v, err, shared := c.flight.Do(flightKey, func() (any, error) {
			return desc.Fetch(context.Background())
		})

		accepted := c.store(key, gen, epoch, v, err)
		level := zerolog.DebugLevel
		if err != nil {
			level = zerolog.WarnLevel
		}
		c.log.WithLevel(level).Err(err).Str("key", id).
			Bool("shared", shared).Bool("accepted", accepted).Msg("query settled")

		return ResultMsg{Key: key, Data: v, Err: err, Discarded: !accepted}
	}
}

func (c *Cache) entry(key Key) *Entry {
	id := key.String()
	e, ok := c.entries[id]
	if !ok {
		e = &Entry{}
		c.entries[id] = e
		c.keys[id] = key
	}
	return e
}

func (c *Cache) store(key Key, gen, epoch uint64, v any, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return false
	}

	e := c.entry(key)
	if epoch != e.epoch {
		return false
	}
	e.UpdatedAt = c.now()
	e.Stale = false
	if err != nil {
		e.Status = StatusError
		e.Err = err
		return true
	}
	e.Status = StatusSuccess
	e.Err = nil
	e.Data = v
	return true
}

// Peek returns a copy of the entry for key.
func (c *Cache) Peek(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Invalidate marks entries stale and returns their keys. With exact only
// an entry equal to key matches; otherwise every entry key prefixes.
// Fetches of a matched key already in flight settle as discarded.
func (c *Cache) Invalidate(key Key, exact bool) []Key {
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched []Key
	for id, k := range c.keys {
		if exact && !k.Equal(key) || !exact && !k.HasPrefix(key) {
			continue
		}
		e := c.entries[id]
		e.Stale = true
		e.epoch++
		matched = append(matched, k)
	}
	return matched
}

// Clear drops every entry. Fetches still in flight settle as discarded.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Entry)
	c.keys = make(map[string]Key)
	c.gen++
}

// Get returns the cached data for key typed as T.
func Get[T any](c *Cache, key Key) (T, bool) {
	var zero T
	e, ok := c.Peek(key)
	if !ok || e.Data == nil {
		return zero, false
	}
	v, ok := e.Data.(T)
	return v, ok
}
