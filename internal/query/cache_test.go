package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func constant(key Key, v any) Descriptor {
	return Descriptor{
		Key:     key,
		Enabled: true,
		Fetch:   func(context.Context) (any, error) { return v, nil },
	}
}

func run(t *testing.T, c *Cache, d Descriptor) ResultMsg {
	t.Helper()
	cmd := c.Fetch(d)
	if cmd == nil {
		t.Fatal("Fetch() returned nil command")
	}
	msg, ok := cmd().(ResultMsg)
	if !ok {
		t.Fatalf("command produced %T, want ResultMsg", msg)
	}
	return msg
}

func TestFetchDisabled(t *testing.T) {
	c := New()
	d := constant(Key{"draft", ""}, 1)
	d.Enabled = false
	if cmd := c.Fetch(d); cmd != nil {
		t.Error("disabled descriptor should not produce a command")
	}
	if _, ok := c.Peek(d.Key); ok {
		t.Error("disabled descriptor created an entry")
	}
}

func TestFetchLifecycle(t *testing.T) {
	c := New()
	key := Key{"inbox"}

	cmd := c.Fetch(constant(key, "v1"))
	if e, _ := c.Peek(key); e.Status != StatusPending {
		t.Errorf("Status before settle = %v, want pending", e.Status)
	}

	msg := cmd().(ResultMsg)
	if msg.Data != "v1" || msg.Err != nil || msg.Discarded {
		t.Errorf("msg = %+v", msg)
	}
	if got, ok := Get[string](c, key); !ok || got != "v1" {
		t.Errorf("Get() = %q, %v", got, ok)
	}
	if e, _ := c.Peek(key); e.Status != StatusSuccess || e.UpdatedAt.IsZero() {
		t.Errorf("entry = %+v", e)
	}
}

func TestFetchErrorKeepsLastData(t *testing.T) {
	c := New()
	key := Key{"userProfile"}
	run(t, c, constant(key, "ok"))

	boom := errors.New("boom")
	msg := run(t, c, Descriptor{
		Key:     key,
		Enabled: true,
		Fetch:   func(context.Context) (any, error) { return nil, boom },
	})
	if !errors.Is(msg.Err, boom) {
		t.Errorf("msg.Err = %v", msg.Err)
	}
	e, _ := c.Peek(key)
	if e.Status != StatusError || e.Data != "ok" {
		t.Errorf("entry = %+v, want error status with previous data", e)
	}
}

func TestFetchDeduplicates(t *testing.T) {
	c := New()
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	d := Descriptor{
		Key:     Key{"drafts"},
		Enabled: true,
		Fetch: func(context.Context) (any, error) {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
			return "shared", nil
		},
	}

	first, second := c.Fetch(d), c.Fetch(d)
	var wg sync.WaitGroup
	results := make([]ResultMsg, 2)
	wg.Add(2)
	go func() { defer wg.Done(); results[0] = first().(ResultMsg) }()
	<-started
	go func() { defer wg.Done(); results[1] = second().(ResultMsg) }()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("fetch ran %d times, want 1", n)
	}
	for i, r := range results {
		if r.Data != "shared" {
			t.Errorf("result %d = %+v", i, r)
		}
	}
}

func TestInvalidate(t *testing.T) {
	c := New()
	for _, k := range []Key{{"mails"}, {"mails", "1"}, {"mails", "2"}, {"inbox"}} {
		run(t, c, constant(k, k.String()))
	}

	if got := c.Invalidate(Key{"mails"}, true); len(got) != 1 || !got[0].Equal(Key{"mails"}) {
		t.Errorf("exact Invalidate() = %v", got)
	}
	if e, _ := c.Peek(Key{"mails", "1"}); e.Stale {
		t.Error("exact invalidation reached a longer key")
	}

	if got := c.Invalidate(Key{"mails"}, false); len(got) != 3 {
		t.Errorf("prefix Invalidate() = %v, want 3 keys", got)
	}
	if e, _ := c.Peek(Key{"inbox"}); e.Stale {
		t.Error("prefix invalidation reached an unrelated key")
	}
	if got := c.Invalidate(Key{"nothing"}, false); len(got) != 0 {
		t.Errorf("Invalidate(unknown) = %v", got)
	}

	run(t, c, constant(Key{"mails", "1"}, "fresh"))
	if e, _ := c.Peek(Key{"mails", "1"}); e.Stale {
		t.Error("refetch did not clear the stale flag")
	}
}

func TestRefetchAfterInvalidateDoesNotJoinOlderFetch(t *testing.T) {
	c := New()
	key := Key{"draft", "1"}
	release := make(chan struct{})
	old := c.Fetch(Descriptor{
		Key:     key,
		Enabled: true,
		Fetch: func(context.Context) (any, error) {
			<-release
			return "old", nil
		},
	})

	done := make(chan ResultMsg)
	go func() { done <- old().(ResultMsg) }()
	time.Sleep(20 * time.Millisecond)

	if got := c.Invalidate(key, true); len(got) != 1 {
		t.Fatalf("Invalidate() = %v", got)
	}
	fresh := run(t, c, constant(key, "new"))
	if fresh.Data != "new" || fresh.Discarded {
		t.Errorf("refetch = %+v, want the new data", fresh)
	}

	close(release)
	if msg := <-done; !msg.Discarded {
		t.Error("result from before the invalidation was accepted")
	}
	e, _ := c.Peek(key)
	if e.Data != "new" || e.Stale {
		t.Errorf("entry = %+v, want fresh new data", e)
	}
}

func TestClearDiscardsInFlight(t *testing.T) {
	c := New()
	release := make(chan struct{})
	cmd := c.Fetch(Descriptor{
		Key:     Key{"userProfile"},
		Enabled: true,
		Fetch: func(context.Context) (any, error) {
			<-release
			return "old identity", nil
		},
	})

	done := make(chan ResultMsg)
	go func() { done <- cmd().(ResultMsg) }()
	c.Clear()
	close(release)

	msg := <-done
	if !msg.Discarded {
		t.Error("result from before Clear was accepted")
	}
	if _, ok := c.Peek(Key{"userProfile"}); ok {
		t.Error("cleared cache still holds the entry")
	}
}

func TestKey(t *testing.T) {
	k := Key{"draft", "7"}
	if k.String() != "draft/7" {
		t.Errorf("String() = %q", k.String())
	}
	if !k.HasPrefix(Key{"draft"}) || k.HasPrefix(Key{"drafts"}) || (Key{"draft"}).HasPrefix(k) {
		t.Error("HasPrefix() mismatch")
	}
}
