package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// Request is a call received by a FakeAPI.
type Request struct {
	Method        string
	Path          string
	Authorization string
	HasAuth       bool
	Header        http.Header
	Body          []byte
}

// Decode unmarshals the recorded request body into v.
func (r Request) Decode(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decoding request body %q: %v", r.Body, err)
	}
}

// FakeAPI is an httptest server standing in for the mail REST API.
// Routes are keyed by "METHOD /path"; unknown routes answer 404.
type FakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []Request
}

// NewFakeAPI starts a fake API server that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{routes: make(map[string]http.HandlerFunc)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)

	return f
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	auth, hasAuth := r.Header["Authorization"]

	rec := Request{
		Method:  r.Method,
		Path:    r.URL.Path,
		HasAuth: hasAuth,
		Header:  r.Header.Clone(),
		Body:    body,
	}
	if hasAuth && len(auth) > 0 {
		rec.Authorization = auth[0]
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	h, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		JSON(http.StatusNotFound, map[string]string{"mensagem": "rota não encontrada"})(w, r)
		return
	}
	h(w, r)
}

// Handle registers h for method and path, replacing any earlier handler.
func (f *FakeAPI) Handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = h
}

// Requests returns a copy of every request received so far.
func (f *FakeAPI) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// Count returns how many requests matched method and path.
func (f *FakeAPI) Count(method, path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent request for method and path.
func (f *FakeAPI) Last(t *testing.T, method, path string) Request {
	t.Helper()
	reqs := f.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == path {
			return reqs[i]
		}
	}
	t.Fatalf("no %s %s request recorded", method, path)
	return Request{}
}

// JSON returns a handler answering status with v encoded as JSON.
func JSON(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if v != nil {
			_ = json.NewEncoder(w).Encode(v)
		}
	}
}
