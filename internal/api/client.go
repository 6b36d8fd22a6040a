package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nhle/mailterm/internal/logging"
	"github.com/nhle/mailterm/internal/model"
)

// DefaultTimeout bounds a request when the config leaves it unset.
const DefaultTimeout = time.Second

// Credential holds the bearer token attached to every request. It is the
// only mutable part of the client; the session store is its sole writer.
type Credential struct {
	mu    sync.RWMutex
	token string
}

// Set installs token as the bearer credential.
func (c *Credential) Set(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Clear removes the credential. Requests then carry no Authorization
// header at all.
func (c *Credential) Clear() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// Header returns the Authorization header value and whether one is set.
func (c *Credential) Header() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return "", false
	}
	return "Bearer " + c.token, true
}

// Client is the single shared transport for the mail REST API. It has a
// fixed base URL, a fixed timeout and fixed JSON headers. Nothing is
// retried: every failure is reported to the caller as an *Error.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cred       *Credential
	log        zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Timeout is
// overwritten with the configured one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCredential shares an existing credential holder with the client.
func WithCredential(cred *Credential) Option {
	return func(c *Client) {
		c.cred = cred
	}
}

// New creates the API client described by cfg.
func New(cfg model.APIConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{},
		cred:       &Credential{},
		log:        logging.With("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient.Timeout = timeout

	return c
}

// Credential returns the credential holder used for every request.
func (c *Client) Credential() *Credential {
	return c.cred
}

// BaseURL returns the API root address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Put performs an HTTP PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// Delete performs an HTTP DELETE request.
func (c *Client) Delete(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodDelete, path, nil, result)
}

// do builds the request, attaches the shared headers, executes it once and
// maps the outcome onto an *Error.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body any,
	result any,
) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if auth, ok := c.cred.Header(); ok {
		req.Header.Set("Authorization", auth)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := KindNetwork
		if isTimeout(err) {
			kind = KindTimeout
		}
		c.log.Warn().
			Err(err).
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Dur("elapsed", time.Since(start)).
			Msg("request failed")
		return &Error{Kind: kind, Method: method, Path: path, Err: err}
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request completed")

	if readErr != nil {
		kind := KindNetwork
		if isTimeout(readErr) {
			kind = KindTimeout
		}
		return &Error{Kind: kind, Method: method, Path: path, Status: resp.StatusCode, Err: readErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{
			Kind:   KindStatus,
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
		}
		// A body that is not the expected JSON simply leaves Body empty.
		_ = json.Unmarshal(respBody, &apiErr.Body)
		return apiErr
	}

	if result == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return &Error{
			Kind:   KindDecode,
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unmarshaling response: %w", err),
		}
	}

	return nil
}

// isTimeout reports whether err came from a deadline rather than a
// broken connection.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
