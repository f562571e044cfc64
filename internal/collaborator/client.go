// Package collaborator is the HTTP client for the external processing server
// that runs the geometry scripts and talks to AutoCAD/Civil 3D.
//
// The server is opaque: this package only knows each call's path, method and
// JSON payload shape. Every call takes a context, goes through a [Limiter],
// and is logged. Failures of the transport or of response decoding come back
// as [*CallError]; a server that answers with {"message", "error"} comes back
// as a [Message], even when the HTTP status is not 2xx. Nothing is retried.
package collaborator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JonMunkholm/civilcsv/internal/logging"
)

// ErrMissingInput is returned before any request is sent when a required
// argument is empty.
var ErrMissingInput = errors.New("missing required input")

// DefaultTimeout bounds a single call when no HTTP client is supplied.
const DefaultTimeout = 2 * time.Minute

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 32 << 20

// CallError reports a failed call. Its text always includes the underlying
// error so it can be shown to the user as is.
type CallError struct {
	Op  string
	Err error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("collaborator call %s failed: %v", e.Op, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Client calls the processing server.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLimiter replaces the default call limiter.
func WithLimiter(l *Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// New creates a client for the server at baseURL, e.g. "http://localhost:5000".
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("collaborator base URL: %w", ErrMissingInput)
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("collaborator base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("collaborator base URL %q: scheme must be http or https", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = strings.TrimSuffix(u.RawPath, "/")

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout},
		limiter: NewLimiter(DefaultMaxConcurrentCalls, DefaultMaxWaitTime),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Limiter exposes the call limiter for status reporting and shutdown.
func (c *Client) Limiter() *Limiter {
	return c.limiter
}

// request describes one call. path is already escaped.
type request struct {
	op          string
	method      string
	path        string
	body        io.Reader
	contentType string
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(op, path string, payload any) (request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return request{}, &CallError{Op: op, Err: fmt.Errorf("encode payload: %w", err)}
	}
	return request{
		op:          op,
		method:      http.MethodPost,
		path:        path,
		body:        bytes.NewReader(data),
		contentType: "application/json",
	}, nil
}

// response is a fully read server reply.
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// do sends req and reads the whole reply.
func (c *Client) do(ctx context.Context, req request) (response, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return response{}, &CallError{Op: req.op, Err: err}
	}
	defer c.limiter.Release()

	logger := logging.FromContext(ctx).With("op", req.op, "path", req.path)
	start := time.Now()

	target := *c.baseURL
	target.RawPath = c.baseURL.EscapedPath() + req.path
	path, err := url.PathUnescape(target.RawPath)
	if err != nil {
		return response{}, &CallError{Op: req.op, Err: err}
	}
	target.Path = path

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target.String(), req.body)
	if err != nil {
		return response{}, &CallError{Op: req.op, Err: err}
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.Warn("collaborator call failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return response{}, &CallError{Op: req.op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return response{}, &CallError{Op: req.op, Err: fmt.Errorf("read response: %w", err)}
	}

	logger.Info("collaborator call",
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return response{status: resp.StatusCode, body: body}, nil
}

// callMessage performs req and decodes a {message, error} reply.
func (c *Client) callMessage(ctx context.Context, req request) (Message, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return Message{}, err
	}

	var msg Message
	if err := json.Unmarshal(resp.body, &msg); err != nil {
		if !resp.ok() {
			return Message{}, &CallError{Op: req.op, Err: statusError(resp)}
		}
		return Message{}, &CallError{Op: req.op, Err: fmt.Errorf("invalid server response: %w", err)}
	}
	if !resp.ok() {
		msg.Error = true
		if msg.Text == "" {
			msg.Text = http.StatusText(resp.status)
		}
	}
	return msg, nil
}

// callJSON performs req and decodes a successful reply into out. A non-2xx
// reply is an error carrying the server's message when it sent one.
func (c *Client) callJSON(ctx context.Context, req request, out any) error {
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return &CallError{Op: req.op, Err: statusError(resp)}
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return &CallError{Op: req.op, Err: fmt.Errorf("invalid server response: %w", err)}
	}
	return nil
}

// statusError describes a non-2xx reply, preferring the server's own text.
func statusError(resp response) error {
	var msg Message
	if err := json.Unmarshal(resp.body, &msg); err == nil && msg.Text != "" {
		return fmt.Errorf("server returned %d: %s", resp.status, msg.Text)
	}
	snippet := strings.TrimSpace(string(resp.body))
	if len(snippet) > 200 {
		snippet = snippet[:200] + "..."
	}
	if snippet == "" {
		return fmt.Errorf("server returned %d %s", resp.status, http.StatusText(resp.status))
	}
	return fmt.Errorf("server returned %d: %s", resp.status, snippet)
}

func requireValues(op string, values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s: %w", op, ErrMissingInput)
		}
	}
	return nil
}
