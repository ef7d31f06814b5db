// Package client talks to the CRM REST backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// Request headers.
const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4 << 10

// HTTPError is a non-2xx response. It matches types.ErrNetwork, and
// types.ErrNotFound when the status is 404.
type HTTPError struct {
	Method    string
	Path      string
	Status    int
	RequestID string
	Body      string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is reports whether target is one of the sentinels the error stands for.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case types.ErrNetwork:
		return true
	case types.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// IDGenerator produces request ids.
type IDGenerator interface {
	New() string
}

type uuidGenerator struct{}

func (uuidGenerator) New() string { return uuid.NewString() }

// Option configures a Client.
type Option func(*Client)

// WithToken sends "Authorization: Token <t>" on every request.
func WithToken(t string) Option {
	return func(c *Client) { c.token = t }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithIDGenerator sets the source of X-Request-ID values.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *Client) { c.ids = g }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// Client is a CRM backend client. Safe for concurrent use.
type Client struct {
	base    *url.URL
	token   string
	http    *http.Client
	timeout time.Duration
	ids     IDGenerator
	log     *slog.Logger
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", types.ErrBackendURLInvalid, baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	c := &Client{
		base:    u,
		http:    http.DefaultClient,
		timeout: types.DefaultRequestTimeout,
		ids:     uuidGenerator{},
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// call describes one request.
type call struct {
	method string
	path   string
	query  url.Values
	body   any
}

// do sends the request and decodes a JSON response into out. When out is a
// *[]byte the raw body is stored instead. A nil out discards the body.
func (c *Client) do(ctx context.Context, r call, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := *c.base
	u.Path += r.path
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", r.method, r.path, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", r.method, r.path, err)
	}
	reqID := c.ids.New()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, reqID)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(HeaderAuthorization, "Token "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", "method", r.method, "path", r.path, "request_id", reqID, "error", err)
		return fmt.Errorf("%w: %s %s: %w", types.ErrNetwork, r.method, r.path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("request", "method", r.method, "path", r.path, "status", resp.StatusCode,
		"request_id", reqID, "elapsed", time.Since(start))

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{
			Method:    r.method,
			Path:      r.path,
			Status:    resp.StatusCode,
			RequestID: reqID,
			Body:      strings.TrimSpace(string(msg)),
		}
	}

	switch v := out.(type) {
	case nil:
		_, err = io.Copy(io.Discard, resp.Body)
	case *[]byte:
		*v, err = io.ReadAll(resp.Body)
	default:
		err = json.NewDecoder(resp.Body).Decode(out)
	}
	if err != nil {
		return fmt.Errorf("%w: reading %s %s response: %w", types.ErrNetwork, r.method, r.path, err)
	}
	return nil
}

// envelope is the {success, message, data} wrapper used by the crm endpoints.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) err() error {
	if e.Success {
		return nil
	}
	if e.Message == "" {
		e.Message = "request rejected"
	}
	return fmt.Errorf("%w: %s", types.ErrNotFound, e.Message)
}
