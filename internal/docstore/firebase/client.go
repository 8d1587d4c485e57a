// Package firebase implements docstore.Store over the Firebase Realtime
// Database REST API.
package firebase

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

	"courier-dispatch/internal/docstore"
)

const (
	headerETag    = "ETag"
	headerReqETag = "X-Firebase-ETag"
	headerIfMatch = "if-match"

	defaultTakeAttempts   = 3
	defaultRequestTimeout = 15 * time.Second
)

// ErrTakeContended is returned when a conditional delete keeps losing to
// concurrent writers.
var ErrTakeContended = errors.New("firebase: take contended")

// Config configures a Client.
type Config struct {
	// URL is the database root, e.g. https://<db>.firebaseio.com.
	URL string
	// AuthToken is sent as the auth query parameter when non-empty.
	AuthToken    string
	HTTPClient     *http.Client
	TakeAttempts   int
	// RequestTimeout bounds each non-streaming request. Streams are not
	// affected.
	RequestTimeout time.Duration
}

// Client talks to one Realtime Database instance.
type Client struct {
	base         *url.URL
	auth         string
	http         *http.Client
	takeAttempts int
	timeout      time.Duration
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("firebase: database url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("firebase: parse url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("firebase: unsupported url scheme %q", base.Scheme)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	attempts := cfg.TakeAttempts
	if attempts <= 0 {
		attempts = defaultTakeAttempts
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{base: base, auth: cfg.AuthToken, http: hc, takeAttempts: attempts, timeout: timeout}, nil
}

func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	body, _, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return nullable(body), nil
}

func (c *Client) Set(ctx context.Context, path string, doc json.RawMessage) error {
	if docstore.IsNull(doc) {
		return c.Delete(ctx, path)
	}
	_, _, err := c.do(ctx, http.MethodPut, path, doc, nil)
	return err
}

func (c *Client) Update(ctx context.Context, path string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("firebase: encode patch %q: %w", path, err)
	}
	_, _, err = c.do(ctx, http.MethodPatch, path, b, nil)
	return err
}

func (c *Client) Delete(ctx context.Context, path string) error {
	_, _, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// Take reads the document together with its ETag and deletes it only if
// it is unchanged. A precondition failure re-reads and tries again.
func (c *Client) Take(ctx context.Context, path string) (json.RawMessage, error) {
	for attempt := 0; attempt < c.takeAttempts; attempt++ {
		body, hdr, err := c.do(ctx, http.MethodGet, path, nil, http.Header{headerReqETag: {"true"}})
		if err != nil {
			return nil, err
		}
		doc := nullable(body)
		if doc == nil {
			return nil, nil
		}
		etag := hdr.Get(headerETag)
		_, _, err = c.do(ctx, http.MethodDelete, path, nil, http.Header{headerIfMatch: {etag}})
		if err == nil {
			return doc, nil
		}
		var se *StatusError
		if !errors.As(err, &se) || se.Code != http.StatusPreconditionFailed {
			return nil, err
		}
	}
	return nil, docstore.Transient(fmt.Errorf("%w: %s", ErrTakeContended, path))
}

// StatusError is a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("firebase: %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, hdr http.Header) ([]byte, http.Header, error) {
	u, err := c.url(path)
	if err != nil {
		return nil, nil, err
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, method, u, rd)
	if err != nil {
		return nil, nil, fmt.Errorf("firebase: build request: %w", err)
	}
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, docstore.Transient(fmt.Errorf("firebase: %s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, docstore.Transient(fmt.Errorf("firebase: read %s %s: %w", method, path, err))
	}
	if resp.StatusCode/100 != 2 {
		se := &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(out))}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, nil, docstore.Transient(se)
		}
		return nil, nil, se
	}
	return out, resp.Header, nil
}

func (c *Client) url(path string) (string, error) {
	parts, err := docstore.Split(path)
	if err != nil {
		return "", err
	}
	u := *c.base
	u.RawPath = ""
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.Join(parts, "/") + ".json"
	if c.auth != "" {
		q := u.Query()
		q.Set("auth", c.auth)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func nullable(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if docstore.IsNull(trimmed) {
		return nil
	}
	return json.RawMessage(trimmed)
}

var _ docstore.Store = (*Client)(nil)
