// Package transport is the shared HTTP-call helper used by the messaging
// provider client and the translation back-ends. It applies authentication,
// sets JSON headers, records upstream call metrics and converts non-2xx
// responses into *errors.APIError values that keep the raw body.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agentstation/smsrelay/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for outbound requests.
var DefaultHTTPTimeout = 30 * time.Second

// Observer is notified after every upstream round trip.
// status is 0 when the request failed before a response arrived.
type Observer func(provider, method string, status int, elapsed time.Duration)

// Client provides HTTP client functionality with authentication.
type Client struct {
	provider string
	apiKey   string
	http     *http.Client
	auth     Authenticator
	observe  Observer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the request timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithObserver registers a callback for upstream call metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observe = o }
}

// New creates a transport client for the named provider.
// A nil authenticator or an empty key sends requests unauthenticated.
func New(provider, apiKey string, auth Authenticator, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		provider: provider,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: DefaultHTTPTimeout},
		auth:     auth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the provider name used in errors and metrics.
func (c *Client) Provider() string {
	return c.provider
}

// HasCredentials reports whether an API key is configured.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Do performs an HTTP request with authentication and default headers applied.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	if c.apiKey != "" {
		c.auth.Apply(req, c.apiKey)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if req.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if c.observe != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		c.observe(c.provider, req.Method, status, time.Since(start))
	}
	if err != nil {
		return nil, &errors.APIError{
			Provider: c.provider,
			Message:  "request failed",
			Endpoint: req.URL.String(),
			Err:      err,
		}
	}
	return resp, nil
}

// Raw is an upstream response captured without interpretation.
type Raw struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Send performs a request and returns the response verbatim, including
// non-2xx statuses. Only transport failures produce an error.
func (c *Client) Send(ctx context.Context, method, endpoint string, body any) (*Raw, error) {
	req, err := newJSONRequest(method, endpoint, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	data, err := readBody(resp)
	if err != nil {
		return nil, c.wrap(endpoint, resp.StatusCode, err)
	}
	return &Raw{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// GetJSON issues a GET with the given query and decodes a 2xx JSON body into target.
func (c *Client) GetJSON(ctx context.Context, endpoint string, query url.Values, target any) error {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.WrapResource("create", "request", "GET "+endpoint, err)
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return DecodeResponse(c.provider, resp, target)
}

// PostJSON posts body as JSON and decodes a 2xx JSON body into target.
func (c *Client) PostJSON(ctx context.Context, endpoint string, body, target any) error {
	req, err := newJSONRequest(http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return DecodeResponse(c.provider, resp, target)
}

// PostForm posts form-encoded values and decodes a 2xx JSON body into target.
func (c *Client) PostForm(ctx context.Context, endpoint string, form url.Values, target any) error {
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.WrapResource("create", "request", "POST "+endpoint, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return DecodeResponse(c.provider, resp, target)
}

func (c *Client) wrap(endpoint string, status int, err error) error {
	return &errors.APIError{
		Provider:   c.provider,
		StatusCode: status,
		Message:    err.Error(),
		Endpoint:   endpoint,
		Err:        err,
	}
}

func newJSONRequest(method, endpoint string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.WrapResource("encode", "request body", method+" "+endpoint, err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, endpoint, r)
	if err != nil {
		return nil, errors.WrapResource("create", "request", method+" "+endpoint, err)
	}
	return req, nil
}
