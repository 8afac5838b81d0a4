package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

const (
	MethodGet    = http.MethodGet
	MethodPost   = http.MethodPost
	MethodPut    = http.MethodPut
	MethodDelete = http.MethodDelete
	MethodPatch  = http.MethodPatch
)

const defaultUserAgent = "CryptoPulse/1.0"

// ErrDecode marks a 2xx response whose body could not be decoded.
var ErrDecode = errors.New("decode response body")

// ClientOption configures Client.
type ClientOption func(*Client)

// RequestOptions holds HTTP request parameters.
type RequestOptions struct {
	Method      string
	URL         string
	Headers     map[string]string
	QueryParams map[string][]string
	// FormData is sent as application/x-www-form-urlencoded and takes precedence over Body.
	FormData map[string]string
	// Body is sent as JSON unless it is a string or []byte.
	Body interface{}
}

// Client is a thin resty wrapper. Retries are left to callers so each
// integration can apply its own backoff policy.
type Client struct {
	baseURL string
	timeout time.Duration
	headers map[string]string
	client  *resty.Client
}

// NewClient creates a new HTTP client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout: 30 * time.Second,
		headers: map[string]string{},
	}

	for _, opt := range opts {
		opt(c)
	}

	rc := resty.New().
		SetTimeout(c.timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", defaultUserAgent).
		SetHeader("Accept", "application/json").
		SetHeaders(c.headers)
	if c.baseURL != "" {
		rc.SetBaseURL(strings.TrimSuffix(c.baseURL, "/"))
	}
	c.client = rc
	return c
}

// SendRequest sends an HTTP request. A non-2xx status is not an error here;
// inspect the response.
func (c *Client) SendRequest(ctx context.Context, opts *RequestOptions) (*resty.Response, error) {
	if opts == nil || opts.Method == "" {
		return nil, fmt.Errorf("build request: method is required")
	}

	req := c.client.R().SetContext(ctx)
	for k, v := range opts.Headers {
		req.SetHeader(k, v)
	}
	if len(opts.QueryParams) > 0 {
		req.SetQueryParamsFromValues(opts.QueryParams)
	}

	switch {
	case opts.FormData != nil:
		req.SetFormData(opts.FormData)
	case opts.Body != nil:
		switch b := opts.Body.(type) {
		case string, []byte:
			req.SetBody(b)
		default:
			req.SetHeader("Content-Type", "application/json")
			req.SetBody(b)
		}
	}

	resp, err := req.Execute(opts.Method, opts.URL)
	if err != nil {
		return resp, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// SendAndParse sends a request and decodes a 2xx JSON body into dest.
// An empty body leaves dest untouched. Decode failures wrap ErrDecode.
func (c *Client) SendAndParse(ctx context.Context, opts *RequestOptions, dest interface{}) error {
	resp, err := c.SendRequest(ctx, opts)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &StatusError{Status: resp.StatusCode(), Body: truncate(resp.String(), 256)}
	}
	body := resp.Body()
	if dest == nil || len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// StatusError reports a completed request with a non-2xx status.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// WithTimeout sets client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithBaseURL resolves relative request URLs against base.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithHeader sets a header on every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		if value != "" {
			c.headers[key] = value
		}
	}
}
