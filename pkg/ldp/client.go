// Package ldp is the HTTP transport to a Fedora/LDP repository.
//
// The client never interprets status codes beyond success/failure: callers
// receive the Response and decide, with Response.Err converting a failed
// status into an *Error. A non-nil error from a request method always means
// the request did not complete.
package ldp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/emergent-company/ldpgraph/pkg/logger"
	"github.com/emergent-company/ldpgraph/pkg/rdf"
	"github.com/emergent-company/ldpgraph/pkg/tracing"
)

// Config holds connection settings.
type Config struct {
	BaseURL  string
	User     string
	Password string
	Timeout  time.Duration
	// RateLimit is in requests per second; zero disables limiting.
	RateLimit float64
	RateBurst int
}

// Response is a completed repository response with its body read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	method string
	url    string
}

// Success reports a 2xx status.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the media type of the body without parameters.
func (r *Response) ContentType() string {
	return rdf.MediaType(r.Header.Get("Content-Type"))
}

// Location returns the Location header.
func (r *Response) Location() string {
	return r.Header.Get("Location")
}

// Err returns nil on success and an *Error describing the status otherwise.
func (r *Response) Err() error {
	if r.Success() {
		return nil
	}
	msg := strings.TrimSpace(string(r.Body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return &Error{StatusCode: r.StatusCode, Method: r.method, URL: r.url, Message: msg}
}

// RequestOption customizes an outgoing request.
type RequestOption func(*http.Request)

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// WithAccept sets the Accept header.
func WithAccept(mediaType string) RequestOption {
	return WithHeader("Accept", mediaType)
}

// Client talks to one repository. It is safe for concurrent use.
type Client struct {
	http     *http.Client
	base     string
	user     string
	password string
	limiter  *rate.Limiter
	log      *slog.Logger
}

// NewClient creates a repository client.
func NewClient(cfg Config, log *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		base:     strings.TrimRight(cfg.BaseURL, "/"),
		user:     cfg.User,
		password: cfg.Password,
		limiter:  limiter,
		log:      log.With(logger.Scope("ldp.client")),
	}
}

// BaseURL returns the repository root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.base
}

// Get fetches url, asking for Turtle unless an option overrides Accept.
func (c *Client) Get(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	opts = append([]RequestOption{WithAccept(rdf.MediaTurtle)}, opts...)
	return c.do(ctx, http.MethodGet, url, nil, "", opts)
}

// Post sends body to url. A nil body sends an empty request.
func (c *Client) Post(ctx context.Context, url, contentType string, body []byte, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPost, url, body, contentType, opts)
}

// Put replaces the resource at url.
func (c *Client) Put(ctx context.Context, url, contentType string, body []byte, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPut, url, body, contentType, opts)
}

// Patch sends a partial update to url.
func (c *Client) Patch(ctx context.Context, url, contentType string, body []byte, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPatch, url, body, contentType, opts)
}

// Delete removes the resource at url.
func (c *Client) Delete(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodDelete, url, nil, "", opts)
}

func (c *Client) prepareRequest(ctx context.Context, method, url string, body []byte, contentType string) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, contentType string, opts []RequestOption) (resp *Response, err error) {
	ctx, span := tracing.Start(ctx, "ldp."+strings.ToLower(method),
		attribute.String("http.method", method),
		attribute.String("http.url", url),
	)
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		RequestsTotal.WithLabelValues(method, "error").Inc()
		return nil, &Error{Method: method, URL: url, Message: "rate limiter", Err: err}
	}

	req, err := c.prepareRequest(ctx, method, url, body, contentType)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(req)
	}

	start := time.Now()
	httpResp, err := c.http.Do(req)
	RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		RequestsTotal.WithLabelValues(method, "error").Inc()
		c.log.Warn("ldp request failed",
			slog.String("method", method),
			slog.String("url", url),
			logger.Error(err))
		return nil, &Error{Method: method, URL: url, Message: "request failed", Err: err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		RequestsTotal.WithLabelValues(method, "error").Inc()
		return nil, &Error{StatusCode: httpResp.StatusCode, Method: method, URL: url, Message: "failed to read response", Err: err}
	}

	RequestsTotal.WithLabelValues(method, strconv.Itoa(httpResp.StatusCode)).Inc()
	span.SetAttributes(attribute.Int("http.status_code", httpResp.StatusCode))
	c.log.Debug("ldp request",
		slog.String("method", method),
		slog.String("url", url),
		slog.Int("status", httpResp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
		method:     method,
		url:        url,
	}, nil
}
