// Package fetch is the single outbound HTTP path for every crawler.
// It enforces a hard per-request timeout, a fixed User-Agent, and a
// global request rate, and converts failures into typed errors.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrorKind classifies fetch failures.
type ErrorKind int

const (
	// KindTimeout covers deadline-exceeded transport failures.
	KindTimeout ErrorKind = iota
	// KindNetwork covers all other transport failures.
	KindNetwork
	// KindHTTPStatus covers non-2xx responses.
	KindHTTPStatus
)

// Error is the typed failure every fetch returns; it never escapes as a panic.
type Error struct {
	Kind   ErrorKind
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("fetch %s: timeout: %v", e.URL, e.Err)
	case KindHTTPStatus:
		return fmt.Sprintf("fetch %s: http status %d", e.URL, e.Status)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Options configures one request; the zero value is a plain GET.
type Options struct {
	Method  string
	Headers map[string]string
	Body    io.Reader
}

// Client performs bounded-timeout, rate-limited HTTP fetches.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// New builds a client. requestsPerSecond <= 0 disables rate limiting.
func New(timeout time.Duration, requestsPerSecond float64, userAgent string) *Client {
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		limiter:   limiter,
		userAgent: userAgent,
	}
}

// Text fetches a URL and returns the response body as a string.
func (c *Client) Text(ctx context.Context, url string, opts Options) (string, error) {
	body, err := c.do(ctx, url, opts)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// JSON fetches a URL and decodes the response body into v.
func (c *Client) JSON(ctx context.Context, url string, opts Options, v any) error {
	body, err := c.do(ctx, url, opts)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &Error{Kind: KindNetwork, URL: url, Err: fmt.Errorf("decode json: %w", err)}
	}
	return nil
}

func (c *Client) do(ctx context.Context, url string, opts Options) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: KindTimeout, URL: url, Err: err}
		}
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, url, opts.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: classify(err), URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindHTTPStatus, URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: classify(err), URL: url, Err: err}
	}
	return body, nil
}

func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if strings.Contains(err.Error(), "Client.Timeout") {
		return KindTimeout
	}
	return KindNetwork
}
