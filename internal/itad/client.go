package itad

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.isthereanydeal.com"

const (
	backoffBase   = 500 * time.Millisecond
	backoffCap    = 4 * time.Second
	backoffJitter = 250 * time.Millisecond
	defaultRetry  = 3
)

// Client talks to the IsThereAnyDeal API. One pooled http.Client is shared
// for the client's lifetime; Close releases idle connections.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retries int
	log     *slog.Logger

	// sleep is swapped out in tests to verify backoff timing.
	sleep func(time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host, used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithRateLimit bounds outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithHTTPClient replaces the underlying HTTP client, typically to set a
// custom timeout.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRetries overrides how many retries follow a transient failure.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithSleeper replaces the backoff sleep function.
func WithSleeper(fn func(time.Duration)) Option {
	return func(c *Client) { c.sleep = fn }
}

// NewClient builds an ITAD API client. The API key is required; it is sent
// as a query parameter on every request.
func NewClient(apiKey string, log *slog.Logger, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ITAD API key is required")
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(4), 2),
		retries: defaultRetry,
		log:     log,
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases pooled connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// getJSON issues a GET against path with the API key attached, retrying
// transient failures with capped exponential backoff plus jitter. Client
// errors and malformed responses surface immediately.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	delay := backoffBase
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		raw, err := c.doOnce(ctx, reqURL)
		if err == nil {
			return raw, nil
		}

		var transient *TransientError
		if !errors.As(err, &transient) {
			return nil, err
		}
		lastErr = err
		if attempt == c.retries {
			break
		}

		c.log.Warn("transient API failure, backing off",
			"attempt", attempt+1, "delay", delay, "error", err)
		c.sleep(delay + time.Duration(rand.Int63n(int64(backoffJitter))))
		delay = min(delay*2, backoffCap)
	}
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, reqURL string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransientError{Message: "connection failed", cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, &TransientError{Status: resp.StatusCode, Message: transientMessage(resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &ClientError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, &TransientError{Message: "reading response body", cause: err}
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, "application/json") {
		if len(bytes.TrimSpace(body)) == 0 {
			return nil, &MalformedResponseError{Reason: "empty response body"}
		}
		return nil, &MalformedResponseError{Reason: "non-JSON content type " + ct}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, &MalformedResponseError{Reason: "null or empty JSON response"}
	}
	if !json.Valid(trimmed) {
		return nil, &MalformedResponseError{Reason: "invalid JSON"}
	}
	return json.RawMessage(trimmed), nil
}

// decodeBody handles the gzip/brotli encodings we advertise. Setting
// Accept-Encoding by hand disables the transport's automatic gzip handling.
func decodeBody(resp *http.Response) ([]byte, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	case "br":
		return io.ReadAll(brotli.NewReader(resp.Body))
	default:
		return io.ReadAll(resp.Body)
	}
}
