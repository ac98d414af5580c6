package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"neuranest-explorer/internal/explorer/config"
	"neuranest-explorer/pkg/common"
	"neuranest-explorer/pkg/logger"
	"neuranest-explorer/pkg/metrics"
)

// ErrInvalidConfig is returned by NewClient for an unusable upstream configuration.
var ErrInvalidConfig = errors.New("invalid upstream configuration")

// APIError is a non-2xx response from the upstream API.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream: HTTP %d: %s [request_id=%s]", e.StatusCode, e.Message, e.RequestID)
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsRetryable reports whether err is a transport failure worth offering a retry for:
// network errors, 429 and 5xx responses. Context cancellation is not retryable.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsServerError() || apiErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithRetryWait sets the base back-off between retries of idempotent requests.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryWait = d
		}
	}
}

// WithLimiter shares one request limiter between clients.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// Client talks to the upstream scoring/ingestion API on behalf of one token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	limiter    *rate.Limiter
	retryMax   int
	retryWait  time.Duration
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// NewLimiter builds the request limiter for the configured requests per minute.
func NewLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 10)
}

func NewClient(cfg config.Upstream, tokens TokenProvider, log *logger.Logger, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("%w: base_url %q must be an http(s) URL", ErrInvalidConfig, cfg.BaseURL)
	}
	if tokens == nil {
		tokens = StaticToken("")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		limiter:    NewLimiter(cfg.MaxRequestPerMinute),
		retryMax:   cfg.RetryMax,
		retryWait:  300 * time.Millisecond,
		log:        log,
	}
	if c.retryMax < 0 {
		c.retryMax = 0
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithTokens returns a copy of the client that authenticates with another token provider.
func (c *Client) WithTokens(tokens TokenProvider) *Client {
	clone := *c
	clone.tokens = tokens
	return &clone
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	bodyReader  io.Reader
	contentType string
	accept      string
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.doJSON(ctx, request{method: http.MethodGet, path: path, query: query}, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}
	return c.doJSON(ctx, request{method: method, path: path, body: body, contentType: "application/json"}, out)
}

func (c *Client) doJSON(ctx context.Context, req request, out interface{}) error {
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.path, err)
	}
	return nil
}

// do sends the request and returns a 2xx response whose body the caller must close.
// Only GET requests are retried, with exponential back-off up to retryMax times.
func (c *Client) do(ctx context.Context, req request) (*http.Response, error) {
	attempts := 1
	if req.method == http.MethodGet {
		attempts += c.retryMax
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt)
			c.log.DebugContext(ctx, "Retrying upstream request",
				logger.StringField("path", req.path), logger.IntField("attempt", attempt), logger.Field("wait", wait))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.send(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil || !IsRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) send(ctx context.Context, req request) (*http.Response, error) {
	fullURL := c.baseURL + req.path
	if len(req.query) > 0 {
		fullURL += "?" + req.query.Encode()
	}
	requestID := logger.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	fields := []zap.Field{
		zap.String("method", req.method),
		zap.String("url", fullURL),
		zap.String("upstream_request_id", requestID),
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.log.ErrorContext(ctx, "Failed to wait for request limit", append(fields, zap.Error(err))...)
		return nil, err
	}

	var body io.Reader
	switch {
	case req.bodyReader != nil:
		body = req.bodyReader
	case req.body != nil:
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, fullURL, body)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to create new http request", append(fields, zap.Error(err))...)
		return nil, err
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain upstream token: %w", err)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	accept := req.accept
	if accept == "" {
		accept = "application/json"
	}
	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set(common.HeaderRequestID, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(req, "error", start)
		if ctx.Err() == nil {
			c.log.ErrorContext(ctx, "Failed to send request to upstream API", append(fields, zap.Error(err))...)
		}
		return nil, err
	}
	c.observe(req, strconv.Itoa(resp.StatusCode), start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: requestID}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var errBody struct {
			Error   string `json:"error"`
			Message string `json:"message"`
			Detail  string `json:"detail"`
		}
		if json.Unmarshal(raw, &errBody) == nil {
			apiErr.Message = firstNonEmpty(errBody.Message, errBody.Error, errBody.Detail)
		}
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.log.WarnContext(ctx, "Received non-OK response from upstream API", append(fields, zap.Int("status_code", resp.StatusCode))...)
		return nil, apiErr
	}
	return resp, nil
}

func (c *Client) observe(req request, status string, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveUpstream(req.method, req.path, status, time.Since(start))
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	wait := c.retryWait * time.Duration(1<<uint(attempt-1))
	if jitter := int64(wait / 4); jitter > 0 {
		wait += time.Duration(rand.Int63n(jitter))
	}
	return wait
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
