package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	gocache "github.com/patrickmn/go-cache"
)

// Interceptor can rewrite a request before it is sent (auth headers,
// tracing) or inspect the response after it returns.
type Interceptor interface {
	BeforeRequest(req *http.Request) error
	AfterResponse(resp *http.Response) error
}

// APIError is a non-2xx response from the backend, with the decoded error
// envelope when one was present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Options tune one Client instance.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  uint64
	GetCacheTTL time.Duration
}

// Client is the request layer used by the capture-side pipeline. Network
// errors on idempotent requests retry with exponential backoff; HTTP error
// statuses never retry. GET responses are cached briefly so polling UIs do
// not hammer the backend. Every in-flight request is tracked so a session
// teardown can cancel the lot.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	maxRetries   uint64
	getCache     *gocache.Cache
	getCacheTTL  time.Duration
	interceptors []Interceptor

	mu       sync.Mutex
	inflight map[uint64]context.CancelFunc
	nextId   uint64
}

func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.GetCacheTTL == 0 {
		opts.GetCacheTTL = 60 * time.Second
	}
	return &Client{
		baseURL:     opts.BaseURL,
		httpClient:  &http.Client{Timeout: opts.Timeout},
		maxRetries:  opts.MaxRetries,
		getCache:    gocache.New(opts.GetCacheTTL, 5*time.Minute),
		getCacheTTL: opts.GetCacheTTL,
		inflight:    make(map[uint64]context.CancelFunc),
	}
}

// Use appends an interceptor. Not safe to call concurrently with requests.
func (c *Client) Use(i Interceptor) {
	c.interceptors = append(c.interceptors, i)
}

// PostJSON sends body as JSON and decodes the response into out (out may be
// nil). POST is not retried: the backend may have applied the first attempt.
func (c *Client) PostJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, payload, "application/json", out, false)
}

// PostRaw sends an opaque binary body (audio chunks). Like PostJSON it is
// never retried at the HTTP level; the caller re-queues on failure.
func (c *Client) PostRaw(ctx context.Context, path string, payload []byte, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, payload, "application/octet-stream", out, false)
}

// GetJSON fetches path and decodes into out, serving repeats from the GET
// cache inside the TTL window.
func (c *Client) GetJSON(ctx context.Context, path string, out interface{}) error {
	if cached, ok := c.getCache.Get(path); ok {
		return json.Unmarshal(cached.([]byte), out)
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, "", &raw, true); err != nil {
		return err
	}
	c.getCache.Set(path, []byte(raw), c.getCacheTTL)
	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}

// CancelAll aborts every request currently in flight. Used on session
// teardown so stale responses never land after the session is gone.
func (c *Client) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, cancel := range c.inflight {
		cancel()
		delete(c.inflight, id)
	}
}

func (c *Client) track(ctx context.Context) (context.Context, func()) {
	reqCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.nextId++
	id := c.nextId
	c.inflight[id] = cancel
	c.mu.Unlock()

	return reqCtx, func() {
		c.mu.Lock()
		delete(c.inflight, id)
		c.mu.Unlock()
		cancel()
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, contentType string, out interface{}, retryable bool) error {
	reqCtx, done := c.track(ctx)
	defer done()

	attempt := func() error {
		err := c.doOnce(reqCtx, method, path, payload, contentType, out)
		if err == nil {
			return nil
		}
		// Only transport-level failures are worth retrying; an HTTP status
		// is a definitive answer from the backend.
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return backoff.Permanent(err)
		}
		var netErr net.Error
		if retryable && (errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF)) {
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries),
		reqCtx,
	)
	return backoff.Retry(attempt, policy)
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, contentType string, out interface{}) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	for _, i := range c.interceptors {
		if err := i.BeforeRequest(req); err != nil {
			return fmt.Errorf("request interceptor: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	for _, i := range c.interceptors {
		if err := i.AfterResponse(resp); err != nil {
			return fmt.Errorf("response interceptor: %w", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&envelope)
		if envelope.Message == "" {
			envelope.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: envelope.Message}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
