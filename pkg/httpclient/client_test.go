package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetJSONServedFromCacheInsideTTL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"value":"ok"}`))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, GetCacheTTL: time.Minute})

	var out struct {
		Value string `json:"value"`
	}
	assert.NoError(t, c.GetJSON(context.Background(), "/status", &out))
	assert.NoError(t, c.GetJSON(context.Background(), "/status", &out))

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, "ok", out.Value)
}

// HTTP error statuses are definitive answers, never retried.
func TestHTTPErrorsAreNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"errore interno"}`))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, MaxRetries: 3})

	err := c.GetJSON(context.Background(), "/fail", nil)

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "errore interno", apiErr.Message)
	assert.Equal(t, int32(1), hits.Load())
}

// Transport-level failures on idempotent requests retry with backoff.
func TestNetworkErrorsRetryOnGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately unreachable

	c := New(Options{BaseURL: srv.URL, MaxRetries: 2, Timeout: time.Second})

	start := time.Now()
	err := c.GetJSON(context.Background(), "/unreachable", nil)

	assert.Error(t, err)
	// At least one backoff sleep happened between attempts.
	assert.Greater(t, time.Since(start), 100*time.Millisecond)
}

func TestPostIsNeverRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(Options{BaseURL: srv.URL, MaxRetries: 5, Timeout: time.Second})

	start := time.Now()
	err := c.PostJSON(context.Background(), "/append", map[string]string{"a": "b"}, nil)

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestInterceptorSetsHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	c.Use(&BearerInterceptor{Token: "segreto"})

	assert.NoError(t, c.PostJSON(context.Background(), "/x", map[string]string{}, nil))
	assert.Equal(t, "Bearer segreto", gotAuth)
}

func TestCancelAllAbortsInFlightRequests(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	defer close(release)

	c := New(Options{BaseURL: srv.URL, Timeout: 30 * time.Second})

	done := make(chan error, 1)
	go func() {
		done <- c.PostJSON(context.Background(), "/slow", map[string]string{}, nil)
	}()

	time.Sleep(50 * time.Millisecond)
	c.CancelAll()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("request was not cancelled")
	}
}
