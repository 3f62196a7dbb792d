package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(retries int) Config {
	return Config{
		Timeout:         5 * time.Second,
		MaxRetries:      retries,
		RetryWaitMin:    1 * time.Millisecond,
		RetryWaitMax:    5 * time.Millisecond,
		MaxConnsPerHost: 10,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.RetryWaitMin)
	assert.Equal(t, 2*time.Second, cfg.RetryWaitMax)
	assert.Equal(t, 16, cfg.MaxConnsPerHost)
}

func TestGet_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	client := New(fastRetryConfig(0))

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "items")
}

func TestDo_RetriesIdempotent5xx(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(fastRetryConfig(3))

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestDo_ReplaysBodyOnRetry(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"quantity":3}`, string(body))
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(fastRetryConfig(2))
	req, err := http.NewRequest(http.MethodPut, server.URL, strings.NewReader(`{"quantity":3}`))
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestDo_NeverRetriesPost(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(fastRetryConfig(3))

	resp, err := client.Post(context.Background(), server.URL, "application/json",
		strings.NewReader(`{"payment_method":"cash_on_delivery"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "order POSTs must be sent exactly once")
}

func TestDo_DoesNotRetry501(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotImplemented)
	}))
	defer server.Close()

	client := New(fastRetryConfig(3))

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestDo_DoesNotRetry4xx(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := New(fastRetryConfig(3))

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestDo_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(Config{
		Timeout:         5 * time.Second,
		MaxRetries:      10,
		RetryWaitMin:    100 * time.Millisecond,
		RetryWaitMax:    500 * time.Millisecond,
		MaxConnsPerHost: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, server.URL)
	require.Error(t, err)
}

func TestGet_InvalidURL(t *testing.T) {
	client := New(fastRetryConfig(0))

	_, err := client.Get(context.Background(), "://invalid")
	require.Error(t, err)
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.False(t, isRetryableError(context.Canceled))
	// context.DeadlineExceeded implements net.Error.
	assert.True(t, isRetryableError(context.DeadlineExceeded))
}

func TestIsIdempotent(t *testing.T) {
	assert.True(t, isIdempotent(http.MethodGet))
	assert.True(t, isIdempotent(http.MethodPut))
	assert.True(t, isIdempotent(http.MethodDelete))
	assert.False(t, isIdempotent(http.MethodPost))
	assert.False(t, isIdempotent(http.MethodPatch))
}

func TestAddJitter_Distribution(t *testing.T) {
	const base = 1 * time.Second
	const samples = 200

	var minVal, maxVal time.Duration
	var sum time.Duration

	for i := 0; i < samples; i++ {
		d := addJitter(base)
		if i == 0 || d < minVal {
			minVal = d
		}
		if i == 0 || d > maxVal {
			maxVal = d
		}
		sum += d

		assert.GreaterOrEqual(t, d, time.Duration(float64(base)*0.75))
		assert.LessOrEqual(t, d, time.Duration(float64(base)*1.25))
	}

	assert.Greater(t, maxVal-minVal, 50*time.Millisecond)

	mean := sum / time.Duration(samples)
	assert.InDelta(t, float64(base), float64(mean), float64(base)*0.1)
}

func TestAddJitter_ZeroDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), addJitter(0))
}
