package httpclient

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/muhammadmasoud/amazon-clone-sub000/pkg/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testCBConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      200 * time.Millisecond,
		FailureRatio: 0.5,
		MinRequests:  3,
	}
}

func noRetryClient() *Client {
	return New(Config{Timeout: 5 * time.Second, MaxRetries: 0, MaxConnsPerHost: 10})
}

func TestDefaultCircuitBreakerConfig(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("backend")
	assert.Equal(t, "backend", cfg.Name)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, uint32(5), cfg.MinRequests)
	assert.Equal(t, 0.5, cfg.FailureRatio)
}

func TestCircuitBreaker_ClosedState_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), testCBConfig("test-closed"), testLogger())

	resp, err := cb.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_ServerErrorBecomesAppError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"database exploded"}`))
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), testCBConfig("test-5xx"), testLogger())

	_, err := cb.Get(context.Background(), server.URL)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestCircuitBreaker_TripsOnFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), testCBConfig("test-trip"), testLogger())

	for i := 0; i < 3; i++ {
		_, err := cb.Get(context.Background(), server.URL)
		require.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpenToClosedRecovery(t *testing.T) {
	var healthy atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), testCBConfig("test-recovery"), testLogger())

	for i := 0; i < 3; i++ {
		_, _ = cb.Get(context.Background(), server.URL)
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	healthy.Store(true)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, gobreaker.StateHalfOpen, cb.State())

	resp, err := cb.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Only 2 items available in stock"}`))
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), testCBConfig("test-4xx"), testLogger())

	for i := 0; i < 10; i++ {
		resp, err := cb.Get(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_CanceledContextDoesNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), testCBConfig("test-cancel"), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		_, err := cb.Get(ctx, server.URL)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestStateToFloat(t *testing.T) {
	assert.Equal(t, 0.0, stateToFloat(gobreaker.StateClosed))
	assert.Equal(t, 1.0, stateToFloat(gobreaker.StateHalfOpen))
	assert.Equal(t, 2.0, stateToFloat(gobreaker.StateOpen))
}
