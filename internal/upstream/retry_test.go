package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testRetrier(t *testing.T, retries int) Retrier {
	return Retrier{
		Name:        "test",
		MaxRetries:  retries,
		BaseBackoff: time.Millisecond,
		Logger:      zaptest.NewLogger(t),
	}
}

func get(url string) func(ctx context.Context) (*http.Response, error) {
	return func(ctx context.Context) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		return http.DefaultClient.Do(req)
	}
}

func TestRetrier_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	resp, err := testRetrier(t, 2).Do(context.Background(), get(srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetrier_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	resp, err := testRetrier(t, 3).Do(context.Background(), get(srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetrier_ExhaustedReturnsStatusError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testRetrier(t, 1).Do(context.Background(), get(srv.URL))
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "test: max retries (2) exceeded")
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetrier_StopsOnNonTransientError(t *testing.T) {
	var calls int
	boom := errors.New("boom")

	_, err := testRetrier(t, 3).Do(context.Background(), func(ctx context.Context) (*http.Response, error) {
		calls++
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetrier_RetriesTransientError(t *testing.T) {
	var calls int
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	_, err := testRetrier(t, 2).Do(context.Background(), func(ctx context.Context) (*http.Response, error) {
		calls++
		return nil, refused
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetrier_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := testRetrier(t, 2).Do(ctx, func(ctx context.Context) (*http.Response, error) {
		called = true
		return nil, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestShouldRetryStatus(t *testing.T) {
	for status, want := range map[int]bool{
		0:   true,
		200: false,
		400: false,
		401: false,
		404: false,
		408: true,
		429: true,
		500: true,
		503: true,
	} {
		assert.Equal(t, want, shouldRetryStatus(status), "status %d", status)
	}
}

func TestParseRetryAfter(t *testing.T) {
	resp := func(v string) *http.Response {
		h := http.Header{}
		if v != "" {
			h.Set("Retry-After", v)
		}
		return &http.Response{Header: h}
	}

	assert.Equal(t, time.Duration(0), parseRetryAfter(nil))
	assert.Equal(t, time.Duration(0), parseRetryAfter(resp("")))
	assert.Equal(t, 3*time.Second, parseRetryAfter(resp("3")))
	assert.Equal(t, time.Duration(0), parseRetryAfter(resp("-4")))
	assert.Equal(t, 5*time.Minute, parseRetryAfter(resp("86400")))
	assert.Equal(t, time.Duration(0), parseRetryAfter(resp("soon")))

	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	assert.Equal(t, 5*time.Minute, parseRetryAfter(resp(future)))
}

func TestComputeBackoff(t *testing.T) {
	for attempt := 0; attempt < 20; attempt++ {
		d := computeBackoff(100*time.Millisecond, attempt)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, maxBackoff)
	}
	assert.Less(t, computeBackoff(0, 0), defaultBaseBackoff)
}

func TestIsTransientNetError(t *testing.T) {
	assert.False(t, isTransientNetError(nil))
	assert.False(t, isTransientNetError(errors.New("bad request")))
	assert.True(t, isTransientNetError(errors.New("read: connection reset by peer")))
	assert.True(t, isTransientNetError(&net.DNSError{IsTemporary: true}))
	assert.False(t, isTransientNetError(&net.DNSError{IsNotFound: true}))
}
