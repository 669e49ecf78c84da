package httputil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry(t *testing.T) {
	errTransient := errors.New("transient")
	errFatal := errors.New("fatal")

	tests := []struct {
		name      string
		failures  int
		failWith  error
		attempts  int
		wantCalls int
		wantErr   error
	}{
		{"succeeds first time", 0, nil, 3, 1, nil},
		{"succeeds after retries", 2, &RetryableError{Err: errTransient}, 3, 3, nil},
		{"exhausts attempts", 5, &RetryableError{Err: errTransient}, 3, 3, errTransient},
		{"non-retryable stops", 5, errFatal, 3, 1, errFatal},
		{"zero attempts runs once", 5, &RetryableError{Err: errTransient}, 0, 1, errTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.failWith
				}
				return nil
			})
			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRetryNotifyDoublesDelay(t *testing.T) {
	var waits []time.Duration
	err := RetryNotify(context.Background(), 4, time.Millisecond, func() error {
		return &RetryableError{Err: errors.New("again")}
	}, func(attempt int, wait time.Duration, _ error) {
		assert.Equal(t, len(waits)+1, attempt)
		waits = append(waits, wait)
	})
	require.Error(t, err)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond}, waits)
}

func TestRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 3, time.Hour, func() error {
		calls++
		cancel()
		return &RetryableError{Err: errors.New("again")}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, 3, p.Retries)
	assert.Equal(t, time.Second, p.Backoff)
	assert.Equal(t, []int{500, 502}, p.StatusForcelist)

	assert.True(t, p.retryStatus("GET", 500))
	assert.True(t, p.retryStatus("GET", 502))
	assert.False(t, p.retryStatus("GET", 503))
	assert.False(t, p.retryStatus("GET", 404))
	assert.False(t, p.retryStatus("POST", 500))

	to := DefaultTimeouts()
	assert.Equal(t, 15*time.Second, to.Connect)
	assert.Equal(t, 30*time.Second, to.Read)
}
