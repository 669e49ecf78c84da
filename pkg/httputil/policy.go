package httputil

import (
	"net/http"
	"slices"
	"time"
)

// RetryPolicy describes when and how often a request is retried.
type RetryPolicy struct {
	// Retries is the number of retries after the first attempt.
	Retries int
	// Backoff is the wait before the first retry. It doubles for every further retry.
	Backoff time.Duration
	// StatusForcelist lists response statuses that trigger a retry.
	StatusForcelist []int
	// AllowedMethods lists methods retried on a forcelisted status or a
	// failure after the connection was made.
	AllowedMethods []string
}

// DefaultRetryPolicy returns 3 retries, a 1s backoff factor and retries on 500 and 502.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Retries:         3,
		Backoff:         time.Second,
		StatusForcelist: []int{http.StatusInternalServerError, http.StatusBadGateway},
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut,
			http.MethodDelete, http.MethodOptions, http.MethodTrace,
		},
	}
}

func (p RetryPolicy) methodAllowed(method string) bool {
	return slices.Contains(p.AllowedMethods, method)
}

func (p RetryPolicy) retryStatus(method string, status int) bool {
	return p.methodAllowed(method) && slices.Contains(p.StatusForcelist, status)
}

// Timeouts bounds connection setup and the wait for a response.
type Timeouts struct {
	Connect time.Duration
	Read    time.Duration
}

// DefaultTimeouts returns a 15s connect and a 30s read timeout.
func DefaultTimeouts() Timeouts {
	return Timeouts{Connect: 15 * time.Second, Read: 30 * time.Second}
}
