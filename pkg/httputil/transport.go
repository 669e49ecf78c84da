package httputil

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/matzehuels/autobuild/pkg/observability"
)

// NewTransport returns a base transport honoring t.
// Connect bounds dialing and the TLS handshake, Read bounds the wait for response headers.
func NewTransport(t Timeouts) *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   t.Connect,
		ResponseHeaderTimeout: t.Read,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
		DialContext: (&net.Dialer{
			Timeout:   t.Connect,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
}

// RetryTransport retries requests according to a [RetryPolicy].
// When the retries for a forcelisted status run out the last response is returned as is.
type RetryTransport struct {
	next   http.RoundTripper
	policy RetryPolicy
}

// NewRetryTransport wraps next. A nil next uses [http.DefaultTransport].
func NewRetryTransport(next http.RoundTripper, policy RetryPolicy) *RetryTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &RetryTransport{next: next, policy: policy}
}

// Policy returns the policy the transport applies.
func (t *RetryTransport) Policy() RetryPolicy {
	return t.policy
}

// RoundTrip implements [http.RoundTripper].
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	attempts := t.policy.Retries + 1

	var (
		resp    *http.Response
		attempt int
	)
	err := RetryNotify(ctx, attempts, t.policy.Backoff, func() error {
		attempt++
		try, err := rewind(req, attempt)
		if err != nil {
			return err
		}

		hooks.OnRequest(ctx, req.Method, host, path)
		start := time.Now()
		r, err := t.next.RoundTrip(try)
		if err != nil {
			hooks.OnError(ctx, req.Method, host, path, err)
			if t.retryError(req, err) {
				return &RetryableError{Err: err}
			}
			return err
		}
		hooks.OnResponse(ctx, req.Method, host, path, r.StatusCode, time.Since(start))

		if attempt < attempts && t.policy.retryStatus(req.Method, r.StatusCode) {
			drain(r)
			return &RetryableError{Err: fmt.Errorf("%s %s: status %d", req.Method, req.URL, r.StatusCode)}
		}
		resp = r
		return nil
	}, func(n int, wait time.Duration, _ error) {
		hooks.OnRetry(ctx, req.Method, host, path, n, wait)
	})
	if err != nil {
		var re *RetryableError
		if errors.As(err, &re) {
			return nil, re.Err
		}
		return nil, err
	}
	return resp, nil
}

func (t *RetryTransport) retryError(req *http.Request, err error) bool {
	if req.Context().Err() != nil {
		return false
	}
	var op *net.OpError
	if errors.As(err, &op) && op.Op == "dial" {
		return true
	}
	return t.policy.methodAllowed(req.Method)
}

// rewind returns the request for the given attempt, replaying the body when needed.
func rewind(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 1 || req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("%s %s: request body cannot be replayed", req.Method, req.URL)
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	r := req.Clone(req.Context())
	r.Body = body
	return r, nil
}

func drain(r *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, 64<<10))
	_ = r.Body.Close()
}
