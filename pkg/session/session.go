// Package session provides the HTTP sessions used for every outbound request.
//
// A [Provider] owns at most two sessions: one routed through the response
// cache and one that bypasses it. Sessions are created on first use and kept
// for the provider's lifetime, so connection pools are shared by every caller
// asking for the same flavour.
//
// # Usage
//
//	p := session.NewProvider(session.WithCache(handle))
//	resp, err := p.Get(false).Get(ctx, "https://api.github.com/repos/msys2/MINGW-packages")
package session

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/autobuild/pkg/buildinfo"
	"github.com/matzehuels/autobuild/pkg/cache"
	"github.com/matzehuels/autobuild/pkg/httputil"
)

// Session is a configured HTTP client.
type Session struct {
	client  *http.Client
	noCache bool
	policy  httputil.RetryPolicy
}

// Client returns the underlying client.
func (s *Session) Client() *http.Client {
	return s.client
}

// NoCache reports whether the session bypasses the response cache.
func (s *Session) NoCache() bool {
	return s.noCache
}

// RetryPolicy returns the policy applied to every request.
func (s *Session) RetryPolicy() httputil.RetryPolicy {
	return s.policy
}

// Do sends req, setting a User-Agent when the caller did not.
// Transport errors are returned unchanged.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", buildinfo.UserAgent())
	}
	return s.client.Do(req)
}

// Get issues a GET to url.
func (s *Session) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return s.Do(req)
}

// Post issues a POST to url. body may be nil.
func (s *Session) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return s.Do(req)
}

// Option configures a [Provider].
type Option func(*Provider)

// WithCache routes cached sessions through h.
func WithCache(h *cache.Handle) Option {
	return func(p *Provider) { p.cache = h }
}

// WithRetryPolicy overrides [httputil.DefaultRetryPolicy].
func WithRetryPolicy(policy httputil.RetryPolicy) Option {
	return func(p *Provider) { p.policy = policy }
}

// WithTimeouts overrides [httputil.DefaultTimeouts].
func WithTimeouts(t httputil.Timeouts) Option {
	return func(p *Provider) { p.timeouts = t }
}

// WithLogger sets the logger for session creation.
func WithLogger(l *log.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// Provider hands out memoized sessions keyed by the nocache flag.
type Provider struct {
	mu       sync.Mutex
	sessions map[bool]*Session

	cache    *cache.Handle
	policy   httputil.RetryPolicy
	timeouts httputil.Timeouts
	logger   *log.Logger
}

// NewProvider creates a provider. Without [WithCache] every session bypasses the cache.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		sessions: make(map[bool]*Session, 2),
		policy:   httputil.DefaultRetryPolicy(),
		timeouts: httputil.DefaultTimeouts(),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the session for nocache, creating it on first use.
// Repeated calls with the same flag return the same session.
func (p *Provider) Get(nocache bool) *Session {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.sessions[nocache]; ok {
		return s
	}
	s := p.newSession(nocache)
	p.sessions[nocache] = s
	return s
}

// newSession builds the transport chain: cache, retry, base.
// A nocache session never gets the cache layer, even if the handle is active.
func (p *Provider) newSession(nocache bool) *Session {
	var rt http.RoundTripper = httputil.NewRetryTransport(httputil.NewTransport(p.timeouts), p.policy)
	cached := !nocache && p.cache != nil
	if cached {
		rt = p.cache.Transport(rt)
	}
	p.logger.Debug("created http session", "cached", cached,
		"retries", p.policy.Retries, "connect_timeout", p.timeouts.Connect, "read_timeout", p.timeouts.Read)

	return &Session{
		client:  &http.Client{Transport: rt},
		noCache: nocache,
		policy:  p.policy,
	}
}
