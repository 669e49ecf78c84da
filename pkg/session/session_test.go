package session

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/autobuild/pkg/cache"
	"github.com/matzehuels/autobuild/pkg/httputil"
)

func TestProviderMemoizes(t *testing.T) {
	p := NewProvider()

	cached := p.Get(false)
	uncached := p.Get(true)

	assert.Same(t, cached, p.Get(false))
	assert.Same(t, uncached, p.Get(true))
	assert.NotSame(t, cached, uncached)
	assert.False(t, cached.NoCache())
	assert.True(t, uncached.NoCache())
}

func TestProviderConcurrentGet(t *testing.T) {
	p := NewProvider()

	var wg sync.WaitGroup
	got := make([]*Session, 16)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = p.Get(i%2 == 0)
		}()
	}
	wg.Wait()

	for i, s := range got {
		assert.Same(t, p.Get(i%2 == 0), s)
	}
}

func TestProvidersAreIndependent(t *testing.T) {
	assert.NotSame(t, NewProvider().Get(false), NewProvider().Get(false))
}

func TestDefaultPolicy(t *testing.T) {
	s := NewProvider().Get(false)
	assert.Equal(t, httputil.DefaultRetryPolicy(), s.RetryPolicy())

	custom := httputil.RetryPolicy{Retries: 1, Backoff: time.Millisecond}
	s = NewProvider(WithRetryPolicy(custom)).Get(true)
	assert.Equal(t, custom, s.RetryPolicy())
}

// validatorServer always answers with an ETag and counts conditional requests.
func validatorServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	conditional := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") != "" {
			conditional++
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"1"`)
		_, _ = io.WriteString(w, "body")
	}))
	t.Cleanup(srv.Close)
	return srv, &conditional
}

func fetch(t *testing.T, s *Session, url string) string {
	t.Helper()
	resp, err := s.Get(context.Background(), url)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestCachedSessionUsesCache(t *testing.T) {
	srv, conditional := validatorServer(t)
	h, err := cache.Activate(context.Background(), cache.ActivateOptions{Dir: t.TempDir()})
	require.NoError(t, err)
	defer h.Close()

	s := NewProvider(WithCache(h)).Get(false)
	assert.Equal(t, "body", fetch(t, s, srv.URL))
	assert.Equal(t, "body", fetch(t, s, srv.URL))
	assert.Equal(t, 1, *conditional)
}

func TestNoCacheSessionBypassesCache(t *testing.T) {
	srv, conditional := validatorServer(t)
	h, err := cache.Activate(context.Background(), cache.ActivateOptions{Dir: t.TempDir()})
	require.NoError(t, err)
	defer h.Close()

	s := NewProvider(WithCache(h)).Get(true)
	fetch(t, s, srv.URL)
	fetch(t, s, srv.URL)
	assert.Zero(t, *conditional)

	n, err := h.Store().Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCachedSessionAfterClose(t *testing.T) {
	srv, conditional := validatorServer(t)
	h, err := cache.Activate(context.Background(), cache.ActivateOptions{Dir: t.TempDir()})
	require.NoError(t, err)

	s := NewProvider(WithCache(h)).Get(false)
	fetch(t, s, srv.URL)
	require.NoError(t, h.Close())

	assert.Equal(t, "body", fetch(t, s, srv.URL))
	assert.Zero(t, *conditional)
}

func TestSessionSetsUserAgent(t *testing.T) {
	var ua []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = append(ua, r.Header.Get("User-Agent"))
	}))
	defer srv.Close()

	s := NewProvider().Get(true)
	resp, err := s.Post(context.Background(), srv.URL, "", nil)
	require.NoError(t, err)
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom")
	resp, err = s.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, ua, 2)
	assert.Contains(t, ua[0], "autobuild/")
	assert.Equal(t, "custom", ua[1])
}

func TestSessionPropagatesTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	policy := httputil.DefaultRetryPolicy()
	policy.Retries = 1
	policy.Backoff = time.Millisecond
	s := NewProvider(WithRetryPolicy(policy)).Get(true)

	_, err := s.Get(context.Background(), url)
	require.Error(t, err)
}
