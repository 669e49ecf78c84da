package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "https://api.example.test/a")
	c.OnCacheMiss(ctx, "https://api.example.test/a")
	c.OnCacheSet(ctx, "https://api.example.test/a", 1024)
	c.OnCacheRevalidated(ctx, "https://api.example.test/a", true)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "api.example.test", "/a")
	h.OnResponse(ctx, "GET", "api.example.test", "/a", 200, time.Second)
	h.OnError(ctx, "GET", "api.example.test", "/a", nil)
	h.OnRetry(ctx, "GET", "api.example.test", "/a", 1, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	assert.IsType(t, NoopCacheHooks{}, Cache())
	assert.IsType(t, NoopHTTPHooks{}, HTTP())

	hooks := NewLogHooks(nil)
	SetCacheHooks(hooks)
	SetHTTPHooks(hooks)
	assert.Same(t, hooks, Cache())
	assert.Same(t, hooks, HTTP())

	// nil does not replace registered hooks
	SetCacheHooks(nil)
	SetHTTPHooks(nil)
	assert.Same(t, hooks, Cache())
	assert.Same(t, hooks, HTTP())

	Reset()
	assert.IsType(t, NoopCacheHooks{}, Cache())
	assert.IsType(t, NoopHTTPHooks{}, HTTP())
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	ctx := context.Background()

	h.OnCacheRevalidated(ctx, "https://api.example.test/a", true)
	h.OnError(ctx, "GET", "api.example.test", "/a", errors.New("connection refused"))
	h.OnRetry(ctx, "GET", "api.example.test", "/a", 2, 2*time.Second)

	out := buf.String()
	assert.Contains(t, out, "revalidated")
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, "retrying request")
	assert.Contains(t, out, "attempt=2")
}
