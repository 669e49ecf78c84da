package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes cache and HTTP events to a logger at debug level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log every event. A nil logger uses log.Default().
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("http")}
}

func (h *LogHooks) OnCacheHit(_ context.Context, url string) {
	h.logger.Debug("cache hit", "url", url)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, url string) {
	h.logger.Debug("cache miss", "url", url)
}

func (h *LogHooks) OnCacheSet(_ context.Context, url string, size int) {
	h.logger.Debug("cache store", "url", url, "bytes", size)
}

func (h *LogHooks) OnCacheRevalidated(_ context.Context, url string, notModified bool) {
	h.logger.Debug("revalidated", "url", url, "not_modified", notModified)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, statusCode int, d time.Duration) {
	h.logger.Debug("response", "method", method, "host", host, "path", path,
		"status", statusCode, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("request failed", "method", method, "host", host, "path", path, "err", err)
}

func (h *LogHooks) OnRetry(_ context.Context, method, host, path string, attempt int, wait time.Duration) {
	h.logger.Warn("retrying request", "method", method, "host", host, "path", path,
		"attempt", attempt, "wait", wait)
}
