package website

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/autobuild/pkg/httputil"
	"github.com/matzehuels/autobuild/pkg/session"
)

func testSession() *session.Session {
	policy := httputil.DefaultRetryPolicy()
	policy.Backoff = time.Millisecond
	return session.NewProvider(session.WithRetryPolicy(policy)).Get(true)
}

func TestQueueUpdate(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantWarn bool
	}{
		{"accepted", http.StatusOK, false},
		{"no content", http.StatusNoContent, false},
		{"server error", http.StatusInternalServerError, true},
		{"not found", http.StatusNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var method string
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				method = r.Method
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			var buf bytes.Buffer
			logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})
			n := NewNotifier(testSession(), logger, WithEndpoint(srv.URL))

			assert.NotPanics(t, func() { n.QueueUpdate(context.Background()) })
			assert.Equal(t, http.MethodPost, method)
			// POST is not retried on a server error
			assert.Equal(t, 1, calls)
			assert.Equal(t, tt.wantWarn, bytes.Contains(buf.Bytes(), []byte("website update failed")), buf.String())
		})
	}
}

func TestQueueUpdateConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})
	n := NewNotifier(testSession(), logger, WithEndpoint(url))

	n.QueueUpdate(context.Background())
	assert.Contains(t, buf.String(), "website update failed")
}

func TestDefaultEndpoint(t *testing.T) {
	n := NewNotifier(testSession(), nil)
	assert.Equal(t, "https://packages.msys2.org/api/trigger_update", n.Endpoint())
}
