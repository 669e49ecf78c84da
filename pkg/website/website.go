// Package website notifies the package website that new packages are available.
package website

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/autobuild/pkg/httputil"
	"github.com/matzehuels/autobuild/pkg/session"
)

// DefaultEndpoint is the website's update trigger.
const DefaultEndpoint = "https://packages.msys2.org/api/trigger_update"

// Notifier asks the website to refresh its package data.
type Notifier struct {
	sess     *session.Session
	logger   *log.Logger
	endpoint string
}

// Option configures a [Notifier].
type Option func(*Notifier)

// WithEndpoint overrides [DefaultEndpoint].
func WithEndpoint(url string) Option {
	return func(n *Notifier) { n.endpoint = url }
}

// NewNotifier creates a notifier sending through sess. A nil logger uses log.Default().
func NewNotifier(sess *session.Session, logger *log.Logger, opts ...Option) *Notifier {
	if logger == nil {
		logger = log.Default()
	}
	n := &Notifier{sess: sess, logger: logger, endpoint: DefaultEndpoint}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Endpoint returns the URL the notifier posts to.
func (n *Notifier) Endpoint() string {
	return n.endpoint
}

// QueueUpdate posts the update trigger. A failed update is not worth stopping
// a build for: errors and non-2xx answers are logged as warnings and dropped.
func (n *Notifier) QueueUpdate(ctx context.Context) {
	resp, err := n.sess.Post(ctx, n.endpoint, "", nil)
	if err != nil {
		n.logger.Warn("website update failed", "url", n.endpoint, "err", err)
		return
	}
	if err := httputil.CheckResponse(resp); err != nil {
		n.logger.Warn("website update failed", "url", n.endpoint, "err", err)
		return
	}
	resp.Body.Close()
	n.logger.Info("queued website update", "url", n.endpoint)
}
