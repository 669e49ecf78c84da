package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/autobuild/pkg/cache"
	"github.com/matzehuels/autobuild/pkg/config"
	"github.com/matzehuels/autobuild/pkg/observability"
	"github.com/matzehuels/autobuild/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "autobuild"

// Log levels exported for use in main.go.
const (
	LogWarn  = log.WarnLevel
	LogInfo  = log.InfoLevel
	LogDebug = log.DebugLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	in  io.Reader
	out io.Writer

	verbose    int
	configFile string
	cacheDir   string
	noCache    bool
}

// New creates a new CLI instance logging to w at level.
// Command output goes to stdout and prompts read stdin.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

// SetIO replaces the prompt input and command output streams.
func (c *CLI) SetIO(in io.Reader, out io.Writer) {
	c.in = in
	c.out = out
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// levelForVerbosity maps the -v count to a log level.
func levelForVerbosity(n int) log.Level {
	switch {
	case n <= 0:
		return LogWarn
	case n == 1:
		return LogInfo
	default:
		return LogDebug
	}
}

// =============================================================================
// Command Environment
// =============================================================================

// loadConfig reads --config, or autobuild.toml when present, and applies --cache-dir.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return nil, err
	}
	if c.cacheDir != "" {
		cfg.Cache.Dir = c.cacheDir
	}
	return cfg, nil
}

// withSessions runs fn with a session provider. Unless --no-cache is set the
// provider is bound to a cache handle that lives exactly as long as fn.
func (c *CLI) withSessions(ctx context.Context, cfg *config.Config, fn func(context.Context, *session.Provider) error) error {
	observability.SetHTTPHooks(observability.NewLogHooks(c.Logger))
	observability.SetCacheHooks(observability.NewLogHooks(c.Logger))

	run := func(ctx context.Context, h *cache.Handle) error {
		provider := session.NewProvider(
			session.WithCache(h),
			session.WithRetryPolicy(cfg.RetryPolicy()),
			session.WithTimeouts(cfg.Timeouts()),
			session.WithLogger(c.Logger),
		)
		// workers may share the provider; build the no-cache session up front
		provider.Get(true)
		return fn(ctx, provider)
	}

	if c.noCache {
		c.Logger.Debug("cache disabled")
		return run(ctx, cache.Disabled())
	}
	return cache.Scope(ctx, c.activateOptions(cfg), run)
}

func (c *CLI) activateOptions(cfg *config.Config) cache.ActivateOptions {
	return cache.ActivateOptions{
		Dir:      cfg.Cache.Dir,
		PruneAge: cfg.Cache.PruneAfter,
		Logger:   c.Logger,
	}
}

// resolveCacheDir returns the configured cache directory or the default one.
func resolveCacheDir(cfg *config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// commandContext attaches the CLI logger to the command's context.
func (c *CLI) commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return withLogger(ctx, c.Logger)
}
