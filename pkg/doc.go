// Package pkg holds the libraries behind the autobuild command.
//
// # Overview
//
// Autobuild reads the MSYS2 package website's build queue and talks to it over
// HTTP. Responses are cached on disk and revalidated on every use, so repeated
// runs spend little API quota. The packages are:
//
//   - [config]: defaults, the optional TOML file and optional-dependency overrides
//   - [session]: memoized HTTP sessions, with or without the cache
//   - [cache]: the SQLite response store, its lifecycle and the revalidating transport
//   - [httputil]: base transport timeouts, retry policy and status checks
//   - [queue]: the build queue model and dependency cycle detection
//   - [website]: the website update trigger
//   - [gha]: GitHub Actions log groups
//   - [observability]: hooks for cache and HTTP events
//   - [errors]: coded errors shared by all packages
//   - [buildinfo]: version information set at build time
//
// # Quick Start
//
//	cfg, _ := config.Load("")
//	err := cache.Scope(ctx, cache.ActivateOptions{}, func(ctx context.Context, h *cache.Handle) error {
//	    provider := session.NewProvider(session.WithCache(h), session.WithRetryPolicy(cfg.RetryPolicy()))
//	    pkgs, err := queue.Fetch(ctx, provider.Get(false), cfg.WebsiteURL, cfg)
//	    if err != nil {
//	        return err
//	    }
//	    for _, c := range queue.Cycles(pkgs, cfg) {
//	        fmt.Println(c.A.Name, "<->", c.B.Name)
//	    }
//	    return nil
//	})
//
// [config]: github.com/matzehuels/autobuild/pkg/config
// [session]: github.com/matzehuels/autobuild/pkg/session
// [cache]: github.com/matzehuels/autobuild/pkg/cache
// [httputil]: github.com/matzehuels/autobuild/pkg/httputil
// [queue]: github.com/matzehuels/autobuild/pkg/queue
// [website]: github.com/matzehuels/autobuild/pkg/website
// [gha]: github.com/matzehuels/autobuild/pkg/gha
// [observability]: github.com/matzehuels/autobuild/pkg/observability
// [errors]: github.com/matzehuels/autobuild/pkg/errors
// [buildinfo]: github.com/matzehuels/autobuild/pkg/buildinfo
package pkg
