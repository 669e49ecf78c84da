// Package config holds the process configuration: build architectures,
// optional dependencies, HTTP and cache settings.
//
// A [Config] starts from [Default] and can be overlaid by a TOML file:
//
//	optional_deps = { "mingw-w64-llvm" = ["mingw-w64-libc++"] }
//	mingw_arch_list = ["mingw64", "ucrt64"]
//
//	[http]
//	timeout_connect = "15s"
//	timeout_read = "30s"
//	retries = 3
//
//	[cache]
//	dir = ".autobuild_cache"
//	prune_after = "3h"
//
// Keys present in the file replace the defaults wholesale. Optional
// dependencies given on the command line are appended with
// [Config.ApplyOptionalDeps].
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/matzehuels/autobuild/pkg/errors"
	"github.com/matzehuels/autobuild/pkg/httputil"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "autobuild.toml"

// DefaultWebsiteURL is the package website base URL.
const DefaultWebsiteURL = "https://packages.msys2.org"

// Source build types.
const (
	MingwSrcBuildType = "mingw-src"
	MsysSrcBuildType  = "msys-src"
)

// Config is the process configuration.
type Config struct {
	// OptionalDeps maps a package to dependencies ignored when breaking cycles.
	OptionalDeps OptionalDeps `toml:"optional_deps"`

	// IgnoreRdepPackages are packages whose failures do not block reverse dependencies.
	IgnoreRdepPackages []string `toml:"ignore_rdep_packages"`

	MingwArchList []string `toml:"mingw_arch_list"`
	MingwSrcArch  string   `toml:"mingw_src_arch"`
	MsysArchList  []string `toml:"msys_arch_list"`
	MsysSrcArch   string   `toml:"msys_src_arch"`

	WebsiteURL string `toml:"website_url"`

	HTTP  HTTPConfig  `toml:"http"`
	Cache CacheConfig `toml:"cache"`
}

// HTTPConfig configures outbound requests.
type HTTPConfig struct {
	TimeoutConnect  time.Duration `toml:"timeout_connect"`
	TimeoutRead     time.Duration `toml:"timeout_read"`
	Retries         int           `toml:"retries"`
	Backoff         time.Duration `toml:"backoff"`
	StatusForcelist []int         `toml:"status_forcelist"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	Dir        string        `toml:"dir"`
	PruneAfter time.Duration `toml:"prune_after"`
}

// Default returns the built-in configuration.
func Default() *Config {
	policy := httputil.DefaultRetryPolicy()
	timeouts := httputil.DefaultTimeouts()
	return &Config{
		OptionalDeps: OptionalDeps{
			"mingw-w64-headers-git": {"mingw-w64-winpthreads", "mingw-w64-tools-git"},
			"mingw-w64-crt-git":     {"mingw-w64-winpthreads"},
			"mingw-w64-llvm":        {"mingw-w64-libc++"},
		},
		IgnoreRdepPackages: []string{},
		MingwArchList:      []string{"mingw32", "mingw64", "ucrt64", "clang64", "clangarm64"},
		MingwSrcArch:       "ucrt64",
		MsysArchList:       []string{"msys"},
		MsysSrcArch:        "msys",
		WebsiteURL:         DefaultWebsiteURL,
		HTTP: HTTPConfig{
			TimeoutConnect:  timeouts.Connect,
			TimeoutRead:     timeouts.Read,
			Retries:         policy.Retries,
			Backoff:         policy.Backoff,
			StatusForcelist: policy.StatusForcelist,
		},
		Cache: CacheConfig{PruneAfter: 3 * time.Hour},
	}
}

// Load returns [Default] overlaid with the TOML file at path.
// An empty path loads [DefaultFile] when it exists and the defaults otherwise.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat(DefaultFile); errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		path = DefaultFile
	}

	var file Config
	md, err := toml.DecodeFile(path, &file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "config file %s not found", path)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.overlay(&file, md)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// overlay copies the keys defined in the file onto c.
func (c *Config) overlay(f *Config, md toml.MetaData) {
	set := func(key ...string) bool { return md.IsDefined(key...) }

	if set("optional_deps") {
		c.OptionalDeps = f.OptionalDeps
		if c.OptionalDeps == nil {
			c.OptionalDeps = OptionalDeps{}
		}
	}
	if set("ignore_rdep_packages") {
		c.IgnoreRdepPackages = f.IgnoreRdepPackages
	}
	if set("mingw_arch_list") {
		c.MingwArchList = f.MingwArchList
	}
	if set("mingw_src_arch") {
		c.MingwSrcArch = f.MingwSrcArch
	}
	if set("msys_arch_list") {
		c.MsysArchList = f.MsysArchList
	}
	if set("msys_src_arch") {
		c.MsysSrcArch = f.MsysSrcArch
	}
	if set("website_url") {
		c.WebsiteURL = strings.TrimRight(f.WebsiteURL, "/")
	}
	if set("http", "timeout_connect") {
		c.HTTP.TimeoutConnect = f.HTTP.TimeoutConnect
	}
	if set("http", "timeout_read") {
		c.HTTP.TimeoutRead = f.HTTP.TimeoutRead
	}
	if set("http", "retries") {
		c.HTTP.Retries = f.HTTP.Retries
	}
	if set("http", "backoff") {
		c.HTTP.Backoff = f.HTTP.Backoff
	}
	if set("http", "status_forcelist") {
		c.HTTP.StatusForcelist = f.HTTP.StatusForcelist
	}
	if set("cache", "dir") {
		c.Cache.Dir = f.Cache.Dir
	}
	if set("cache", "prune_after") {
		c.Cache.PruneAfter = f.Cache.PruneAfter
	}
}

// Validate checks the configuration for values the rest of the program cannot use.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, format, args...)
	}

	if len(c.MingwArchList) == 0 && len(c.MsysArchList) == 0 {
		return invalid("at least one of mingw_arch_list and msys_arch_list must be set")
	}
	if c.MingwSrcArch == "" || c.MsysSrcArch == "" {
		return invalid("mingw_src_arch and msys_src_arch must be set")
	}
	if err := apperrors.ValidateURL(c.WebsiteURL); err != nil {
		return invalid("website_url: %s", apperrors.UserMessage(err))
	}
	for pkg, ignored := range c.OptionalDeps {
		for _, name := range append([]string{pkg}, ignored...) {
			if err := apperrors.ValidatePackageName(name); err != nil {
				return invalid("optional_deps: %s", apperrors.UserMessage(err))
			}
		}
	}
	if c.HTTP.TimeoutConnect <= 0 || c.HTTP.TimeoutRead <= 0 {
		return invalid("http timeouts must be positive")
	}
	if c.HTTP.Retries < 0 || c.HTTP.Backoff < 0 {
		return invalid("http retries and backoff must not be negative")
	}
	if c.Cache.PruneAfter <= 0 {
		return invalid("cache.prune_after must be positive")
	}
	return nil
}

// RetryPolicy returns the HTTP retry policy.
func (c *Config) RetryPolicy() httputil.RetryPolicy {
	p := httputil.DefaultRetryPolicy()
	p.Retries = c.HTTP.Retries
	p.Backoff = c.HTTP.Backoff
	p.StatusForcelist = slices.Clone(c.HTTP.StatusForcelist)
	return p
}

// Timeouts returns the HTTP timeouts.
func (c *Config) Timeouts() httputil.Timeouts {
	return httputil.Timeouts{Connect: c.HTTP.TimeoutConnect, Read: c.HTTP.TimeoutRead}
}

// AllBuildTypes lists every build type: msys arches, mingw arches, then the two source types.
func (c *Config) AllBuildTypes() []string {
	all := make([]string, 0, len(c.MsysArchList)+len(c.MingwArchList)+2)
	all = append(all, c.MsysArchList...)
	all = append(all, c.MingwArchList...)
	return append(all, MingwSrcBuildType, MsysSrcBuildType)
}

// IsSourceBuildType reports whether bt builds a source package.
func IsSourceBuildType(bt string) bool {
	return bt == MingwSrcBuildType || bt == MsysSrcBuildType
}
