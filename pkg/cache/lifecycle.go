package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DirName is the cache directory created in the working directory.
	DirName = ".autobuild_cache"

	// FilePrefix starts the name of every cache file, current or stale.
	FilePrefix = "http_cache"

	// PruneAge is how long an entry survives without being used.
	PruneAge = 3 * time.Hour
)

// FileName returns the cache file name for the current [SchemaVersion].
func FileName() string {
	return fmt.Sprintf("%s_%s.sqlite", FilePrefix, SchemaVersion)
}

// DefaultDir returns <cwd>/.autobuild_cache.
func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DirName), nil
}

// ActivateOptions configures [Activate].
type ActivateOptions struct {
	// Dir is the cache directory. Empty means [DefaultDir].
	Dir string

	// PruneAge overrides [PruneAge] when positive.
	PruneAge time.Duration

	// Logger receives debug output. Nil uses log.Default().
	Logger *log.Logger
}

// active tracks the directories with a live handle in this process.
var active = struct {
	sync.Mutex
	dirs map[string]bool
}{dirs: make(map[string]bool)}

func acquire(dir string) bool {
	active.Lock()
	defer active.Unlock()
	if active.dirs[dir] {
		return false
	}
	active.dirs[dir] = true
	return true
}

func release(dir string) {
	active.Lock()
	defer active.Unlock()
	delete(active.dirs, dir)
}

// Handle is an activated cache. It is owned by the caller of [Activate] and
// must be closed exactly once; further Close calls are no-ops.
type Handle struct {
	mu       sync.RWMutex
	dir      string
	path     string
	store    Store
	logger   *log.Logger
	pruneAge time.Duration
	now      func() time.Time
	closed   bool
}

// Activate opens the cache in opts.Dir, removing cache files of other schema versions.
// It returns [ErrAlreadyActive] when the directory already has an open handle.
func Activate(ctx context.Context, opts ActivateOptions) (*Handle, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	dir := opts.Dir
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolve cache dir: %w", err)
		}
		dir = d
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}

	if !acquire(dir) {
		return nil, fmt.Errorf("%s: %w", dir, ErrAlreadyActive)
	}

	h, err := open(ctx, dir, logger)
	if err != nil {
		release(dir)
		return nil, err
	}
	h.pruneAge = PruneAge
	if opts.PruneAge > 0 {
		h.pruneAge = opts.PruneAge
	}
	return h, nil
}

func open(ctx context.Context, dir string, logger *log.Logger) (*Handle, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	current := FileName()
	if err := removeStale(dir, current, logger); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, current)
	store, err := OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	logger.Debug("cache activated", "path", path)

	return &Handle{
		dir:    dir,
		path:   path,
		store:  store,
		logger: logger,
		now:    time.Now,
	}, nil
}

// removeStale deletes cache files left behind by other schema versions.
func removeStale(dir, current string, logger *log.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read cache dir: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, FilePrefix) || strings.HasPrefix(name, current) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("remove stale cache file: %w", err)
		}
		logger.Debug("removed stale cache file", "file", name)
	}
	return nil
}

// Scope activates the cache, runs fn and closes the handle on every exit path.
// When both fn and Close fail the errors are joined, fn's first.
func Scope(ctx context.Context, opts ActivateOptions, fn func(context.Context, *Handle) error) (err error) {
	h, err := Activate(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(ctx, h)
}

// Disabled returns an inactive handle backed by a [NullStore].
// Its transports pass every request through.
func Disabled() *Handle {
	return &Handle{
		store:  NullStore{},
		logger: log.Default(),
		now:    time.Now,
		closed: true,
	}
}

// Active reports whether the handle is still open.
func (h *Handle) Active() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return !h.closed
}

// Path returns the cache file path. It is empty for a disabled handle.
func (h *Handle) Path() string {
	return h.path
}

// Dir returns the cache directory. It is empty for a disabled handle.
func (h *Handle) Dir() string {
	return h.dir
}

// Store returns the underlying store.
func (h *Handle) Store() Store {
	return h.store
}

// Prune removes entries not used within age and returns how many were removed.
func (h *Handle) Prune(ctx context.Context, age time.Duration) (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return 0, ErrClosed
	}
	return h.prune(ctx, age)
}

func (h *Handle) prune(ctx context.Context, age time.Duration) (int, error) {
	n, err := h.store.Prune(ctx, h.now().Add(-age))
	if err != nil {
		return 0, err
	}
	h.logger.Debug("pruned cache", "removed", n, "older_than", age)
	return n, nil
}

// Close prunes entries older than the prune age, deactivates the handle and
// closes the store.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	defer release(h.dir)

	_, perr := h.prune(context.Background(), h.pruneAge)
	cerr := h.store.Close()
	h.logger.Debug("cache deactivated", "path", h.path)
	return errors.Join(perr, cerr)
}

// lookup, save and touch give the transport access to the store under the
// handle's lock. They report a closed handle as a miss or a no-op.
func (h *Handle) lookup(ctx context.Context, key string) (*Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return nil, false
	}
	e, ok, err := h.store.Get(ctx, key)
	if err != nil {
		h.logger.Debug("cache read failed", "err", err)
		return nil, false
	}
	return e, ok
}

func (h *Handle) save(ctx context.Context, e *Entry) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	now := h.now()
	e.CreatedAt, e.UpdatedAt = now, now
	if err := h.store.Set(ctx, e); err != nil {
		h.logger.Debug("cache write failed", "url", e.URL, "err", err)
	}
}

func (h *Handle) touch(ctx context.Context, key string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	if err := h.store.Touch(ctx, key, h.now()); err != nil {
		h.logger.Debug("cache touch failed", "err", err)
	}
}

// Files lists the cache files in dir, current and stale.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), FilePrefix) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// Clear deletes every cache file in dir and returns the number of bytes freed.
// It fails with [ErrAlreadyActive] while a handle is open on dir.
func Clear(dir string) (int64, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return 0, err
	}
	if !acquire(dir) {
		return 0, fmt.Errorf("%s: %w", dir, ErrAlreadyActive)
	}
	defer release(dir)

	files, err := Files(dir)
	if err != nil {
		return 0, err
	}
	var freed int64
	for _, f := range files {
		if info, err := os.Stat(f); err == nil {
			freed += info.Size()
		}
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return freed, err
		}
	}
	return freed, nil
}
