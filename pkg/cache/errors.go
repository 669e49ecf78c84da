package cache

import "errors"

// Sentinel errors for cache operations.
var (
	// ErrAlreadyActive is returned when a cache directory already has an active handle.
	ErrAlreadyActive = errors.New("cache already active")

	// ErrClosed is returned by store operations after Close.
	ErrClosed = errors.New("cache closed")
)
