// Package cache provides the on-disk HTTP response cache.
//
// The cache is a thin lifecycle around a [Store]: [Activate] opens it at the
// start of a work session, [Handle.Close] prunes old entries and releases it
// at the end. While active, [Handle.Transport] wraps an [http.RoundTripper]
// so that GET and HEAD responses carrying an ETag or Last-Modified header are
// stored, and every later request for the same resource is sent as a
// conditional request. A 304 answer is served from the store, which keeps
// rate-limited APIs from charging for unchanged data.
//
// Cache-Control headers are ignored: entries expire immediately and are
// always revalidated.
//
// # Usage
//
//	err := cache.Scope(ctx, cache.ActivateOptions{}, func(ctx context.Context, h *cache.Handle) error {
//	    client := &http.Client{Transport: h.Transport(http.DefaultTransport)}
//	    // ...
//	    return nil
//	})
package cache

import (
	"context"
	"net/http"
	"time"
)

// Entry is a stored HTTP response.
type Entry struct {
	Key          string
	Method       string
	URL          string
	Status       int
	Header       http.Header
	Body         []byte
	ETag         string
	LastModified string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store persists cache entries.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the entry for key. found is false when there is none.
	Get(ctx context.Context, key string) (e *Entry, found bool, err error)

	// Set inserts or replaces the entry with e.Key.
	Set(ctx context.Context, e *Entry) error

	// Touch sets the entry's UpdatedAt. A missing key is not an error.
	Touch(ctx context.Context, key string, at time.Time) error

	// Delete removes the entry. A missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Prune removes entries last updated before cutoff and returns how many were removed.
	Prune(ctx context.Context, cutoff time.Time) (int, error)

	// Len returns the number of stored entries.
	Len(ctx context.Context) (int, error)

	// Close releases the store.
	Close() error
}
