package cache

import (
	"context"
	"time"
)

// NullStore is a store that never keeps anything.
// It backs the handle returned by [Disabled].
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store {
	return NullStore{}
}

func (NullStore) Get(context.Context, string) (*Entry, bool, error) { return nil, false, nil }
func (NullStore) Set(context.Context, *Entry) error                 { return nil }
func (NullStore) Touch(context.Context, string, time.Time) error    { return nil }
func (NullStore) Delete(context.Context, string) error              { return nil }
func (NullStore) Prune(context.Context, time.Time) (int, error)     { return 0, nil }
func (NullStore) Len(context.Context) (int, error)                  { return 0, nil }
func (NullStore) Close() error                                      { return nil }

var _ Store = NullStore{}
