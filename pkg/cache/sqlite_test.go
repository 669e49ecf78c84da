package cache

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), FileName()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	created := time.Unix(1700000000, 0)
	in := &Entry{
		Key:          "k1",
		Method:       http.MethodGet,
		URL:          "https://api.example.test/repos",
		Status:       http.StatusOK,
		Header:       http.Header{"Content-Type": {"application/json"}, "Etag": {`"abc"`}},
		Body:         []byte(`{"ok":true}`),
		ETag:         `"abc"`,
		LastModified: "Mon, 02 Jan 2006 15:04:05 GMT",
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	require.NoError(t, s.Set(ctx, in))

	out, found, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, in.URL, out.URL)
	assert.Equal(t, in.Body, out.Body)
	assert.Equal(t, in.ETag, out.ETag)
	assert.Equal(t, in.LastModified, out.LastModified)
	assert.Equal(t, "application/json", out.Header.Get("Content-Type"))
	assert.True(t, created.Equal(out.CreatedAt))

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteStoreReplaceKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first := time.Unix(1700000000, 0)
	later := first.Add(time.Hour)
	require.NoError(t, s.Set(ctx, &Entry{Key: "k", Status: 200, Body: []byte("a"), CreatedAt: first, UpdatedAt: first}))
	require.NoError(t, s.Set(ctx, &Entry{Key: "k", Status: 200, Body: []byte("b"), CreatedAt: later, UpdatedAt: later}))

	e, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("b"), e.Body)
	assert.True(t, first.Equal(e.CreatedAt))
	assert.True(t, later.Equal(e.UpdatedAt))
}

func TestSQLiteStorePrune(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now()

	entries := map[string]time.Duration{
		"fresh":    10 * time.Minute,
		"boundary": 2*time.Hour + 59*time.Minute,
		"old":      4 * time.Hour,
		"ancient":  48 * time.Hour,
	}
	for key, age := range entries {
		at := now.Add(-age)
		require.NoError(t, s.Set(ctx, &Entry{Key: key, Status: 200, CreatedAt: at, UpdatedAt: at}))
	}

	removed, err := s.Prune(ctx, now.Add(-PruneAge))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	for key, wantFound := range map[string]bool{"fresh": true, "boundary": true, "old": false, "ancient": false} {
		_, found, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, wantFound, found, key)
	}
}

func TestSQLiteStoreTouchAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	old := time.Now().Add(-5 * time.Hour)

	require.NoError(t, s.Set(ctx, &Entry{Key: "k", Status: 200, CreatedAt: old, UpdatedAt: old}))
	require.NoError(t, s.Touch(ctx, "k", time.Now()))
	require.NoError(t, s.Touch(ctx, "missing", time.Now()))

	removed, err := s.Prune(ctx, time.Now().Add(-PruneAge))
	require.NoError(t, err)
	assert.Zero(t, removed)

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	_, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteStoreClosed(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Set(ctx, &Entry{Key: "k"}), ErrClosed)
	_, err = s.Prune(ctx, time.Now())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()
	defer s.Close()

	require.NoError(t, s.Set(ctx, &Entry{Key: "k"}))
	_, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFingerprint(t *testing.T) {
	newReq := func(method, url string, headers ...string) *http.Request {
		req, err := http.NewRequest(method, url, nil)
		require.NoError(t, err)
		for i := 0; i+1 < len(headers); i += 2 {
			req.Header.Set(headers[i], headers[i+1])
		}
		return req
	}

	base := Fingerprint(newReq("GET", "https://api.example.test/a"))
	assert.Len(t, base, 64)
	assert.Equal(t, base, Fingerprint(newReq("GET", "https://api.example.test/a", "User-Agent", "x")))

	assert.NotEqual(t, base, Fingerprint(newReq("HEAD", "https://api.example.test/a")))
	assert.NotEqual(t, base, Fingerprint(newReq("GET", "https://api.example.test/b")))
	assert.NotEqual(t, base, Fingerprint(newReq("GET", "https://api.example.test/a", "Accept", "application/json")))
	assert.NotEqual(t, base, Fingerprint(newReq("GET", "https://api.example.test/a", "Authorization", "token x")))
}

func TestHash(t *testing.T) {
	assert.Equal(t, Hash([]byte("hello")), Hash([]byte("hello")))
	assert.NotEqual(t, Hash([]byte("hello")), Hash([]byte("world")))
	assert.Len(t, Hash([]byte("hello")), 64)
}
