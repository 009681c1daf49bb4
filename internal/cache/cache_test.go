package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the dump cache:
// - KeyFor is deterministic, absolute and changes with content or settings
// - KeyForFile reads the header and fails for missing files
// - Open creates the database once and reopens it without recreating the schema
// - Get misses return (nil, nil); Put then Get round-trips the XML and version
// - Put with an existing key replaces the entry with a new uuid
// - Get refreshes the access time; Prune removes idle entries only
// - PruneOlderThan with zero days keeps everything
// - Invalidate removes all entries for one header; Clear removes everything
// - Stats counts entries, distinct headers and bytes

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func openTest(t *testing.T, opts ...Option) *Cache {
	t.Helper()
	c, err := Open(t.TempDir(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestKeyFor(t *testing.T) {
	t.Parallel()

	k1 := KeyFor("include/a.hpp", []byte("int a;"), "std=c++17")
	k2 := KeyFor("include/a.hpp", []byte("int a;"), "std=c++17")
	assert.Equal(t, k1, k2)
	assert.True(t, filepath.IsAbs(filepath.FromSlash(k1.Header)))
	assert.Len(t, k1.ContentHash, 64)
	assert.Len(t, k1.ConfigSig, 64)

	assert.NotEqual(t, k1.ContentHash, KeyFor("include/a.hpp", []byte("int b;"), "std=c++17").ContentHash)
	assert.NotEqual(t, k1.ConfigSig, KeyFor("include/a.hpp", []byte("int a;"), "std=c++20").ConfigSig)
	assert.Contains(t, k1.String(), "a.hpp@")
}

func TestKeyForFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.hpp")
	require.NoError(t, os.WriteFile(path, []byte("int a;"), 0644))

	k, err := KeyForFile(path, "sig")
	require.NoError(t, err)
	assert.Equal(t, KeyFor(path, []byte("int a;"), "sig"), k)

	_, err = KeyForFile(filepath.Join(dir, "missing.hpp"), "sig")
	assert.Error(t, err)
}

func TestOpen_ReopensExistingDatabase(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "nested", "cache")
	c, err := Open(root)
	require.NoError(t, err)
	assert.Equal(t, root, c.Root())
	assert.FileExists(t, filepath.Join(root, DatabaseName))

	key := KeyFor("/src/a.hpp", []byte("x"), "sig")
	_, err = c.Put(context.Background(), key, "0.6.2", []byte("<CastXML/>"))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = Open(root)
	require.NoError(t, err)
	defer c.Close()

	e, err := c.Get(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, []byte("<CastXML/>"), e.XML)
}

func TestPutGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := openTest(t)
	key := KeyFor("/src/a.hpp", []byte("int a;"), "sig")

	e, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, e)

	put, err := c.Put(ctx, key, "0.6.2", []byte("<CastXML format=\"1.4.0\"/>"))
	require.NoError(t, err)
	_, err = uuid.Parse(put.ID)
	require.NoError(t, err)

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, put.ID, got.ID)
	assert.Equal(t, "0.6.2", got.CastXMLVersion)
	assert.Equal(t, []byte("<CastXML format=\"1.4.0\"/>"), got.XML)
	assert.Equal(t, key, got.Key)

	other, err := c.Get(ctx, KeyFor("/src/a.hpp", []byte("int a;"), "other"))
	require.NoError(t, err)
	assert.Nil(t, other)

	replaced, err := c.Put(ctx, key, "0.6.3", []byte("<CastXML/>"))
	require.NoError(t, err)
	assert.NotEqual(t, put.ID, replaced.ID)

	got, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, replaced.ID, got.ID)
	assert.Equal(t, "0.6.3", got.CastXMLVersion)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)
}

func TestPrune(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := openTest(t, WithClock(clk.now))

	stale := KeyFor("/src/stale.hpp", []byte("a"), "sig")
	fresh := KeyFor("/src/fresh.hpp", []byte("b"), "sig")
	_, err := c.Put(ctx, stale, "", []byte("<stale/>"))
	require.NoError(t, err)
	_, err = c.Put(ctx, fresh, "", []byte("<fresh/>"))
	require.NoError(t, err)

	clk.advance(10 * 24 * time.Hour)
	_, err = c.Get(ctx, fresh)
	require.NoError(t, err)

	n, err := c.PruneOlderThan(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = c.PruneOlderThan(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	e, err := c.Get(ctx, stale)
	require.NoError(t, err)
	assert.Nil(t, e)
	e, err = c.Get(ctx, fresh)
	require.NoError(t, err)
	assert.NotNil(t, e)
}

func TestInvalidateClearStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := openTest(t)

	for _, k := range []Key{
		KeyFor("/src/a.hpp", []byte("1"), "sig"),
		KeyFor("/src/a.hpp", []byte("2"), "sig"),
		KeyFor("/src/b.hpp", []byte("1"), "sig"),
	} {
		_, err := c.Put(ctx, k, "", []byte("12345"))
		require.NoError(t, err)
	}

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Entries: 3, Headers: 2, Bytes: 15}, stats)

	n, err := c.Invalidate(ctx, "/src/a.hpp")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = c.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stats, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}
