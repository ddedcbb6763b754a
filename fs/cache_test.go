package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/pagesnap"
	"github.com/fwojciec/pagesnap/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func sampleResult() *pagesnap.ArticleResult {
	return &pagesnap.ArticleResult{
		ID:        "abc123",
		URL:       "https://example.com/a",
		Domain:    "example.com",
		Title:     strPtr("T"),
		Query:     map[string]string{"url": "https://example.com/a"},
		ResultURI: "api://article/abc123",
	}
}

func TestCache_GetMissingKey(t *testing.T) {
	t.Parallel()

	cache := fs.NewCache(t.TempDir())

	_, ok := cache.Get(context.Background(), "nope", time.Hour)

	assert.False(t, ok)
}

func TestCache_PutThenGet(t *testing.T) {
	t.Parallel()

	cache := fs.NewCache(t.TempDir())

	require.NoError(t, cache.Put(context.Background(), "k1", sampleResult()))

	got, ok := cache.Get(context.Background(), "k1", time.Hour)
	require.True(t, ok)
	assert.Equal(t, sampleResult(), got)
}

func TestCache_PutOverwrites(t *testing.T) {
	t.Parallel()

	cache := fs.NewCache(t.TempDir())
	ctx := context.Background()

	first := sampleResult()
	require.NoError(t, cache.Put(ctx, "k1", first))

	second := sampleResult()
	second.Title = strPtr("Updated")
	require.NoError(t, cache.Put(ctx, "k1", second))

	got, ok := cache.Get(ctx, "k1", time.Hour)
	require.True(t, ok)
	assert.Equal(t, "Updated", *got.Title)
}

func TestCache_TTLBoundary(t *testing.T) {
	t.Parallel()

	storedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := storedAt
	cache := fs.NewCache(t.TempDir(), fs.WithClock(func() time.Time { return now }))
	ctx := context.Background()
	ttl := 60 * time.Second

	require.NoError(t, cache.Put(ctx, "k1", sampleResult()))

	// One second before expiry the entry is returned.
	now = storedAt.Add(ttl - time.Second)
	_, ok := cache.Get(ctx, "k1", ttl)
	assert.True(t, ok, "entry should be valid at t+T-1")

	// One second after expiry the entry reads as absent.
	now = storedAt.Add(ttl + time.Second)
	_, ok = cache.Get(ctx, "k1", ttl)
	assert.False(t, ok, "entry should be absent at t+T+1")
}

func TestCache_ExpiredEntryIsNotDeleted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Now()
	cache := fs.NewCache(dir, fs.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "k1", sampleResult()))

	now = now.Add(2 * time.Hour)
	_, ok := cache.Get(ctx, "k1", time.Hour)
	require.False(t, ok)

	// The stale file stays on disk by design.
	_, err := os.Stat(filepath.Join(dir, "k1"+fs.Ext))
	assert.NoError(t, err)
}

func TestCache_CorruptEntryReadsAsAbsent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad"+fs.Ext), []byte("{not json"), 0644))

	cache := fs.NewCache(dir)

	_, ok := cache.Get(context.Background(), "bad", time.Hour)

	assert.False(t, ok)
}

func TestCache_LegacySchemaReadsAsAbsent(t *testing.T) {
	t.Parallel()

	// A bare payload without the timestamp/data wrapper predates the
	// current schema and must be treated as expired, not crash.
	dir := t.TempDir()
	legacy := []byte(`{"id":"abc","url":"https://example.com","title":"old"}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old"+fs.Ext), legacy, 0644))

	cache := fs.NewCache(dir)

	_, ok := cache.Get(context.Background(), "old", time.Hour)

	assert.False(t, ok)
}

func TestCache_FractionalTimestampAccepted(t *testing.T) {
	t.Parallel()

	// Entries written by other producers carry float epoch seconds.
	dir := t.TempDir()
	entry := `{"timestamp": 1767225600.25, "data": {"id":"abc","url":"https://example.com"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"+fs.Ext), []byte(entry), 0644))

	now := time.Unix(1767225600, 0).Add(30 * time.Second)
	cache := fs.NewCache(dir, fs.WithClock(func() time.Time { return now }))

	got, ok := cache.Get(context.Background(), "f", time.Hour)
	require.True(t, ok)
	assert.Equal(t, "abc", got.ID)
}

func TestCache_Keys(t *testing.T) {
	t.Parallel()

	cache := fs.NewCache(t.TempDir())
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "k1", sampleResult()))
	require.NoError(t, cache.Put(ctx, "k2", sampleResult()))

	keys, err := cache.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"k1", "k2"}, keys)
}

func TestCache_KeysMissingDirectory(t *testing.T) {
	t.Parallel()

	cache := fs.NewCache(filepath.Join(t.TempDir(), "never-created"))

	keys, err := cache.Keys()

	require.NoError(t, err)
	assert.Empty(t, keys)
}
