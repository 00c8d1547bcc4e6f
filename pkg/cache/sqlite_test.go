package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/richard-senior/knockouts/pkg/posterior"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGenerateCreateTableSQL(t *testing.T) {
	entry := &samplesEntry{}
	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS posterior_samples (cache_key TEXT NOT NULL, source_version TEXT NOT NULL, fingerprint TEXT NOT NULL, payload TEXT NOT NULL, created_at INTEGER NOT NULL, PRIMARY KEY (cache_key))",
		generateCreateTableSQL(entry, entry.GetTableName()))
	assert.Equal(t,
		[]string{"CREATE INDEX IF NOT EXISTS idx_posterior_samples_fingerprint ON posterior_samples(fingerprint)"},
		generateIndexSQL(entry, entry.GetTableName()))
}

func TestSQLiteCacheRoundTrip(t *testing.T) {
	c := openTestSQLite(t)

	_, ok, err := c.Get("file:samples.json")
	require.NoError(t, err)
	assert.False(t, ok)

	written := testEntry(t, "1700000000-512")
	require.NoError(t, c.Put("file:samples.json", written))
	entry, ok, err := c.Get("file:samples.json")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, written, entry)
}

func TestSQLiteCacheOverwrite(t *testing.T) {
	c := openTestSQLite(t)

	require.NoError(t, c.Put("key", testEntry(t, "v1")))
	updated := testSamples()
	updated.Correlation = []float64{0.02}
	require.NoError(t, c.Put("key", &Entry{Samples: updated, Version: "v2"}))

	entry, ok, err := c.Get("key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{0.02}, entry.Samples.Correlation)
	assert.Equal(t, "v2", entry.Version)
	fingerprint, err := updated.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fingerprint, entry.Fingerprint)

	var count int
	require.NoError(t, c.db.QueryRow("SELECT COUNT(*) FROM posterior_samples").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSQLiteCacheDelete(t *testing.T) {
	c := openTestSQLite(t)
	require.NoError(t, c.Put("key", testEntry(t, "")))
	require.NoError(t, c.Delete("key"))

	_, ok, err := c.Get("key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteCachePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, c.Put("key", testEntry(t, "")))
	require.NoError(t, c.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	entry, ok, err := reopened.Get("key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testSamples().Teams, entry.Samples.Teams)
}

func writePosterior(t *testing.T, path string, correlation float64, modified time.Time) {
	t.Helper()
	samples := testSamples()
	samples.Correlation = []float64{correlation, correlation}
	data, err := json.Marshal(samples)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	require.NoError(t, os.Chtimes(path, modified, modified))
}

// loadThroughCache opens the database, loads the file through it and closes it again
func loadThroughCache(t *testing.T, dbPath, posteriorPath string, refresh bool) *posterior.Samples {
	t.Helper()
	c, err := OpenSQLite(dbPath)
	require.NoError(t, err)
	defer c.Close()

	samples, err := NewCachedSource(&posterior.FileSource{Path: posteriorPath}, c).
		WithRefresh(refresh).
		Load(context.Background())
	require.NoError(t, err)
	return samples
}

func TestPersistentCacheServesRefittedFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cache.db")
	posteriorPath := filepath.Join(dir, "posterior.json")
	fitted := time.Now().Add(-time.Hour)

	writePosterior(t, posteriorPath, 0.1, fitted)
	assert.Equal(t, []float64{0.1, 0.1}, loadThroughCache(t, dbPath, posteriorPath, false).Correlation)

	// refit in place
	writePosterior(t, posteriorPath, -0.2, fitted.Add(time.Minute))
	assert.Equal(t, []float64{-0.2, -0.2}, loadThroughCache(t, dbPath, posteriorPath, false).Correlation)
}

func TestPersistentCacheRefreshOverridesMatchingVersion(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cache.db")
	posteriorPath := filepath.Join(dir, "posterior.json")
	fitted := time.Now().Add(-time.Hour)

	writePosterior(t, posteriorPath, 0.1, fitted)
	loadThroughCache(t, dbPath, posteriorPath, false)

	// same size and modification time, so only a refresh can see the change
	writePosterior(t, posteriorPath, 0.3, fitted)
	assert.Equal(t, []float64{0.1, 0.1}, loadThroughCache(t, dbPath, posteriorPath, false).Correlation)
	assert.Equal(t, []float64{0.3, 0.3}, loadThroughCache(t, dbPath, posteriorPath, true).Correlation)
	assert.Equal(t, []float64{0.3, 0.3}, loadThroughCache(t, dbPath, posteriorPath, false).Correlation)
}
