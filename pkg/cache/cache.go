// Package cache keeps decoded posterior samples so repeated predictions do
// not re-read or re-fetch the model output.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/richard-senior/knockouts/internal/logger"
	"github.com/richard-senior/knockouts/pkg/posterior"
)

// Entry is one cached posterior document
type Entry struct {
	Samples *posterior.Samples
	// Version identifies the state of the source when the samples were
	// loaded, see posterior.Versioned. Empty when the source cannot tell.
	Version     string
	Fingerprint string
}

// NewEntry wraps samples with their fingerprint
func NewEntry(samples *posterior.Samples, version string) (*Entry, error) {
	if samples == nil {
		return nil, fmt.Errorf("cannot cache nil samples")
	}
	fingerprint, err := samples.Fingerprint()
	if err != nil {
		return nil, err
	}
	return &Entry{Samples: samples, Version: version, Fingerprint: fingerprint}, nil
}

// Cache stores entries by key
type Cache interface {
	Get(key string) (*Entry, bool, error)
	Put(key string, entry *Entry) error
}

// MemoryCache is a Cache held in process memory
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*Entry)}
}

func (c *MemoryCache) Get(key string) (*Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok, nil
}

func (c *MemoryCache) Put(key string, entry *Entry) error {
	if entry == nil || entry.Samples == nil {
		return fmt.Errorf("cannot cache nil samples for %s", key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
	return nil
}

// CachedSource loads from the wrapped Source once and serves later loads
// from the cache, keyed by the source name. A hit is only trusted while the
// source reports the same version it had when the entry was written.
type CachedSource struct {
	source  posterior.Source
	cache   Cache
	refresh bool
}

var _ posterior.Source = (*CachedSource)(nil)

func NewCachedSource(source posterior.Source, cache Cache) *CachedSource {
	return &CachedSource{source: source, cache: cache}
}

// WithRefresh makes every Load bypass the cache and rewrite the entry
func (c *CachedSource) WithRefresh(refresh bool) *CachedSource {
	c.refresh = refresh
	return c
}

func (c *CachedSource) Name() string {
	return c.source.Name()
}

// Load returns cached samples when they are still current. A cache read
// failure falls back to the underlying source, a write failure is logged and
// ignored.
func (c *CachedSource) Load(ctx context.Context) (*posterior.Samples, error) {
	key := c.source.Name()

	useCache := !c.refresh
	var version string
	if versioned, ok := c.source.(posterior.Versioned); ok {
		v, err := versioned.Version(ctx)
		if err != nil {
			logger.Warn("Could not check posterior version, bypassing cache", err)
			useCache = false
		}
		version = v
	}

	var previous *Entry
	if useCache {
		entry, ok, err := c.cache.Get(key)
		switch {
		case err != nil:
			logger.Warn("Posterior cache read failed, loading from source", err)
		case ok && entry.Version == version:
			logger.Debug("Posterior cache hit", key)
			return entry.Samples, nil
		case ok:
			logger.Info("Posterior changed since it was cached, reloading", key)
			previous = entry
		}
	}

	samples, err := c.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	entry, err := NewEntry(samples, version)
	if err != nil {
		logger.Warn("Failed to fingerprint posterior samples", err)
		return samples, nil
	}
	if previous != nil && previous.Fingerprint == entry.Fingerprint {
		logger.Debug("Reloaded posterior has the same content", key)
	}
	if err := c.cache.Put(key, entry); err != nil {
		logger.Warn("Failed to cache posterior samples", err)
	}
	return samples, nil
}
