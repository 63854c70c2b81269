package pipeline

import (
	"context"
	"sync"

	"github.com/siherrmann/nerval/model"
	"golang.org/x/sync/singleflight"
)

// DocumentCache loads each document of a run at most once.
// It is created per run and shared by the workers of that run.
type DocumentCache struct {
	source  DocumentSource
	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	text string
	err  error
}

// NewDocumentCache creates an empty cache in front of source
func NewDocumentCache(source DocumentSource) *DocumentCache {
	return &DocumentCache{
		source:  source,
		entries: map[string]cacheEntry{},
	}
}

// Load returns the text of doc, reading it from the source on first use.
// Concurrent callers for the same document share the single load.
// Failed loads are cached as well.
func (c *DocumentCache) Load(ctx context.Context, doc *model.Document) (string, error) {
	key := doc.Key()
	if entry, ok := c.lookup(key); ok {
		return entry.text, entry.err
	}

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		if entry, ok := c.lookup(key); ok {
			return entry, nil
		}
		text, err := c.source.LoadDocument(ctx, doc)
		entry := cacheEntry{text: text, err: err}
		c.mu.Lock()
		c.entries[key] = entry
		c.mu.Unlock()
		return entry, nil
	})
	entry := v.(cacheEntry)
	return entry.text, entry.err
}

func (c *DocumentCache) lookup(key string) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// Len returns the number of cached documents
func (c *DocumentCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
