package cache

import (
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

func init() {
	Register("memory", newMemoryCache)
}

// memoryCache is an in-process LRU bounded by Size whose entries expire
// after TTL.
type memoryCache struct {
	lru *lru.LRU[Key, Entry]
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	var onEvict lru.EvictCallback[Key, Entry]
	if cfg.OnEvict != nil {
		onEvict = func(key Key, entry Entry) { cfg.OnEvict(key, entry) }
	}
	return &memoryCache{lru: lru.NewLRU(cfg.Size, onEvict, cfg.TTL)}, nil
}

func (m *memoryCache) Get(key Key) (Entry, bool) { return m.lru.Get(key) }

func (m *memoryCache) Set(key Key, entry Entry) { m.lru.Add(key, entry) }

// Delete removes key. The library reports removals through the eviction
// callback, so invalidations count as evictions here.
func (m *memoryCache) Delete(key Key) { m.lru.Remove(key) }

func (m *memoryCache) Contains(key Key) bool { return m.lru.Contains(key) }

func (m *memoryCache) Len() int { return m.lru.Len() }

func (m *memoryCache) Close() error { return nil }
