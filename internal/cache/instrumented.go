package cache

// instrumentedCache counts lookups, invalidations and written bytes for one
// cache group.
type instrumentedCache struct {
	inner Cache
	group string
}

func newInstrumentedCache(inner Cache, group string) *instrumentedCache {
	entries.track(group, inner.Len)
	return &instrumentedCache{inner: inner, group: group}
}

func (c *instrumentedCache) Get(key Key) (Entry, bool) {
	entry, ok := c.inner.Get(key)
	if ok {
		HitsTotal.WithLabelValues(c.group, string(key.Kind)).Inc()
	} else {
		MissesTotal.WithLabelValues(c.group, string(key.Kind)).Inc()
	}
	return entry, ok
}

func (c *instrumentedCache) Set(key Key, entry Entry) {
	EntryBytes.WithLabelValues(c.group, string(key.Kind)).Observe(float64(len(entry.Body)))
	c.inner.Set(key, entry)
}

func (c *instrumentedCache) Delete(key Key) {
	InvalidationsTotal.WithLabelValues(c.group, string(key.Kind)).Inc()
	c.inner.Delete(key)
}

func (c *instrumentedCache) Contains(key Key) bool {
	return c.inner.Contains(key)
}

func (c *instrumentedCache) Len() int {
	return c.inner.Len()
}

func (c *instrumentedCache) Close() error {
	entries.untrack(c.group)
	return c.inner.Close()
}
