package cache

import "time"

// Entry is one cached catalog response body and the time it was fetched.
type Entry struct {
	Body     []byte
	StoredAt time.Time
}

// Age reports how old the entry is at now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// EvictCallback is called when a bounded provider drops an entry.
type EvictCallback func(key Key, entry Entry)

// Cache keeps catalog responses for the retention window it was built with.
// Whether an entry is still fresh is decided by the caller from StoredAt.
type Cache interface {
	// Get returns the entry for key, or false when it is absent or expired.
	Get(key Key) (Entry, bool)

	// Set stores entry under key, replacing any previous one.
	Set(key Key, entry Entry)

	// Delete drops key. Deleting an absent key is a no-op.
	Delete(key Key)

	// Contains reports whether key is stored without touching recency.
	Contains(key Key) bool

	Len() int

	Close() error
}
