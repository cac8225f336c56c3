package models

import (
	"slices"
	"time"
)

// PlaceholderShowName is stored for favorites created from a bare show ID.
const PlaceholderShowName = "Placeholder"

// FavoriteRecord is a persisted favorite. Records created by id alone carry a
// placeholder name and PendingEnrichment set until details are fetched.
type FavoriteRecord struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	CreatedAt         time.Time `json:"createdAt"`
	PendingEnrichment bool      `json:"pendingEnrichment"`
}

// NewPlaceholderFavorite builds the minimal record stored when favoriting by id.
func NewPlaceholderFavorite(id int) FavoriteRecord {
	return FavoriteRecord{
		ID:                id,
		Name:              PlaceholderShowName,
		CreatedAt:         time.Now().UTC(),
		PendingEnrichment: true,
	}
}

// FavoriteIDSet is an immutable snapshot of favorited show IDs.
type FavoriteIDSet struct {
	ids map[int]struct{}
}

// NewFavoriteIDSet builds a set from the given IDs.
func NewFavoriteIDSet(ids ...int) FavoriteIDSet {
	set := FavoriteIDSet{ids: make(map[int]struct{}, len(ids))}
	for _, id := range ids {
		set.ids[id] = struct{}{}
	}
	return set
}

// Contains reports whether id is favorited. The zero value contains nothing.
func (s FavoriteIDSet) Contains(id int) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of favorited IDs.
func (s FavoriteIDSet) Len() int {
	return len(s.ids)
}

// IDs returns the favorited IDs in ascending order.
func (s FavoriteIDSet) IDs() []int {
	ids := make([]int, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Equal reports whether both sets hold the same IDs.
func (s FavoriteIDSet) Equal(other FavoriteIDSet) bool {
	if len(s.ids) != len(other.ids) {
		return false
	}
	for id := range s.ids {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}
