package cache

import "strconv"

// Kind names the catalog endpoint a response came from.
type Kind string

const (
	KindShows  Kind = "shows"
	KindSearch Kind = "search"
)

// Key identifies a catalog response: a listing page or a search query.
type Key struct {
	Kind  Kind
	Page  int
	Query string
}

// PageKey is the key of the listing page with the given number.
func PageKey(page int) Key {
	return Key{Kind: KindShows, Page: page}
}

// SearchKey is the key of the results for an already normalized query.
func SearchKey(query string) Key {
	return Key{Kind: KindSearch, Query: query}
}

// String renders the key the way shared backends store it,
// "shows:page:N" or "search:<query>".
func (k Key) String() string {
	if k.Kind == KindSearch {
		return "search:" + k.Query
	}
	return "shows:page:" + strconv.Itoa(k.Page)
}
