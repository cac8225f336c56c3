package models

const (
	// DefaultPage is the first page of the catalog and the page a search resets to.
	DefaultPage = 0

	// NoMorePages marks a feed that must not be paginated further.
	NoMorePages = -1
)

// ShowsPage is the accumulated state of the feed.
type ShowsPage struct {
	Shows    []Show `json:"shows"`
	NextPage int    `json:"nextPage"`
}

// EmptyShowsPage is the state of a feed before its first emission.
func EmptyShowsPage() ShowsPage {
	return ShowsPage{Shows: []Show{}, NextPage: DefaultPage}
}

// HasMore reports whether another page may be requested.
func (p ShowsPage) HasMore() bool {
	return p.NextPage != NoMorePages
}

// DemandKind distinguishes the two kinds of feed demand.
type DemandKind int

const (
	DemandLoadPage DemandKind = iota
	DemandSearch
)

// String returns the metric label for the kind.
func (k DemandKind) String() string {
	switch k {
	case DemandLoadPage:
		return "load_page"
	case DemandSearch:
		return "search"
	default:
		return "unknown"
	}
}

// Demand is a request submitted to the feed: either a page load or a search.
type Demand struct {
	Kind  DemandKind
	Page  int
	Query string
}

// LoadPage builds a page demand.
func LoadPage(page int) Demand {
	return Demand{Kind: DemandLoadPage, Page: page}
}

// Search builds a search demand. Searches always target DefaultPage.
func Search(query string) Demand {
	return Demand{Kind: DemandSearch, Page: DefaultPage, Query: query}
}

// IsSearch reports whether the demand is a search.
func (d Demand) IsSearch() bool {
	return d.Kind == DemandSearch
}
