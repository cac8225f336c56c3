package models

// Show represents a catalog show as presented to subscribers of the feed.
// IsFavorite is derived from the favorites set when the page is folded and is
// never stored with the show.
type Show struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Status        string  `json:"status"`
	PremieredDate string  `json:"premieredDate"`
	Rating        float64 `json:"rating"`
	ImageURL      string  `json:"imageUrl"`
	Summary       string  `json:"summary"`
	IsFavorite    bool    `json:"isFavorite"`
}

// RawShow is a show as returned by the remote catalog.
type RawShow struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Status        string    `json:"status"`
	PremieredDate string    `json:"premiered"`
	Rating        RawRating `json:"rating"`
	Image         *RawImage `json:"image"`
	Summary       string    `json:"summary"`
}

// RawRating holds the catalog's audience rating; Average is null for unrated shows.
type RawRating struct {
	Average *float64 `json:"average"`
}

// RawImage holds the poster URLs of a show.
type RawImage struct {
	MediumURL   *string `json:"medium"`
	OriginalURL *string `json:"original"`
}

// RawSearchResult is one entry of a catalog search response.
type RawSearchResult struct {
	Score float64 `json:"score"`
	Info  RawShow `json:"show"`
}

// AverageRating returns the rating average, or 0 when the show is unrated.
func (r RawShow) AverageRating() float64 {
	if r.Rating.Average == nil {
		return 0
	}
	return *r.Rating.Average
}

// OriginalImageURL returns the full size poster URL, or "" when the show has none.
func (r RawShow) OriginalImageURL() string {
	if r.Image == nil || r.Image.OriginalURL == nil {
		return ""
	}
	return *r.Image.OriginalURL
}
