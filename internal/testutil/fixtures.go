package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/Belphemur/ShowFeed/internal/models"
)

// Float64Ptr is a helper for creating *float64 values in tests
func Float64Ptr(v float64) *float64 {
	return &v
}

// StringPtr is a helper for creating *string values in tests
func StringPtr(v string) *string {
	return &v
}

// RawShow builds a catalog show with deterministic fields derived from id.
func RawShow(id int) models.RawShow {
	return models.RawShow{
		ID:            id,
		Name:          fmt.Sprintf("Show %d", id),
		Status:        "Running",
		PremieredDate: fmt.Sprintf("20%02d-01-01", id%100),
		Rating:        models.RawRating{Average: Float64Ptr(float64(id%10) + 0.5)},
		Image:         &models.RawImage{OriginalURL: StringPtr(fmt.Sprintf("https://static.example/%d.jpg", id))},
	}
}

// RawShows builds one RawShow per id, in order.
func RawShows(ids ...int) []models.RawShow {
	shows := make([]models.RawShow, len(ids))
	for i, id := range ids {
		shows[i] = RawShow(id)
	}
	return shows
}

// SearchResults wraps shows as search results with decreasing scores.
func SearchResults(shows ...models.RawShow) []models.RawSearchResult {
	results := make([]models.RawSearchResult, len(shows))
	for i, s := range shows {
		results[i] = models.RawSearchResult{Score: 1 / float64(i+1), Info: s}
	}
	return results
}

// ShowIDs returns the IDs of shows, in order.
func ShowIDs(shows []models.Show) []int {
	ids := make([]int, len(shows))
	for i, s := range shows {
		ids[i] = s.ID
	}
	return ids
}

// FavoriteFlags returns the IsFavorite flag of each show, in order.
func FavoriteFlags(shows []models.Show) []bool {
	flags := make([]bool, len(shows))
	for i, s := range shows {
		flags[i] = s.IsFavorite
	}
	return flags
}

// MustJSON marshals v and panics on error. Used to build catalog payloads for
// httptest servers.
func MustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
