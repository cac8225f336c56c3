package feed

import (
	"slices"

	"github.com/Belphemur/ShowFeed/internal/models"
)

// Result is one fetch outcome entering the fold: the demand it answers and
// the shows it produced, already flagged against the favorite set.
type Result struct {
	Page   int
	Query  string
	Search bool
	Failed bool
	Shows  []models.Show
}

// FailureResult is substituted for a fetch that failed. It folds into an
// empty, terminal page.
func FailureResult() Result {
	return Result{Page: models.NoMorePages, Failed: true, Shows: []models.Show{}}
}

// Equal reports whether two results would fold identically.
func (r Result) Equal(other Result) bool {
	return r.Page == other.Page &&
		r.Query == other.Query &&
		r.Search == other.Search &&
		r.Failed == other.Failed &&
		slices.Equal(r.Shows, other.Shows)
}

// ToShow maps a catalog show to a feed show.
func ToShow(raw models.RawShow, favorite bool) models.Show {
	return models.Show{
		ID:            raw.ID,
		Name:          raw.Name,
		Status:        raw.Status,
		PremieredDate: raw.PremieredDate,
		Rating:        raw.AverageRating(),
		ImageURL:      raw.OriginalImageURL(),
		Summary:       raw.Summary,
		IsFavorite:    favorite,
	}
}

// MapShows maps catalog shows in order, flagging those in favorites.
func MapShows(raw []models.RawShow, favorites models.FavoriteIDSet) []models.Show {
	shows := make([]models.Show, len(raw))
	for i, r := range raw {
		shows[i] = ToShow(r, favorites.Contains(r.ID))
	}
	return shows
}

// Accumulate folds r into prev:
//
//   - a failure replaces the list with nothing and ends pagination,
//   - a search replaces the list and resets to DefaultPage,
//   - DefaultPage replaces the list,
//   - any later page is appended.
//
// prev is never modified.
func Accumulate(prev models.ShowsPage, r Result) models.ShowsPage {
	switch {
	case r.Failed:
		return models.ShowsPage{Shows: []models.Show{}, NextPage: models.NoMorePages}
	case r.Search:
		return models.ShowsPage{Shows: slices.Clone(r.Shows), NextPage: models.DefaultPage}
	case r.Page == models.DefaultPage:
		return models.ShowsPage{Shows: slices.Clone(r.Shows), NextPage: r.Page + 1}
	default:
		shows := make([]models.Show, 0, len(prev.Shows)+len(r.Shows))
		shows = append(shows, prev.Shows...)
		shows = append(shows, r.Shows...)
		return models.ShowsPage{Shows: shows, NextPage: r.Page + 1}
	}
}

// Reflag recomputes IsFavorite for every show of page. It returns page
// unchanged and false when no flag differs.
func Reflag(page models.ShowsPage, favorites models.FavoriteIDSet) (models.ShowsPage, bool) {
	changed := false
	shows := make([]models.Show, len(page.Shows))
	for i, s := range page.Shows {
		fav := favorites.Contains(s.ID)
		if fav != s.IsFavorite {
			changed = true
			s.IsFavorite = fav
		}
		shows[i] = s
	}
	if !changed {
		return page, false
	}
	return models.ShowsPage{Shows: shows, NextPage: page.NextPage}, true
}
