package feed

import (
	"context"

	"github.com/Belphemur/ShowFeed/internal/config"
	"github.com/Belphemur/ShowFeed/internal/models"
)

// FavoritesStore is the local favorites store as used by the repository.
type FavoritesStore interface {
	FavoriteSource
	Save(ctx context.Context, record models.FavoriteRecord) error
	Remove(ctx context.Context, id int) error
	Get(id int) (models.FavoriteRecord, error)
	ObserveFavorites(ctx context.Context) <-chan []models.FavoriteRecord
}

// pageInvalidator is implemented by sources that cache catalog pages.
type pageInvalidator interface {
	Invalidate(page int)
}

// Repository is the entry point of the show feed: it owns the coordinator
// and routes favorite mutations to the store.
type Repository struct {
	source      ShowSource
	favorites   FavoritesStore
	coordinator *Coordinator
}

// NewRepository wires a coordinator over source and favorites.
func NewRepository(source ShowSource, favorites FavoritesStore, opts Options) *Repository {
	return &Repository{
		source:      source,
		favorites:   favorites,
		coordinator: NewCoordinator(source, favorites, opts),
	}
}

// Run runs the coordinator until ctx is done.
func (r *Repository) Run(ctx context.Context) error {
	return r.coordinator.Run(ctx)
}

// Shows streams the accumulated show page.
func (r *Repository) Shows(ctx context.Context) <-chan models.ShowsPage {
	return r.coordinator.Observe(ctx)
}

// Current returns the latest accumulated page.
func (r *Repository) Current() models.ShowsPage {
	return r.coordinator.Current()
}

// RequestMore asks the feed for page; negative pages are ignored.
func (r *Repository) RequestMore(page int) {
	r.coordinator.RequestMore(page)
}

// Search replaces the feed with the shows matching query.
func (r *Repository) Search(query string) {
	r.coordinator.Search(query)
}

// LoadNextPage requests the page after the current one. It does nothing and
// returns false once pagination has ended.
func (r *Repository) LoadNextPage() bool {
	current := r.coordinator.Current()
	if !current.HasMore() {
		return false
	}
	r.coordinator.RequestMore(current.NextPage)
	return true
}

// Refresh reloads the first page, bypassing the source's page cache.
func (r *Repository) Refresh() {
	if inv, ok := r.source.(pageInvalidator); ok {
		inv.Invalidate(models.DefaultPage)
	}
	r.coordinator.RequestMore(models.DefaultPage)
}

// FavoriteShow stores a placeholder favorite for id. A show that is already
// a favorite keeps its record. The feed picks up the change through the
// store's favorite set.
func (r *Repository) FavoriteShow(ctx context.Context, id int) error {
	if _, err := r.favorites.Get(id); err == nil {
		return nil
	}
	return r.favorites.Save(ctx, models.NewPlaceholderFavorite(id))
}

// RemoveFromFavorites deletes the favorite for id. Removing a show that is
// not a favorite succeeds.
func (r *Repository) RemoveFromFavorites(ctx context.Context, id int) error {
	return r.favorites.Remove(ctx, id)
}

// FavoriteShows streams the favorites as shows, all flagged as favorite.
// Like Shows, a slow reader only sees the latest list. The channel is closed
// when ctx is done or the store is closed.
func (r *Repository) FavoriteShows(ctx context.Context) <-chan []models.Show {
	in := r.favorites.ObserveFavorites(ctx)
	out := make(chan []models.Show, 1)

	go func() {
		defer close(out)
		logger := config.GetLogger()
		for records := range in {
			shows := make([]models.Show, len(records))
			for i, rec := range records {
				shows[i] = models.Show{ID: rec.ID, Name: rec.Name, IsFavorite: true}
			}

			select {
			case out <- shows:
				continue
			default:
			}
			select {
			case <-out:
				logger.Debug().Msg("Favorite shows reader is behind, replacing unread list")
			default:
			}
			out <- shows
		}
	}()

	return out
}
