package feed

import (
	"context"
	"testing"
	"time"

	"github.com/Belphemur/ShowFeed/internal/favorites"
	"github.com/Belphemur/ShowFeed/internal/models"
	"github.com/Belphemur/ShowFeed/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRepository(t *testing.T, source *testutil.FakeSource) (*Repository, <-chan models.ShowsPage) {
	t.Helper()

	store, err := favorites.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	repo := NewRepository(source, store, Options{Debounce: testDebounce})
	ctx, cancel := context.WithCancel(context.Background())
	pages := repo.Shows(ctx)
	<-pages

	done := make(chan struct{})
	go func() {
		_ = repo.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return repo, pages
}

func TestRepository_LoadNextPageUntilExhausted(t *testing.T) {
	source := testutil.NewFakeSource()
	source.SetPage(0, testutil.RawShows(1, 2))
	source.SetPage(1, testutil.RawShows(3))
	repo, pages := startRepository(t, source)

	require.True(t, repo.LoadNextPage())
	testutil.WaitForPage(t, pages, waitTimeout, func(p models.ShowsPage) bool { return p.NextPage == 1 })

	require.True(t, repo.LoadNextPage())
	page := testutil.WaitForPage(t, pages, waitTimeout, func(p models.ShowsPage) bool { return p.NextPage == 2 })
	assert.Equal(t, []int{1, 2, 3}, testutil.ShowIDs(page.Shows))

	// Page 2 is past the end of the catalog.
	require.True(t, repo.LoadNextPage())
	testutil.WaitForPage(t, pages, waitTimeout, func(p models.ShowsPage) bool { return p.NextPage == models.NoMorePages })

	assert.False(t, repo.LoadNextPage(), "no demand once pagination has ended")
	assert.Len(t, source.Calls(), 3)
}

func TestRepository_RefreshInvalidatesFirstPage(t *testing.T) {
	source := testutil.NewFakeSource()
	source.SetPage(0, testutil.RawShows(1))
	repo, pages := startRepository(t, source)

	repo.RequestMore(0)
	testutil.WaitForPage(t, pages, waitTimeout, func(p models.ShowsPage) bool { return p.NextPage == 1 })

	source.SetPage(0, testutil.RawShows(1, 5))
	repo.Refresh()
	page := testutil.WaitForPage(t, pages, waitTimeout, func(p models.ShowsPage) bool { return len(p.Shows) == 2 })

	assert.Equal(t, []int{1, 5}, testutil.ShowIDs(page.Shows))
	assert.Equal(t, []int{models.DefaultPage}, source.Invalidated())
}

func TestRepository_SearchThenFavorite(t *testing.T) {
	source := testutil.NewFakeSource()
	source.SetSearch("dome", testutil.RawShows(1, 2))
	repo, pages := startRepository(t, source)
	ctx := context.Background()

	repo.Search("dome")
	page := testutil.NextPage(t, pages, waitTimeout)
	require.Equal(t, []bool{false, false}, testutil.FavoriteFlags(page.Shows))

	require.NoError(t, repo.FavoriteShow(ctx, 1))
	page = testutil.NextPage(t, pages, waitTimeout)
	assert.Equal(t, []bool{true, false}, testutil.FavoriteFlags(page.Shows))

	require.NoError(t, repo.RemoveFromFavorites(ctx, 1))
	page = testutil.NextPage(t, pages, waitTimeout)
	assert.Equal(t, []bool{false, false}, testutil.FavoriteFlags(page.Shows))
}

func TestRepository_FavoriteThenRemoveLeavesSetUnchanged(t *testing.T) {
	store, err := favorites.Open("")
	require.NoError(t, err)
	defer store.Close()

	repo := NewRepository(testutil.NewFakeSource(), store, Options{})
	ctx := context.Background()
	require.NoError(t, repo.FavoriteShow(ctx, 1))

	before := store.IDs()
	require.NoError(t, repo.FavoriteShow(ctx, 5))
	require.NoError(t, repo.RemoveFromFavorites(ctx, 5))

	assert.True(t, before.Equal(store.IDs()))
	assert.NoError(t, repo.RemoveFromFavorites(ctx, 5), "removal is idempotent")
}

func TestRepository_FavoriteShowKeepsExistingRecord(t *testing.T) {
	store, err := favorites.Open("")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	enriched := models.FavoriteRecord{ID: 82, Name: "Game of Thrones", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Save(ctx, enriched))

	repo := NewRepository(testutil.NewFakeSource(), store, Options{})
	require.NoError(t, repo.FavoriteShow(ctx, 82))

	got, err := store.Get(82)
	require.NoError(t, err)
	assert.Equal(t, "Game of Thrones", got.Name)
	assert.False(t, got.PendingEnrichment)
}

func TestRepository_FavoriteShows(t *testing.T) {
	store, err := favorites.Open("")
	require.NoError(t, err)
	defer store.Close()

	repo := NewRepository(testutil.NewFakeSource(), store, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	stream := repo.FavoriteShows(ctx)

	next := func() []models.Show {
		select {
		case shows, ok := <-stream:
			require.True(t, ok)
			return shows
		case <-time.After(waitTimeout):
			t.Fatal("timed out waiting for favorite shows")
			return nil
		}
	}

	assert.Empty(t, next())

	require.NoError(t, repo.FavoriteShow(context.Background(), 12))
	shows := next()
	require.Len(t, shows, 1)
	assert.Equal(t, models.Show{ID: 12, Name: models.PlaceholderShowName, IsFavorite: true}, shows[0])

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-stream:
			return !ok
		default:
			return false
		}
	}, waitTimeout, 5*time.Millisecond)
}
