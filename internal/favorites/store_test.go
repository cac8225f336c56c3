package favorites

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Belphemur/ShowFeed/internal/apperrors"
	"github.com/Belphemur/ShowFeed/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func nextIDs(t *testing.T, ch <-chan models.FavoriteIDSet) []int {
	t.Helper()
	select {
	case set, ok := <-ch:
		require.True(t, ok, "favorites channel closed")
		return set.IDs()
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for favorite ids")
		return nil
	}
}

func TestStore_SaveGetList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, "")

	require.NoError(t, s.Save(ctx, models.NewPlaceholderFavorite(7)))
	require.NoError(t, s.Save(ctx, models.FavoriteRecord{ID: 3, Name: "Lost"}))

	rec, err := s.Get(7)
	require.NoError(t, err)
	assert.Equal(t, models.PlaceholderShowName, rec.Name)
	assert.True(t, rec.PendingEnrichment)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, 3, list[0].ID)
	assert.Equal(t, 7, list[1].ID)
	assert.Equal(t, []int{3, 7}, s.IDs().IDs())
}

func TestStore_GetMissing(t *testing.T) {
	s := openTestStore(t, "")

	_, err := s.Get(42)
	require.Error(t, err)
	assert.ErrorIs(t, err, &apperrors.ErrNotFound{})
}

func TestStore_FavoriteThenRemoveLeavesSetUnchanged(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, "")
	require.NoError(t, s.Save(ctx, models.NewPlaceholderFavorite(1)))

	before := s.IDs()
	require.NoError(t, s.Save(ctx, models.NewPlaceholderFavorite(5)))
	require.NoError(t, s.Remove(ctx, 5))

	assert.True(t, before.Equal(s.IDs()))
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, "")

	require.NoError(t, s.Remove(ctx, 99))
	require.NoError(t, s.Save(ctx, models.NewPlaceholderFavorite(99)))
	require.NoError(t, s.Remove(ctx, 99))
	require.NoError(t, s.Remove(ctx, 99))
	assert.Equal(t, 0, s.IDs().Len())
}

func TestStore_CancelledContext(t *testing.T) {
	s := openTestStore(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Save(ctx, models.NewPlaceholderFavorite(1)), context.Canceled)
	assert.ErrorIs(t, s.Remove(ctx, 1), context.Canceled)
	assert.Equal(t, 0, s.IDs().Len())
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "favorites.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, models.NewPlaceholderFavorite(10)))
	require.NoError(t, s.Save(ctx, models.NewPlaceholderFavorite(20)))
	require.NoError(t, s.Remove(ctx, 10))
	require.NoError(t, s.Close())

	reopened := openTestStore(t, path)
	assert.Equal(t, []int{20}, reopened.IDs().IDs())

	rec, err := reopened.Get(20)
	require.NoError(t, err)
	assert.Equal(t, models.PlaceholderShowName, rec.Name)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestStore_CorruptRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.db")

	db, err := bolt.Open(path, 0o600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketFavorites)
		if err != nil {
			return err
		}
		return b.Put(idKey(3), []byte("{not json"))
	}))
	require.NoError(t, db.Close())

	_, err = Open(path)
	require.Error(t, err)

	var storageErr *apperrors.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "load", storageErr.Op)
	assert.Equal(t, 3, storageErr.ID)
}

func TestStore_ObserveFavoriteIDs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, "")
	require.NoError(t, s.Save(ctx, models.NewPlaceholderFavorite(2)))

	obsCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	ch := s.ObserveFavoriteIDs(obsCtx)

	assert.Equal(t, []int{2}, nextIDs(t, ch), "current set is replayed")

	require.NoError(t, s.Save(ctx, models.NewPlaceholderFavorite(4)))
	assert.Equal(t, []int{2, 4}, nextIDs(t, ch))

	require.NoError(t, s.Remove(ctx, 2))
	assert.Equal(t, []int{4}, nextIDs(t, ch))

	// Re-saving an existing favorite does not change the set.
	require.NoError(t, s.Save(ctx, models.FavoriteRecord{ID: 4, Name: "Fargo"}))
	select {
	case set := <-ch:
		t.Fatalf("unexpected id set %v", set.IDs())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStore_ObserveFavorites(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, "")

	ch := s.ObserveFavorites(ctx)
	first := <-ch
	assert.Empty(t, first)

	require.NoError(t, s.Save(ctx, models.FavoriteRecord{ID: 8, Name: "Dark"}))
	got := <-ch
	require.Len(t, got, 1)
	assert.Equal(t, "Dark", got[0].Name)

	require.NoError(t, s.Save(ctx, models.FavoriteRecord{ID: 8, Name: "Dark (2017)"}))
	got = <-ch
	require.Len(t, got, 1)
	assert.Equal(t, "Dark (2017)", got[0].Name)
}

func TestStore_CloseClosesObservers(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)

	ch := s.ObserveFavoriteIDs(context.Background())
	<-ch
	require.NoError(t, s.Close())

	require.Eventually(t, func() bool {
		_, ok := <-ch
		return !ok
	}, time.Second, 5*time.Millisecond)
}
