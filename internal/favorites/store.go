// Package favorites persists favorited shows and publishes the favorite set
// to observers as it changes.
package favorites

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/Belphemur/ShowFeed/internal/apperrors"
	"github.com/Belphemur/ShowFeed/internal/broadcast"
	"github.com/Belphemur/ShowFeed/internal/config"
	"github.com/Belphemur/ShowFeed/internal/metrics"
	"github.com/Belphemur/ShowFeed/internal/models"
	bolt "go.etcd.io/bbolt"
)

var bucketFavorites = []byte("favorites")

// Store implements the local favorites store on top of BoltDB.
//
// All records are mirrored in memory; the set of favorites is small and every
// read is served from the mirror. Writes hit the database first and are only
// published once committed.
type Store struct {
	db *bolt.DB // nil in memory-only mode

	mu      sync.Mutex // serializes mutations and their publication
	records map[int]models.FavoriteRecord

	ids  *broadcast.Latest[models.FavoriteIDSet]
	list *broadcast.Latest[[]models.FavoriteRecord]
}

// Open opens the favorites database at path, creating it when missing.
// An empty path keeps favorites in memory only.
func Open(path string) (*Store, error) {
	s := &Store{records: make(map[int]models.FavoriteRecord)}

	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, &apperrors.StorageError{Op: "open", Err: err}
			}
		}

		db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
		if err != nil {
			return nil, &apperrors.StorageError{Op: "open", Err: fmt.Errorf("failed to open bolt db: %w", err)}
		}
		if err := s.load(db); err != nil {
			db.Close()
			return nil, err
		}
		s.db = db
	}

	s.ids = broadcast.New(s.idSetLocked())
	s.list = broadcast.New(s.listLocked())

	logger := config.GetLogger()
	logger.Info().Str("path", path).Int("favorites", len(s.records)).Msg("Favorites store opened")
	return s, nil
}

// load creates the bucket and reads every record into the mirror.
func (s *Store) load(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketFavorites)
		if err != nil {
			return &apperrors.StorageError{Op: "open", Err: err}
		}
		return b.ForEach(func(k, v []byte) error {
			var rec models.FavoriteRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return &apperrors.StorageError{Op: "load", ID: keyID(k), Err: err}
			}
			s.records[rec.ID] = rec
			return nil
		})
	})
}

func idKey(id int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(int64(id)))
	return key
}

func keyID(key []byte) int {
	if len(key) != 8 {
		return 0
	}
	return int(int64(binary.BigEndian.Uint64(key)))
}

// Save stores record, replacing any record with the same ID.
func (s *Store) Save(ctx context.Context, record models.FavoriteRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := config.GetLogger()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		data, err := json.Marshal(record)
		if err != nil {
			metrics.FavoritesMutationsTotal.WithLabelValues("save", "error").Inc()
			return &apperrors.StorageError{Op: "save", ID: record.ID, Err: err}
		}
		err = s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketFavorites).Put(idKey(record.ID), data)
		})
		if err != nil {
			metrics.FavoritesMutationsTotal.WithLabelValues("save", "error").Inc()
			logger.Error().Err(err).Int("show_id", record.ID).Msg("Failed to save favorite")
			return &apperrors.StorageError{Op: "save", ID: record.ID, Err: err}
		}
	}

	_, existed := s.records[record.ID]
	s.records[record.ID] = record
	metrics.FavoritesMutationsTotal.WithLabelValues("save", "success").Inc()
	logger.Info().Int("show_id", record.ID).Str("name", record.Name).Bool("pending_enrichment", record.PendingEnrichment).Msg("Favorite saved")

	if !existed {
		s.ids.Publish(s.idSetLocked())
	}
	s.list.Publish(s.listLocked())
	return nil
}

// Remove deletes the favorite with the given ID. Removing an ID that is not
// favorited succeeds without publishing anything.
func (s *Store) Remove(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := config.GetLogger()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return nil
	}

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketFavorites).Delete(idKey(id))
		})
		if err != nil {
			metrics.FavoritesMutationsTotal.WithLabelValues("remove", "error").Inc()
			logger.Error().Err(err).Int("show_id", id).Msg("Failed to remove favorite")
			return &apperrors.StorageError{Op: "remove", ID: id, Err: err}
		}
	}

	delete(s.records, id)
	metrics.FavoritesMutationsTotal.WithLabelValues("remove", "success").Inc()
	logger.Info().Int("show_id", id).Msg("Favorite removed")

	s.ids.Publish(s.idSetLocked())
	s.list.Publish(s.listLocked())
	return nil
}

// Get returns the favorite with the given ID, or an *apperrors.ErrNotFound.
func (s *Store) Get(id int) (models.FavoriteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return models.FavoriteRecord{}, apperrors.NewFavoriteNotFoundError(id)
	}
	return rec, nil
}

// List returns every favorite ordered by show ID.
func (s *Store) List() []models.FavoriteRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

// IDs returns the current favorite set.
func (s *Store) IDs() models.FavoriteIDSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idSetLocked()
}

// ObserveFavoriteIDs streams the favorite set: the current set first, then
// the set after every committed change. The channel is closed when ctx is
// done or the store is closed.
func (s *Store) ObserveFavoriteIDs(ctx context.Context) <-chan models.FavoriteIDSet {
	return s.ids.Subscribe(ctx)
}

// ObserveFavorites streams the ordered favorite records with the same
// semantics as ObserveFavoriteIDs.
func (s *Store) ObserveFavorites(ctx context.Context) <-chan []models.FavoriteRecord {
	return s.list.Subscribe(ctx)
}

// Close closes all observer channels and the database.
func (s *Store) Close() error {
	s.ids.Close()
	s.list.Close()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) idSetLocked() models.FavoriteIDSet {
	return models.NewFavoriteIDSet(slices.Collect(maps.Keys(s.records))...)
}

func (s *Store) listLocked() []models.FavoriteRecord {
	ids := slices.Sorted(maps.Keys(s.records))
	list := make([]models.FavoriteRecord, 0, len(ids))
	for _, id := range ids {
		list = append(list, s.records[id])
	}
	return list
}
