package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "showfeed:"
	redisOpTimeout   = 2 * time.Second
	redisScanBatch   = 100

	// storedAtSize is the header in front of every redis value: the fetch
	// time in unix milliseconds, big-endian.
	storedAtSize = 8
)

func init() {
	Register("redis", newRedisCache)
}

// redisCache stores each entry under prefix+Key.String() with a PX expiry of
// TTL. Capacity is the server's maxmemory policy: Size is not enforced and
// OnEvict never fires.
type redisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	cfg    ProviderConfig
}

func newRedisCache(cfg ProviderConfig) (Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddress, err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisCache{rdb: rdb, ttl: cfg.TTL, prefix: prefix, cfg: cfg}, nil
}

func encodeEntry(e Entry) []byte {
	buf := make([]byte, 0, storedAtSize+len(e.Body))
	buf = binary.BigEndian.AppendUint64(buf, uint64(e.StoredAt.UnixMilli()))
	return append(buf, e.Body...)
}

func decodeEntry(raw []byte) (Entry, error) {
	if len(raw) < storedAtSize {
		return Entry{}, fmt.Errorf("cache value too short (%d bytes)", len(raw))
	}
	ms := int64(binary.BigEndian.Uint64(raw[:storedAtSize]))
	return Entry{Body: raw[storedAtSize:], StoredAt: time.UnixMilli(ms)}, nil
}

func (r *redisCache) redisKey(k Key) string {
	return r.prefix + k.String()
}

func (r *redisCache) logError(op string, key Key, err error) {
	if r.cfg.Logger != nil {
		r.cfg.Logger.Error().Err(err).Str("op", op).Stringer("key", key).Msg("Redis cache operation failed")
	}
}

func (r *redisCache) Get(key Key) (Entry, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	raw, err := r.rdb.Get(ctx, r.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false
	}
	if err != nil {
		r.logError("get", key, err)
		return Entry{}, false
	}

	entry, err := decodeEntry(raw)
	if err != nil {
		r.logError("decode", key, err)
		return Entry{}, false
	}
	return entry, true
}

func (r *redisCache) Set(key Key, entry Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.rdb.Set(ctx, r.redisKey(key), encodeEntry(entry), r.ttl).Err(); err != nil {
		r.logError("set", key, err)
	}
}

func (r *redisCache) Delete(key Key) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.rdb.Del(ctx, r.redisKey(key)).Err(); err != nil {
		r.logError("delete", key, err)
	}
}

func (r *redisCache) Contains(key Key) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	n, err := r.rdb.Exists(ctx, r.redisKey(key)).Result()
	if err != nil {
		r.logError("exists", key, err)
		return false
	}
	return n > 0
}

// Len walks the prefix with SCAN. It is linear in the keyspace and only
// called when metrics are scraped.
func (r *redisCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	count := 0
	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", redisScanBatch).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		if r.cfg.Logger != nil {
			r.cfg.Logger.Error().Err(err).Str("op", "scan").Str("prefix", r.prefix).Msg("Redis cache operation failed")
		}
		return 0
	}
	return count
}

func (r *redisCache) Close() error {
	return r.rdb.Close()
}
