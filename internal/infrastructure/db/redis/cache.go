package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"

	"github.com/ankatech/investor-admin/internal/infrastructure/cache"
)

const cachePrefix = "anka:cache:"

// CacheStore is a cache.Store shared between service instances. Entries are
// JSON envelopes compressed with zstd and expire in Redis with their TTL.
type CacheStore struct {
	client *redis.Client
	enc    *zstd.Encoder
	dec    *zstd.Decoder
}

var _ cache.Store = (*CacheStore)(nil)

func NewCacheStore(client *redis.Client) (*CacheStore, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &CacheStore{client: client, enc: enc, dec: dec}, nil
}

func (s *CacheStore) Get(ctx context.Context, key string) (cache.Entry, bool, error) {
	raw, err := s.client.Get(ctx, cachePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return cache.Entry{}, false, nil
	}
	if err != nil {
		return cache.Entry{}, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	plain, err := s.dec.DecodeAll(raw, nil)
	if err != nil {
		return cache.Entry{}, false, fmt.Errorf("cache decompress %s: %w", key, err)
	}
	var e cache.Entry
	if err := json.Unmarshal(plain, &e); err != nil {
		return cache.Entry{}, false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return e, true, nil
}

func (s *CacheStore) Set(ctx context.Context, key string, entry cache.Entry) error {
	plain, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	ttl := entry.TTL
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.client.Set(ctx, cachePrefix+key, s.enc.EncodeAll(plain, nil), ttl).Err()
}

func (s *CacheStore) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = cachePrefix + k
	}
	return s.client.Del(ctx, prefixed...).Err()
}

// Close releases the compression state.
func (s *CacheStore) Close() {
	s.enc.Close()
	s.dec.Close()
}
