// Package directory decorates a client/asset directory with the request-scoped
// cache.
package directory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ankatech/investor-admin/internal/api/metrics"
	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/internal/core/ports"
	"github.com/ankatech/investor-admin/internal/infrastructure/cache"
)

// fetchTimeout bounds an upstream fill shared by several requests. The fill
// outlives the request that started it.
const fetchTimeout = 30 * time.Second

// Cached serves directory reads from the Store found in the request context
// and invalidates the affected keys after successful writes. Concurrent misses
// on the same key share one upstream call.
//
// Every key carries a generation bumped by invalidation. A fill that started
// under an older generation never lands in the store, and readers arriving
// after a write never join a fill started before it.
type Cached struct {
	next  ports.Directory
	ttl   time.Duration
	group singleflight.Group
	log   zerolog.Logger
	now   func() time.Time

	mu   sync.Mutex
	gens map[string]uint64
}

var _ ports.Directory = (*Cached)(nil)

func NewCached(next ports.Directory, ttl time.Duration, log zerolog.Logger) *Cached {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Cached{next: next, ttl: ttl, log: log, now: time.Now, gens: make(map[string]uint64)}
}

func (c *Cached) ListClients(ctx context.Context) ([]domain.Client, error) {
	return load(ctx, c, cache.KeyClients, c.next.ListClients)
}

func (c *Cached) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	return load(ctx, c, cache.KeyAssets, c.next.ListAssets)
}

func (c *Cached) ListAssetsForClient(ctx context.Context, clientID string) ([]domain.Asset, error) {
	return load(ctx, c, cache.ClientAssetsKey(clientID), func(ctx context.Context) ([]domain.Asset, error) {
		return c.next.ListAssetsForClient(ctx, clientID)
	})
}

func (c *Cached) CreateClient(ctx context.Context, in domain.ClientInput) (*domain.Client, error) {
	created, err := c.next.CreateClient(ctx, in)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, cache.KeyClients)
	return created, nil
}

func (c *Cached) UpdateClient(ctx context.Context, id string, patch domain.ClientPatch) (*domain.Client, error) {
	updated, err := c.next.UpdateClient(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, cache.KeyClients, cache.ClientAssetsKey(id))
	return updated, nil
}

func (c *Cached) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key]
}

func (c *Cached) invalidate(ctx context.Context, keys ...string) {
	c.mu.Lock()
	for _, key := range keys {
		c.gens[key]++
	}
	c.mu.Unlock()

	if err := cache.FromContext(ctx).Invalidate(ctx, keys...); err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}

func load[T any](ctx context.Context, c *Cached, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	store := cache.FromContext(ctx)
	family := cache.Family(key)

	entry, ok, err := store.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	if ok && entry.Fresh(c.now()) {
		var items []T
		if err := json.Unmarshal(entry.Data, &items); err == nil {
			metrics.DirectoryCacheTotal.WithLabelValues(family, "hit").Inc()
			return items, nil
		}
		c.log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	}
	metrics.DirectoryCacheTotal.WithLabelValues(family, "miss").Inc()

	gen := c.generation(key)
	ch := c.group.DoChan(key+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		items, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		if c.generation(key) != gen {
			return items, nil
		}
		data, err := json.Marshal(items)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		if err := store.Set(fctx, key, cache.Entry{Data: data, FetchedAt: c.now(), TTL: c.ttl}); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
		// An invalidation between the check and Set may have run first.
		if c.generation(key) != gen {
			if err := store.Invalidate(fctx, key); err != nil {
				c.log.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
			}
		}
		return items, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]T), nil
	}
}
