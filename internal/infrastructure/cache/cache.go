// Package cache holds directory query results between requests. The active
// Store travels in the request context; callers invalidate keys explicitly
// after writes.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long an entry stays fresh unless configured otherwise.
const DefaultTTL = 5 * time.Minute

// Keys of the directory queries.
const (
	KeyClients = "clients"
	KeyAssets  = "assets"

	clientAssetsPrefix = "client-assets:"
)

// ClientAssetsKey is the key of the asset list of one client.
func ClientAssetsKey(clientID string) string {
	return clientAssetsPrefix + clientID
}

// Family returns the key without its per-record suffix, for metric labels.
func Family(key string) string {
	if len(key) > len(clientAssetsPrefix) && key[:len(clientAssetsPrefix)] == clientAssetsPrefix {
		return "client-assets"
	}
	return key
}

// Entry is one cached query result, stored encoded.
type Entry struct {
	Data      []byte        `json:"data"`
	FetchedAt time.Time     `json:"fetchedAt"`
	TTL       time.Duration `json:"ttl"`
}

// Fresh reports whether the entry may still be served at now.
func (e Entry) Fresh(now time.Time) bool {
	return now.Before(e.FetchedAt.Add(e.TTL))
}

// Store is a keyed entry store.
type Store interface {
	// Get returns the entry for key; ok is false when absent.
	Get(ctx context.Context, key string) (entry Entry, ok bool, err error)
	Set(ctx context.Context, key string, entry Entry) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Nop stores nothing; every lookup misses.
type Nop struct{}

func (Nop) Get(context.Context, string) (Entry, bool, error) { return Entry{}, false, nil }
func (Nop) Set(context.Context, string, Entry) error         { return nil }
func (Nop) Invalidate(context.Context, ...string) error      { return nil }
