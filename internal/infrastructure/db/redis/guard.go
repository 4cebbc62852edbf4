package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultGuardTTL = time.Hour

// SubmissionGuard rejects reuse of form submission tokens.
// Key format: anka:submit:<token>
type SubmissionGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSubmissionGuard creates a guard wrapping the given Redis client.
func NewSubmissionGuard(client *redis.Client, ttl time.Duration) *SubmissionGuard {
	if ttl <= 0 {
		ttl = defaultGuardTTL
	}
	return &SubmissionGuard{client: client, ttl: ttl}
}

// Claim atomically marks token as used and reports whether this call was first.
func (g *SubmissionGuard) Claim(ctx context.Context, token string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(token), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("submission guard: %w", err)
	}
	return ok, nil
}

func (g *SubmissionGuard) key(token string) string {
	return "anka:submit:" + token
}
