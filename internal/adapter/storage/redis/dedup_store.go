package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DedupStore implements ports.EventDedupCache. It is a fast path only: the
// authoritative duplicate check is the locked transaction row in Postgres.
type DedupStore struct {
	client *goredis.Client
	prefix string
}

// NewDedupStore creates a new Redis-backed webhook dedup cache.
func NewDedupStore(client *goredis.Client) *DedupStore {
	return &DedupStore{
		client: client,
		prefix: "webhook:processed:",
	}
}

// Seen reports whether the reference was already fully processed.
func (s *DedupStore) Seen(ctx context.Context, reference string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+reference).Result()
	if err != nil {
		return false, fmt.Errorf("redis dedup check: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed records the reference after its atomic unit committed.
func (s *DedupStore) MarkProcessed(ctx context.Context, reference string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+reference, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis dedup mark: %w", err)
	}
	return nil
}
