package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/registry-scraper/internal/repository"
)

const seenKeyPrefix = "scraper:run:"

// SeenIndexImpl keeps the run-local dedup set in Redis so that it can be
// inspected while a run is in progress. Each run gets its own set, which
// expires after ttl.
type SeenIndexImpl struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

var _ repository.SeenIndex = (*SeenIndexImpl)(nil)

// NewSeenIndex creates an index scoped to runID.
func NewSeenIndex(client *redis.Client, runID string, ttl time.Duration) *SeenIndexImpl {
	return &SeenIndexImpl{
		client: client,
		key:    fmt.Sprintf("%s%s:seen", seenKeyPrefix, runID),
		ttl:    ttl,
	}
}

// Key returns the Redis key of the set.
func (r *SeenIndexImpl) Key() string {
	return r.key
}

// Seen checks membership with SISMEMBER.
func (r *SeenIndexImpl) Seen(ctx context.Context, registryID string) (bool, error) {
	return r.client.SIsMember(ctx, r.key, registryID).Result()
}

// MarkSeen adds the id and refreshes the expiry in one round trip. A
// non-positive ttl leaves the set without expiry, since EXPIRE with zero
// would delete it.
func (r *SeenIndexImpl) MarkSeen(ctx context.Context, registryID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, r.key, registryID)
		if r.ttl > 0 {
			pipe.Expire(ctx, r.key, r.ttl)
		}
		return nil
	})
	return err
}

// Clear removes the run's set.
func (r *SeenIndexImpl) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

// Ping checks the connection.
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}
