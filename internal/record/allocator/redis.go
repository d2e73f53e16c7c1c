package allocator

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultSequenceKey is the Redis key holding the last issued identifier.
const DefaultSequenceKey = "roster:users:seq"

// raiseTo sets the counter to ARGV[1] only if that is larger than the current
// value, so seeding never moves the sequence backwards.
var raiseTo = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if floor > current then
	redis.call('SET', KEYS[1], floor)
	return floor
end
return current
`)

// RedisSequence allocates identifiers with an atomic INCR. Concurrent creates
// never receive the same value from it; duplicates can only appear if the
// counter falls behind the store (for example after a Redis flush), which is
// why Seed runs at startup and the store constraint still applies.
type RedisSequence struct {
	client redis.Cmdable
	key    string
}

type RedisOption func(*RedisSequence)

func WithKey(key string) RedisOption {
	return func(r *RedisSequence) {
		if key != "" {
			r.key = key
		}
	}
}

func NewRedisSequence(client redis.Cmdable, opts ...RedisOption) *RedisSequence {
	r := &RedisSequence{client: client, key: DefaultSequenceKey}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisSequence) Next(ctx context.Context) (int64, error) {
	id, err := r.client.Incr(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", r.key, err)
	}
	return id, nil
}

// Seed raises the counter to at least floor, typically the store's current
// max identifier, and returns the resulting counter value.
func (r *RedisSequence) Seed(ctx context.Context, floor int64) (int64, error) {
	v, err := raiseTo.Run(ctx, r.client, []string{r.key}, floor).Int64()
	if err != nil {
		return 0, fmt.Errorf("seed %s: %w", r.key, err)
	}
	return v, nil
}

// SeedFromStore reads the store max and seeds the counter with it.
func (r *RedisSequence) SeedFromStore(ctx context.Context, store MaxFinder) (int64, error) {
	floor, err := NewStoreMax(store).Next(ctx)
	if err != nil {
		return 0, err
	}
	return r.Seed(ctx, floor-1)
}
