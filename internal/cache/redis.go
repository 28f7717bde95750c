package cache

import (
	"context"
	"encoding/json"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/andrefarina/salesops-cli-go/internal/monthkey"
)

// Redis key layout
const (
	redisEntryPrefix  = "salesops:cache:"
	redisKeySet       = "salesops:cache:months"
	redisConsolidated = "salesops:cache:summary"
)

// RedisBackend stores month entries as JSON blobs in Redis, with a set of
// month keys for listing. Entries carry no Redis TTL; expiry is the freshness
// policy's job, not the store's.
type RedisBackend struct {
	rdb *redis.Client
	ctx context.Context
}

// NewRedisBackend connects to the Redis at addr (falls back to
// $REDIS_ADDRESS, then localhost:6379).
func NewRedisBackend(addr string) (*RedisBackend, error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDRESS")
	}
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisBackend{rdb: rdb, ctx: ctx}, nil
}

// Read returns the stored entry for key or nil if absent. An undecodable
// blob is deleted and reported as absent.
func (b *RedisBackend) Read(key monthkey.Key) (*MonthEntry, error) {
	val, err := b.rdb.Get(b.ctx, redisEntryPrefix+key.String()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry MonthEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		b.rdb.Del(b.ctx, redisEntryPrefix+key.String())
		b.rdb.SRem(b.ctx, redisKeySet, key.String())
		return nil, nil
	}
	return &entry, nil
}

// Write replaces the stored entry and registers its key in the month set.
func (b *RedisBackend) Write(entry *MonthEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := b.rdb.Set(b.ctx, redisEntryPrefix+entry.Key.String(), data, 0).Err(); err != nil {
		return err
	}
	return b.rdb.SAdd(b.ctx, redisKeySet, entry.Key.String()).Err()
}

// Delete removes the entry and its key-set membership.
func (b *RedisBackend) Delete(key monthkey.Key) error {
	if err := b.rdb.Del(b.ctx, redisEntryPrefix+key.String()).Err(); err != nil {
		return err
	}
	return b.rdb.SRem(b.ctx, redisKeySet, key.String()).Err()
}

// Keys returns the stored month keys.
func (b *RedisBackend) Keys() ([]monthkey.Key, error) {
	members, err := b.rdb.SMembers(b.ctx, redisKeySet).Result()
	if err != nil {
		return nil, err
	}
	keys := make([]monthkey.Key, 0, len(members))
	for _, m := range members {
		key, err := monthkey.Parse(m)
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Clear removes every entry, the key set and the consolidated summary.
func (b *RedisBackend) Clear() error {
	members, err := b.rdb.SMembers(b.ctx, redisKeySet).Result()
	if err != nil {
		return err
	}
	del := make([]string, 0, len(members)+2)
	for _, m := range members {
		del = append(del, redisEntryPrefix+m)
	}
	del = append(del, redisKeySet, redisConsolidated)
	return b.rdb.Del(b.ctx, del...).Err()
}

// ReadConsolidated returns the stored consolidated summary or nil.
func (b *RedisBackend) ReadConsolidated() (*ConsolidatedSummary, error) {
	val, err := b.rdb.Get(b.ctx, redisConsolidated).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s ConsolidatedSummary
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		b.rdb.Del(b.ctx, redisConsolidated)
		return nil, nil
	}
	return &s, nil
}

// WriteConsolidated replaces the stored consolidated summary.
func (b *RedisBackend) WriteConsolidated(summary *ConsolidatedSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return b.rdb.Set(b.ctx, redisConsolidated, data, 0).Err()
}
