package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const onlineKey = "presence:online"

// RedisPresenceStore mirrors the online user set into one ZSET scored by the
// last check-in timestamp. Marks expire by score, so a process that dies
// without cleaning up leaks nothing past the TTL.
type RedisPresenceStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPresenceStore(rdb *redis.Client, ttl time.Duration) *RedisPresenceStore {
	return &RedisPresenceStore{rdb: rdb, ttl: ttl}
}

func (p *RedisPresenceStore) SetOnline(ctx context.Context, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = p.ttl
	}
	if err := p.rdb.ZAdd(ctx, onlineKey, redis.Z{
		Score:  float64(time.Now().Add(ttl).Unix()),
		Member: userID,
	}).Err(); err != nil {
		return err
	}
	// Bound the whole set's lifetime so an idle deployment holds no state.
	return p.rdb.Expire(ctx, onlineKey, ttl*2).Err()
}

func (p *RedisPresenceStore) SetOffline(ctx context.Context, userID string) error {
	return p.rdb.ZRem(ctx, onlineKey, userID).Err()
}

func (p *RedisPresenceStore) OnlineUsers(ctx context.Context) ([]string, error) {
	now := time.Now().Unix()
	// Drop expired marks first (self-cleaning).
	p.rdb.ZRemRangeByScore(ctx, onlineKey, "-inf", strconv.FormatInt(now, 10))
	return p.rdb.ZRange(ctx, onlineKey, 0, -1).Result()
}
