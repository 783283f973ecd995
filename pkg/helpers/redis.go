package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a client with short dial and I/O timeouts. It does
// not connect; call PingRedis to check reachability.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// PingRedis checks the connection within a bounded time.
func PingRedis(ctx context.Context, rdb redis.Cmdable) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return rdb.Ping(ctx).Err()
}

// RedisSetJSON stores value as JSON. A zero ttl keeps the key forever.
func RedisSetJSON(ctx context.Context, rdb redis.Cmdable, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// RedisGetJSON decodes the JSON stored at key. A missing key yields (nil, nil).
func RedisGetJSON[T any](ctx context.Context, rdb redis.Cmdable, key string) (*T, error) {
	res, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(res, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func RedisDel(ctx context.Context, rdb redis.Cmdable, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}
