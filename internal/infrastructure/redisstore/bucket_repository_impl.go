package redisstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/morningforge/internal/domain/keyspace"
	"github.com/oksasatya/morningforge/internal/domain/repository"
	"github.com/oksasatya/morningforge/pkg/helpers"
)

const maxWatchRetries = 10

var ErrUpdateContended = errors.New("bucket update retries exhausted")

type BucketRepository struct {
	rdb *redis.Client
}

func NewBucketRepository(rdb *redis.Client) *BucketRepository {
	return &BucketRepository{rdb: rdb}
}

func (r *BucketRepository) Read(ctx context.Context, accountID string, kind keyspace.Kind) ([]byte, error) {
	key, err := keyspace.Key(accountID, kind)
	if err != nil {
		return nil, err
	}
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (r *BucketRepository) Write(ctx context.Context, accountID string, kind keyspace.Kind, value []byte) error {
	key, err := keyspace.Key(accountID, kind)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, key, value, 0).Err()
}

// Update uses WATCH/MULTI so concurrent writers retry instead of losing updates.
func (r *BucketRepository) Update(ctx context.Context, accountID string, kind keyspace.Kind, fn func([]byte) ([]byte, error)) error {
	key, err := keyspace.Key(accountID, kind)
	if err != nil {
		return err
	}
	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			cur, err = nil, nil
		}
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}
	for i := 0; i < maxWatchRetries; i++ {
		err = r.rdb.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return ErrUpdateContended
}

func (r *BucketRepository) DeleteAll(ctx context.Context, accountID string) error {
	keys, err := keyspace.AllKeys(accountID)
	if err != nil {
		return err
	}
	return helpers.RedisDel(ctx, r.rdb, keys...)
}

var _ repository.BucketRepository = (*BucketRepository)(nil)
