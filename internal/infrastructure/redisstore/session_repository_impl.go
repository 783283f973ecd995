// Package redisstore keeps sessions and per-account buckets in Redis for the
// postgres storage driver.
package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/internal/domain/repository"
	"github.com/oksasatya/morningforge/pkg/helpers"
)

func sessionKey(sessionID string) string {
	return "mf:session:" + sessionID
}

type SessionRepository struct {
	rdb *redis.Client
}

func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{rdb: rdb}
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*entity.Account, error) {
	return helpers.RedisGetJSON[entity.Account](ctx, r.rdb, sessionKey(sessionID))
}

func (r *SessionRepository) Put(ctx context.Context, sessionID string, a *entity.Account, ttl time.Duration) error {
	return helpers.RedisSetJSON(ctx, r.rdb, sessionKey(sessionID), a, ttl)
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	return helpers.RedisDel(ctx, r.rdb, sessionKey(sessionID))
}

var _ repository.SessionRepository = (*SessionRepository)(nil)
