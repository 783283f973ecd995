package repository

import (
	"context"
	"time"

	"github.com/oksasatya/morningforge/internal/domain/entity"
)

// SessionRepository keeps one account snapshot per session id.
// Get returns (nil, nil) for unknown or expired sessions.
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) (*entity.Account, error)
	Put(ctx context.Context, sessionID string, a *entity.Account, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}
