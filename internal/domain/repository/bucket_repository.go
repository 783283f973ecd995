package repository

import (
	"context"

	"github.com/oksasatya/morningforge/internal/domain/keyspace"
)

// BucketRepository stores raw JSON values addressed by (accountID, kind).
// There is no operation that enumerates accounts.
type BucketRepository interface {
	// Read returns (nil, nil) if the bucket was never written.
	Read(ctx context.Context, accountID string, kind keyspace.Kind) ([]byte, error)
	Write(ctx context.Context, accountID string, kind keyspace.Kind, value []byte) error
	// Update runs fn over the current value atomically with respect to other
	// Update calls on the same bucket. fn receives nil for an absent bucket.
	Update(ctx context.Context, accountID string, kind keyspace.Kind, fn func(current []byte) ([]byte, error)) error
	DeleteAll(ctx context.Context, accountID string) error
}
