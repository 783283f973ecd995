package application

import (
	"context"
	"encoding/json"

	"github.com/oksasatya/morningforge/internal/domain/keyspace"
	repo "github.com/oksasatya/morningforge/internal/domain/repository"
)

// readBucket decodes a bucket into dst; found is false for an absent bucket.
func readBucket[T any](ctx context.Context, b repo.BucketRepository, accountID string, kind keyspace.Kind, dst *T) (bool, error) {
	raw, err := b.Read(ctx, accountID, kind)
	if err != nil || raw == nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func writeBucket[T any](ctx context.Context, b repo.BucketRepository, accountID string, kind keyspace.Kind, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Write(ctx, accountID, kind, raw)
}

// updateBucket is an atomic read-modify-write over a JSON bucket. fn gets the
// zero value of T when the bucket is absent.
func updateBucket[T any](ctx context.Context, b repo.BucketRepository, accountID string, kind keyspace.Kind, fn func(cur T) (T, error)) error {
	return b.Update(ctx, accountID, kind, func(raw []byte) ([]byte, error) {
		var cur T
		if raw != nil {
			if err := json.Unmarshal(raw, &cur); err != nil {
				return nil, err
			}
		}
		next, err := fn(cur)
		if err != nil {
			return nil, err
		}
		return json.Marshal(next)
	})
}
