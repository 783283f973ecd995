package badgerdb

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/oksasatya/morningforge/internal/domain/keyspace"
	"github.com/oksasatya/morningforge/internal/domain/repository"
)

// BucketRepository stores per-account buckets under keyspace keys.
type BucketRepository struct {
	db *badger.DB
}

func NewBucketRepository(db *badger.DB) *BucketRepository {
	return &BucketRepository{db: db}
}

func (r *BucketRepository) Read(_ context.Context, accountID string, kind keyspace.Kind) ([]byte, error) {
	key, err := keyspace.Key(accountID, kind)
	if err != nil {
		return nil, err
	}
	var out []byte
	err = r.db.View(func(txn *badger.Txn) error {
		b, err := getValue(txn, []byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		out = b
		return err
	})
	return out, err
}

func (r *BucketRepository) Write(_ context.Context, accountID string, kind keyspace.Kind, value []byte) error {
	key, err := keyspace.Key(accountID, kind)
	if err != nil {
		return err
	}
	return update(r.db, func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (r *BucketRepository) Update(_ context.Context, accountID string, kind keyspace.Kind, fn func([]byte) ([]byte, error)) error {
	key, err := keyspace.Key(accountID, kind)
	if err != nil {
		return err
	}
	return update(r.db, func(txn *badger.Txn) error {
		current, err := getValue(txn, []byte(key))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		return txn.Set([]byte(key), next)
	})
}

func (r *BucketRepository) DeleteAll(_ context.Context, accountID string) error {
	keys, err := keyspace.AllKeys(accountID)
	if err != nil {
		return err
	}
	return update(r.db, func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

var _ repository.BucketRepository = (*BucketRepository)(nil)
