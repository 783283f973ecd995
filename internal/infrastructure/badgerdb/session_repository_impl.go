package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/internal/domain/repository"
)

const sessionPrefix = "session:"

// SessionRepository keeps session snapshots as TTL'd entries.
type SessionRepository struct {
	db *badger.DB
}

func NewSessionRepository(db *badger.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Get(_ context.Context, sessionID string) (*entity.Account, error) {
	var a *entity.Account
	err := r.db.View(func(txn *badger.Txn) error {
		b, err := getValue(txn, []byte(sessionPrefix+sessionID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		a = &entity.Account{}
		return json.Unmarshal(b, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *SessionRepository) Put(_ context.Context, sessionID string, a *entity.Account, ttl time.Duration) error {
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return update(r.db, func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(sessionPrefix+sessionID), b)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

func (r *SessionRepository) Delete(_ context.Context, sessionID string) error {
	return update(r.db, func(txn *badger.Txn) error {
		return txn.Delete([]byte(sessionPrefix + sessionID))
	})
}

var _ repository.SessionRepository = (*SessionRepository)(nil)
