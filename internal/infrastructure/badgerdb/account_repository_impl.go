package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/internal/domain/repository"
)

const (
	accountIDPrefix    = "account:id:"
	accountEmailPrefix = "account:email:"
)

func accountKey(id string) []byte  { return []byte(accountIDPrefix + id) }
func emailKey(email string) []byte { return []byte(accountEmailPrefix + email) }

// AccountRepository stores each account under its id plus an email index
// entry, both written in the same transaction.
type AccountRepository struct {
	db *badger.DB
}

func NewAccountRepository(db *badger.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(_ context.Context, a *entity.Account) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return update(r.db, func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(a.Email)); err == nil {
			return entity.ErrDuplicateEmail
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(accountKey(a.ID), b); err != nil {
			return err
		}
		return txn.Set(emailKey(a.Email), []byte(a.ID))
	})
}

func (r *AccountRepository) GetByID(_ context.Context, id string) (*entity.Account, error) {
	var a *entity.Account
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		a, err = loadAccount(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) GetByEmail(_ context.Context, email string) (*entity.Account, error) {
	var a *entity.Account
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := getValue(txn, emailKey(email))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}
		a, err = loadAccount(txn, string(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) Replace(_ context.Context, a *entity.Account) error {
	return update(r.db, func(txn *badger.Txn) error {
		current, err := loadAccount(txn, a.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		next := a.Clone()
		if current.TrialStartDate != nil {
			// trial start is write-once; only StartTrial sets it
			t := *current.TrialStartDate
			next.TrialStartDate = &t
		}
		if current.Email != a.Email {
			if _, err := txn.Get(emailKey(a.Email)); err == nil {
				return entity.ErrDuplicateEmail
			}
			if err := txn.Delete(emailKey(current.Email)); err != nil {
				return err
			}
			if err := txn.Set(emailKey(a.Email), []byte(a.ID)); err != nil {
				return err
			}
		}
		return saveAccount(txn, next)
	})
}

func (r *AccountRepository) StartTrial(_ context.Context, id string, at time.Time) (*entity.Account, error) {
	var out *entity.Account
	err := update(r.db, func(txn *badger.Txn) error {
		a, err := loadAccount(txn, id)
		if err != nil {
			return err
		}
		if a.TrialStartDate != nil {
			return entity.ErrTrialAlreadyUsed
		}
		start := at
		a.TrialStartDate = &start
		a.IsPro = true
		a.UpdatedAt = at
		if err := saveAccount(txn, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AccountRepository) Count(_ context.Context) (int, error) {
	n := 0
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(accountIDPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func loadAccount(txn *badger.Txn, id string) (*entity.Account, error) {
	b, err := getValue(txn, accountKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var a entity.Account
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func saveAccount(txn *badger.Txn, a *entity.Account) error {
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return txn.Set(accountKey(a.ID), b)
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
