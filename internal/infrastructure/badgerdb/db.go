// Package badgerdb implements the credential, session and bucket stores on an
// embedded BadgerDB. It is the single-node storage driver; tests open it in
// memory.
package badgerdb

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// Config holds configuration for a BadgerDB instance.
type Config struct {
	// Path is the data directory. Ignored when InMemory is true.
	Path       string
	InMemory   bool
	SyncWrites bool
	// Logger receives badger's own warnings and errors. Nil disables them.
	Logger *logrus.Logger
}

// InMemoryConfig is used by tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Open opens the database, creating Path if needed.
func Open(cfg Config) (*badger.DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		l := logrus.New()
		l.SetOutput(cfg.Logger.Out)
		l.SetFormatter(cfg.Logger.Formatter)
		l.SetLevel(logrus.WarnLevel)
		opts = opts.WithLogger(l.WithField("component", "badger"))
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return db, nil
}

// OpenInMemory opens a throwaway database.
func OpenInMemory() (*badger.DB, error) {
	return Open(InMemoryConfig())
}

const maxTxnRetries = 10

// update runs fn in a read-write transaction, retrying on write conflicts so
// that each call behaves as one atomic read-modify-write.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < maxTxnRetries; i++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func getValue(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}
