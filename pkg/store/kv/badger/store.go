// Package badger provides a BadgerDB-backed kv.Store. This is the default
// persistent backend for single-node deployments.
package badger

import (
	"context"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/latchhq/latch/internal/logger"
	"github.com/latchhq/latch/pkg/store/kv"
)

// Config holds configuration for the badger kv store.
type Config struct {
	// Path is the directory for the badger database files.
	Path string

	// InMemory runs badger without touching disk. Used by tests.
	InMemory bool

	// SyncWrites forces fsync on every write. Slower but durable.
	// Default: true.
	SyncWrites bool
}

// DefaultConfig returns the default configuration for the given path.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		SyncWrites: true,
	}
}

// Store is a badger-backed implementation of kv.Store.
type Store struct {
	db *badgerdb.DB
}

// New opens (or creates) a badger database at cfg.Path.
func New(cfg Config) (*Store, error) {
	opts := badgerdb.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(nil)
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("")
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	logger.Debug("badger kv store opened", logger.KeyBackend, "badger", "path", cfg.Path)
	return &Store{db: db}, nil
}

// Get returns the value for key, or kv.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badgerdb.ErrKeyNotFound {
			return kv.ErrNotFound
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == kv.ErrNotFound {
		if synth, ok := kv.SyntheticValue(key); ok {
			return synth, nil
		}
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger get: %w", err)
	}
	return value, nil
}

// Put stores value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("badger put: %w", err)
	}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("badger delete: %w", err)
	}
	return nil
}

// List scans keys in lexicographic order using a badger iterator.
func (s *Store) List(ctx context.Context, opts kv.ListOptions) (*kv.ListResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = kv.DefaultListLimit
	}

	result := &kv.ListResult{}
	err := s.db.View(func(txn *badgerdb.Txn) error {
		itOpts := badgerdb.DefaultIteratorOptions
		itOpts.PrefetchValues = false
		itOpts.Prefix = []byte(opts.Prefix)

		it := txn.NewIterator(itOpts)
		defer it.Close()

		seek := []byte(opts.Prefix)
		if opts.Cursor != "" {
			// Resume just past the cursor key.
			seek = append([]byte(opts.Cursor), 0)
		}

		for it.Seek(seek); it.Valid(); it.Next() {
			name := string(it.Item().KeyCopy(nil))
			if len(result.Keys) == limit {
				result.Cursor = result.Keys[limit-1].Name
				return nil
			}
			result.Keys = append(result.Keys, kv.Key{Name: name})
		}

		result.ListComplete = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger list: %w", err)
	}
	return result, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
