package store

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/layer-3/faucet/core"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// ErrStoreLocked is returned when another process holds the store open
var ErrStoreLocked = errors.New("store is in use by another process")

// LevelDBStore persists values on local disk. It is the default store for a
// single device, the same role browser localStorage plays for the page.
type LevelDBStore struct {
	db *leveldb.DB
}

// NewLevelDBStore opens (or creates) a store at path
func NewLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		if errors.Is(err, storage.ErrLocked) || errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, fmt.Errorf("failed to open store at %s: %w", path, ErrStoreLocked)
		}
		return nil, fmt.Errorf("failed to open store at %s: %w", path, err)
	}
	return &LevelDBStore{db: db}, nil
}

// Set stores value under key
func (s *LevelDBStore) Set(ctx context.Context, key, value string) error {
	if err := s.db.Put([]byte(key), []byte(value), nil); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, core.ErrStoreOperationFailed)
	}
	return nil
}

// Get retrieves a value by key
func (s *LevelDBStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return "", core.ErrNotFound
		}
		return "", fmt.Errorf("failed to get %s: %w", key, core.ErrStoreOperationFailed)
	}
	return string(value), nil
}

// Delete removes key
func (s *LevelDBStore) Delete(ctx context.Context, key string) error {
	if err := s.db.Delete([]byte(key), nil); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, core.ErrStoreOperationFailed)
	}
	return nil
}

// Close releases the underlying database
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
