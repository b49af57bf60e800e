package ports

import "context"

// Store is a plain persistent string key-value store.
// Get returns core.ErrNotFound for a missing key.
type Store interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
