package localstore

import "context"

// Backend is the durable key/value slot a Store persists collections into.
// One key holds one collection, serialized as a JSON array of records.
type Backend interface {
	// Get returns the value stored under key, or (nil, nil) when the key is
	// absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
