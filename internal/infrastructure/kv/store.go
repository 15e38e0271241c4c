package kv

import "context"

// Store is the backing-store contract the limiter and the deal store build
// on: read a key and conditionally replace it. Writes per key are linearized
// by the implementation; cross-key ordering is not guaranteed.
type Store interface {
	// Get returns the current value or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// CompareAndSwap replaces the value only when the stored bytes equal
	// expected. A nil expected asserts the key is absent. Returns
	// ErrConflict when the assertion fails.
	CompareAndSwap(ctx context.Context, key string, expected, next []byte) error
}
