// Package cache holds the key-value stores behind the page cache.
package cache

import "context"

// Store is a key-value store whose entries expire after the TTL it was
// created with
type Store interface {
	// Get returns the value of key and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Flush drops every entry owned by the store
	Flush(ctx context.Context) error
}
