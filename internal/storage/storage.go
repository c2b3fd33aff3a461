// Package storage saves uploaded media files.
package storage

import (
	"context"
	"io"
)

// Storage persists media objects addressed by key, e.g. "posts/<uuid>.gif"
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL returns the public address of key
	URL(key string) string
}
