// Package storage keeps user uploads such as avatars in object storage.
package storage

import (
	"context"
	"errors"
)

var ErrEmptyKey = errors.New("storage key is required")

// ObjectStorage stores public objects and returns the URL they are served from.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}
