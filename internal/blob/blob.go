// Package blob stores raw media bytes and hands out time-limited read URLs.
package blob

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidPath is returned for object paths that are empty or escape the
// store root.
var ErrInvalidPath = errors.New("blob: invalid path")

// Store is an object store. Delete of an absent object is not an error.
type Store interface {
	Put(ctx context.Context, data []byte, path, contentType string) (string, error)
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, path string) error
}
