package storage

import (
	"context"
	"io"
)

// Store is the content store for proof-of-payment files. Objects are
// addressed by generated keys only; nothing ever serves them under a
// client-chosen name.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
