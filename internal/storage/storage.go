// Package storage keeps uploaded files on local disk or in an S3 bucket.
package storage

import (
	"context"
	"io"
)

// FileStore saves and removes uploaded files. The reference returned by Save
// is what records store and what Remove accepts.
type FileStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Remove(ctx context.Context, ref string) error
}
