// Package storage owns byte-level content placement, retrieval and removal.
// Metadata never lives here; the catalog links its records to content
// through the opaque keys this package hands out.
package storage

import (
	"context"
	"io"

	"github.com/spf13/viper"
)

// Placement describes content that has been durably written.
type Placement struct {
	Key         string
	Size        int64
	ContentType string
}

type Store interface {
	// Place durably writes r under a freshly generated key. The declared
	// name only contributes its extension; lookups never depend on it.
	// Returns apperr.ErrRejectedType, apperr.ErrTooLarge or
	// apperr.ErrWriteFailure.
	Place(ctx context.Context, r io.Reader, declaredName string) (*Placement, error)

	// Open returns the content under key together with its size.
	// Returns apperr.ErrNotFound if the content is gone.
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)

	// Remove deletes the content under key. Removing an absent key is
	// not an error, so delete retries and sweeps stay cheap.
	Remove(ctx context.Context, key string) error
}

// New picks the backend the config asks for.
func New() (Store, error) {
	switch viper.GetString("storage.type") {
	case "s3":
		return NewS3()
	default:
		return NewLocal(viper.GetString("storage.path"))
	}
}
