// Package storage persists uploaded photo blobs.
package storage

import (
	"context"
	"errors"
	"time"
)

// PhotoDir is the directory segment every photo URL carries.
const PhotoDir = "photos"

// ErrInvalidName is returned for names that are empty or contain a path.
var ErrInvalidName = errors.New("invalid blob name")

// Object describes one stored blob.
type Object struct {
	Name    string
	URL     string
	Size    int64
	ModTime time.Time
}

// BlobStore stores opaque blobs and hands back a public URL for each.
type BlobStore interface {
	// Put stores data under name and returns its URL.
	Put(ctx context.Context, name string, data []byte) (string, error)

	// Delete removes name. Missing blobs are not an error.
	Delete(ctx context.Context, name string) error

	// List returns every stored blob.
	List(ctx context.Context) ([]Object, error)

	// NameFromURL maps a URL produced by Put back to its blob name.
	NameFromURL(url string) (string, bool)
}
