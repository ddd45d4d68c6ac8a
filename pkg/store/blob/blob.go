// Package blob defines the content storage adapter boundary.
//
// Blob bodies are streamed: Put consumes an io.Reader without buffering the
// whole payload and Get hands back an io.ReadCloser the caller must close.
package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get and Delete when the object does not exist.
var ErrNotFound = errors.New("blob: object not found")

// ErrStoreClosed is returned by all operations after Close.
var ErrStoreClosed = errors.New("blob: store closed")

// Object is a stored blob opened for reading.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// PutOptions carries metadata for a write.
type PutOptions struct {
	ContentType string
	// ContentLength, when >= 0, is the expected body size. Backends may
	// use it to pre-allocate or to set transfer headers; -1 means unknown.
	ContentLength int64
}

// ObjectInfo describes one object in a listing.
type ObjectInfo struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// ListOptions controls a prefix scan.
type ListOptions struct {
	Prefix string
	Limit  int
	Cursor string
}

// ListResult is one page of a listing.
type ListResult struct {
	Objects   []ObjectInfo
	Truncated bool
	Cursor    string
}

// DefaultListLimit is applied when ListOptions.Limit is zero.
const DefaultListLimit = 1000

// Store is the blob adapter interface.
type Store interface {
	// Get opens the object for reading, or returns ErrNotFound.
	Get(ctx context.Context, key string) (*Object, error)

	// Put streams body into the store under key.
	Put(ctx context.Context, key string, body io.Reader, opts PutOptions) error

	// Delete removes the object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error

	// List scans objects in lexicographic key order.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Close releases backend resources.
	Close() error
}
