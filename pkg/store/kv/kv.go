// Package kv defines the key-value storage adapter boundary.
//
// The gateway persists every entity (identities, credentials, grants,
// tokens, channel events, user data) through this interface. Backends are
// expected to provide lexicographically ordered prefix scans with opaque
// cursors; the core never depends on backend-specific behavior.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("kv: key not found")

// ErrStoreClosed is returned by all operations after Close.
var ErrStoreClosed = errors.New("kv: store closed")

// OrgPermissionsKey is the reserved key whose absence reads as an empty
// JSON object. Browser clients poll it before their first write.
const OrgPermissionsKey = "__ORG:permissions"

// Key describes a single key returned by List.
type Key struct {
	Name string `json:"name"`
}

// ListOptions controls a prefix scan.
type ListOptions struct {
	// Prefix restricts the scan to keys starting with this string.
	Prefix string

	// Limit caps the number of keys returned. Zero means backend default
	// (1000).
	Limit int

	// Cursor resumes a previous scan. Opaque; pass the cursor from the
	// prior ListResult.
	Cursor string
}

// ListResult is one page of a prefix scan.
type ListResult struct {
	Keys         []Key
	Cursor       string
	ListComplete bool
}

// DefaultListLimit is applied when ListOptions.Limit is zero.
const DefaultListLimit = 1000

// Store is the key-value adapter interface.
//
// All methods take a context; implementations must observe cancellation
// before starting work. Values are opaque byte slices owned by the caller.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, overwriting any existing value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List scans keys in lexicographic order.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Close releases backend resources.
	Close() error
}

// SyntheticValue returns the value synthesized for reserved keys that
// read as present even when never written. ok is false for ordinary keys.
func SyntheticValue(key string) (value []byte, ok bool) {
	if key == OrgPermissionsKey {
		return []byte("{}"), true
	}
	return nil, false
}
