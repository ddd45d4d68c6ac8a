// Package shortlink defines the redirect link adapter boundary and its
// KV-backed implementation.
package shortlink

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when the short link does not exist.
var ErrNotFound = errors.New("shortlink: not found")

// Link is a stored redirect.
type Link struct {
	ID        string    `json:"id"`
	TargetURL string    `json:"targetUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is the short link adapter interface.
type Store interface {
	// Create stores targetUrl under a fresh random id and returns the link.
	Create(ctx context.Context, targetURL string) (*Link, error)

	// Resolve returns the link for id, or ErrNotFound.
	Resolve(ctx context.Context, id string) (*Link, error)

	// Delete removes the link. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error

	// List returns all links, ordered by id.
	List(ctx context.Context) ([]Link, error)
}
