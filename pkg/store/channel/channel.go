// Package channel defines the ordered event log adapter boundary.
//
// A channel is an append-only, totally ordered log of events. Sequence
// numbers are assigned by the store and are strictly increasing with no
// gaps. Deletion is soft: a deletion event (tombstone) names the seq it
// removes, and readers filter or flag the target instead of ever seeing
// the tombstone itself.
package channel

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrNotFound is returned when the channel does not exist.
	ErrNotFound = errors.New("channel: not found")

	// ErrExists is returned by Create when the channel id is taken.
	ErrExists = errors.New("channel: already exists")

	// ErrEventNotFound is returned when the addressed event does not exist.
	ErrEventNotFound = errors.New("channel: event not found")

	// ErrContentTooLong is returned when appended content exceeds MaxContentLength.
	ErrContentTooLong = errors.New("channel: content too long")

	// ErrInvalidTarget is returned when a deletion names a seq that does
	// not reference an earlier message event in the same channel.
	ErrInvalidTarget = errors.New("channel: invalid deletion target")
)

const (
	// MaxContentLength caps message content, in characters.
	MaxContentLength = 10000

	// DefaultReadLimit applies when ReadOptions.Limit is zero.
	DefaultReadLimit = 50

	// MaxReadLimit caps ReadOptions.Limit.
	MaxReadLimit = 100
)

// Event types.
const (
	EventTypeMessage  = "message"
	EventTypeDeletion = "deletion"
)

// Metadata describes a channel. Secret is the HMAC key for capability
// tokens and must never be returned to non-owner callers.
type Metadata struct {
	ID             string    `json:"channelId"`
	Name           string    `json:"name"`
	OwnerNamespace string    `json:"ownerNamespace"`
	CreatedAt      time.Time `json:"createdAt"`
	Secret         string    `json:"secret"`
}

// Event is one entry in a channel log.
type Event struct {
	ID        string    `json:"id"`
	Seq       uint64    `json:"seq"`
	AuthorID  string    `json:"authorId"`
	Type      string    `json:"type"`
	Content   string    `json:"content,omitempty"`
	TargetSeq uint64    `json:"targetSeq,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	// Deleted is derived at read time; it is never persisted.
	Deleted bool `json:"deleted,omitempty"`
}

// AppendInput carries a message append.
type AppendInput struct {
	AuthorID string
	Content  string
}

// DeletionInput carries a tombstone append.
type DeletionInput struct {
	AuthorID  string
	TargetSeq uint64
}

// ReadOptions controls a windowed read.
type ReadOptions struct {
	// AfterSeq returns only events with seq > AfterSeq.
	AfterSeq uint64

	// Limit caps visible events returned. Zero means DefaultReadLimit;
	// values above MaxReadLimit are clamped.
	Limit int

	// IncludeDeleted returns soft-deleted events flagged Deleted=true
	// instead of skipping them. Tombstones themselves are never returned.
	IncludeDeleted bool
}

// ReadResult is one page of visible events in ascending seq order.
type ReadResult struct {
	Events  []Event `json:"events"`
	HasMore bool    `json:"hasMore"`
}

// Store is the channel adapter interface.
//
// Append and AppendDeletion are the only operations with an atomicity
// requirement: each must read the current seq, assign seq+1 and persist
// both the event and the counter as one serialized step, so concurrent
// appends to one channel yield gap-free, unique, strictly increasing
// sequence numbers.
type Store interface {
	// Create registers a new channel. Returns ErrExists if id is taken.
	Create(ctx context.Context, id, name, ownerNamespace, secret string) (*Metadata, error)

	// GetMetadata returns the channel metadata, or ErrNotFound.
	GetMetadata(ctx context.Context, id string) (*Metadata, error)

	// ListByNamespace returns all channels owned by the namespace.
	ListByNamespace(ctx context.Context, namespace string) ([]Metadata, error)

	// Append writes a message event and returns it with its assigned seq.
	Append(ctx context.Context, id string, in AppendInput) (*Event, error)

	// AppendDeletion writes a tombstone naming an earlier message event.
	AppendDeletion(ctx context.Context, id string, in DeletionInput) (*Event, error)

	// Read returns visible events after AfterSeq, tombstone-filtered.
	Read(ctx context.Context, id string, opts ReadOptions) (*ReadResult, error)

	// GetEvent returns the raw event at seq, or ErrEventNotFound.
	GetEvent(ctx context.Context, id string, seq uint64) (*Event, error)

	// Delete purges the channel metadata and all of its events.
	Delete(ctx context.Context, id string) error
}

// NewID generates a 12-hex channel id.
func NewID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// NewSecret generates a 256-bit hex-encoded channel signing secret.
func NewSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
