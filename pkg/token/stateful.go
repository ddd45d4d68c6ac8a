package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/latchhq/latch/internal/base62"
	"github.com/latchhq/latch/pkg/store/kv"
)

// Stateful token actions.
const (
	ActionIdentityClaim = "identity_claim"
	ActionBlobAccess    = "blob_access"
)

// Stateful token states. Transitions are unused -> used or unused ->
// revoked. A used token moves back to unused only through Restore, when
// the action behind a claim failed after consumption.
const (
	StateUnused  = "unused"
	StateUsed    = "used"
	StateRevoked = "revoked"
)

// Sentinel errors for stateful token consumption.
var (
	// ErrTokenNotFound is returned when the token id does not exist.
	ErrTokenNotFound = errors.New("token: not found")

	// ErrTokenUsed is returned when the token was already consumed. The
	// claim race loser sees this and the handler maps it to 409.
	ErrTokenUsed = errors.New("token: already used")

	// ErrTokenRevoked is returned for revoked tokens.
	ErrTokenRevoked = errors.New("token: revoked")
)

const statefulPrefix = "__TOKEN:"

func statefulKey(id string) string { return statefulPrefix + id }

// NewStatefulID generates an opaque URL-safe token id with 128 bits of
// entropy.
func NewStatefulID() string {
	return base62.Random(16)
}

// BlobPayload names the object a blob_access token unlocks.
type BlobPayload struct {
	Bucket        string `json:"bucket"`
	Key           string `json:"key"`
	ContentType   string `json:"contentType,omitempty"`
	ContentLength int64  `json:"contentLength,omitempty"`
}

// Stateful is a persisted single-use token. Exactly one of IdentityID and
// Blob is set, matching Action.
type Stateful struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	State     string    `json:"state"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Label     string    `json:"label,omitempty"`

	IdentityID string       `json:"identityId,omitempty"`
	Blob       *BlobPayload `json:"blob,omitempty"`
}

// Expired reports whether the token is past its expiry.
func (t *Stateful) Expired() bool {
	return !t.ExpiresAt.IsZero() && time.Now().After(t.ExpiresAt)
}

// SafeMetadata is the subset of token fields exposed by the public lookup
// endpoint. Payload internals (claimable identity, bucket, key) stay
// hidden until the token is actually consumed.
type SafeMetadata struct {
	ID            string    `json:"id"`
	Action        string    `json:"action"`
	State         string    `json:"state"`
	ExpiresAt     time.Time `json:"expiresAt"`
	Label         string    `json:"label,omitempty"`
	ContentType   string    `json:"contentType,omitempty"`
	ContentLength int64     `json:"contentLength,omitempty"`
}

// Safe projects the token onto its public metadata.
func (t *Stateful) Safe() *SafeMetadata {
	meta := &SafeMetadata{
		ID:        t.ID,
		Action:    t.Action,
		State:     t.State,
		ExpiresAt: t.ExpiresAt,
		Label:     t.Label,
	}
	if t.Blob != nil {
		meta.ContentType = t.Blob.ContentType
		meta.ContentLength = t.Blob.ContentLength
	}
	return meta
}

// Store persists stateful tokens in a kv.Store. Consume serializes per
// token id so concurrent claims have exactly one winner.
type Store struct {
	kv kv.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a stateful token store backed by the given KV store.
func NewStore(store kv.Store) *Store {
	return &Store{
		kv:    store,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *Store) tokenLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// CreateInput carries the token-create parameters.
type CreateInput struct {
	Action    string
	CreatedBy string
	TTL       time.Duration
	Label     string

	IdentityID string
	Blob       *BlobPayload
}

// Create mints and persists a fresh unused token.
func (s *Store) Create(ctx context.Context, in CreateInput) (*Stateful, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch in.Action {
	case ActionIdentityClaim:
		if in.IdentityID == "" {
			return nil, fmt.Errorf("token: identity_claim requires an identity id")
		}
	case ActionBlobAccess:
		if in.Blob == nil {
			return nil, fmt.Errorf("token: blob_access requires a blob payload")
		}
	default:
		return nil, fmt.Errorf("token: unknown action %q", in.Action)
	}

	tok := &Stateful{
		ID:         NewStatefulID(),
		Action:     in.Action,
		State:      StateUnused,
		CreatedBy:  in.CreatedBy,
		CreatedAt:  time.Now().UTC(),
		ExpiresAt:  time.Now().UTC().Add(in.TTL),
		Label:      in.Label,
		IdentityID: in.IdentityID,
		Blob:       in.Blob,
	}

	if err := s.put(ctx, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

func (s *Store) put(ctx context.Context, tok *Stateful) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := s.kv.Put(ctx, statefulKey(tok.ID), raw); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Get loads the full token record. Internal use only; public lookup goes
// through Safe().
func (s *Store) Get(ctx context.Context, id string) (*Stateful, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := s.kv.Get(ctx, statefulKey(id))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}

	var tok Stateful
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &tok, nil
}

// Consume atomically transitions an unused, unexpired token to used and
// returns it with its payload. Concurrent calls for the same id are
// serialized; the losers observe used and get ErrTokenUsed.
func (s *Store) Consume(ctx context.Context, id string) (*Stateful, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lock := s.tokenLock(id)
	lock.Lock()
	defer lock.Unlock()

	tok, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch tok.State {
	case StateUsed:
		return nil, ErrTokenUsed
	case StateRevoked:
		return nil, ErrTokenRevoked
	}
	if tok.Expired() {
		return nil, ErrTokenExpired
	}

	tok.State = StateUsed
	if err := s.put(ctx, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// Restore returns a used token to unused so a claim whose action failed
// downstream can be retried. Unused and revoked tokens are left alone.
func (s *Store) Restore(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := s.tokenLock(id)
	lock.Lock()
	defer lock.Unlock()

	tok, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if tok.State != StateUsed {
		return nil
	}

	tok.State = StateUnused
	return s.put(ctx, tok)
}

// Revoke transitions the token to revoked. Already-consumed tokens stay
// used.
func (s *Store) Revoke(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := s.tokenLock(id)
	lock.Lock()
	defer lock.Unlock()

	tok, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if tok.State == StateUsed {
		return ErrTokenUsed
	}

	tok.State = StateRevoked
	return s.put(ctx, tok)
}

// ListByCreator returns all tokens created by the identity.
func (s *Store) ListByCreator(ctx context.Context, createdBy string) ([]Stateful, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tokens []Stateful
	cursor := ""
	for {
		page, err := s.kv.List(ctx, kv.ListOptions{Prefix: statefulPrefix, Cursor: cursor})
		if err != nil {
			return nil, fmt.Errorf("failed to scan tokens: %w", err)
		}

		for _, key := range page.Keys {
			tok, err := s.Get(ctx, strings.TrimPrefix(key.Name, statefulPrefix))
			if errors.Is(err, ErrTokenNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			if tok.CreatedBy == createdBy {
				tokens = append(tokens, *tok)
			}
		}

		if page.ListComplete {
			return tokens, nil
		}
		cursor = page.Cursor
	}
}
