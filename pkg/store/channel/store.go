package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/latchhq/latch/internal/logger"
	"github.com/latchhq/latch/pkg/store/kv"
)

// Reserved KV prefixes used by the channel store.
const (
	ownerPrefix = "__CHANNEL_OWNER:"
	indexPrefix = "__CHANNEL_INDEX:"
)

func metaKey(id string) string   { return "channel:" + id + ":meta" }
func seqKey(id string) string    { return "channel:" + id + ":seq" }
func eventPrefix(id string) string {
	return "channel:" + id + ":event:"
}

// eventKey zero-pads seq to 10 digits so lexicographic key order matches
// numeric seq order.
func eventKey(id string, seq uint64) string {
	return fmt.Sprintf("%s%010d", eventPrefix(id), seq)
}

func ownerKey(id string) string { return ownerPrefix + id }

func indexKey(namespace, id string) string {
	return indexPrefix + namespace + ":" + id
}

// KVStore implements Store on top of a kv.Store.
//
// Appends are serialized through a per-channel mutex; the seq counter and
// the event record are written under that lock, so concurrent appends to
// the same channel never race on sequence assignment.
type KVStore struct {
	kv kv.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKVStore creates a channel store backed by the given KV store.
func NewKVStore(store kv.Store) *KVStore {
	return &KVStore{
		kv:    store,
		locks: make(map[string]*sync.Mutex),
	}
}

// channelLock returns the mutex serializing writes to one channel.
func (s *KVStore) channelLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Create registers a new channel.
func (s *KVStore) Create(ctx context.Context, id, name, ownerNamespace, secret string) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lock := s.channelLock(id)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.kv.Get(ctx, metaKey(id)); err == nil {
		return nil, ErrExists
	} else if !errors.Is(err, kv.ErrNotFound) {
		return nil, fmt.Errorf("failed to check channel existence: %w", err)
	}

	meta := &Metadata{
		ID:             id,
		Name:           name,
		OwnerNamespace: ownerNamespace,
		CreatedAt:      time.Now().UTC(),
		Secret:         secret,
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode channel metadata: %w", err)
	}

	if err := s.kv.Put(ctx, metaKey(id), raw); err != nil {
		return nil, fmt.Errorf("failed to store channel metadata: %w", err)
	}
	if err := s.kv.Put(ctx, ownerKey(id), []byte(ownerNamespace)); err != nil {
		return nil, fmt.Errorf("failed to store channel owner: %w", err)
	}
	if err := s.kv.Put(ctx, indexKey(ownerNamespace, id), []byte(id)); err != nil {
		return nil, fmt.Errorf("failed to index channel: %w", err)
	}

	return meta, nil
}

// GetMetadata returns the channel metadata.
func (s *KVStore) GetMetadata(ctx context.Context, id string) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := s.kv.Get(ctx, metaKey(id))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load channel metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode channel metadata: %w", err)
	}
	return &meta, nil
}

// ListByNamespace scans the owner index and loads each channel's metadata.
func (s *KVStore) ListByNamespace(ctx context.Context, namespace string) ([]Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := indexPrefix + namespace + ":"
	var channels []Metadata
	cursor := ""

	for {
		page, err := s.kv.List(ctx, kv.ListOptions{Prefix: prefix, Cursor: cursor})
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel index: %w", err)
		}

		for _, key := range page.Keys {
			id := strings.TrimPrefix(key.Name, prefix)
			meta, err := s.GetMetadata(ctx, id)
			if errors.Is(err, ErrNotFound) {
				// Stale index row; skip it.
				continue
			}
			if err != nil {
				return nil, err
			}
			channels = append(channels, *meta)
		}

		if page.ListComplete {
			return channels, nil
		}
		cursor = page.Cursor
	}
}

// currentSeq reads the channel's sequence counter. Missing counter means
// no events yet.
func (s *KVStore) currentSeq(ctx context.Context, id string) (uint64, error) {
	raw, err := s.kv.Get(ctx, seqKey(id))
	if errors.Is(err, kv.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load channel seq: %w", err)
	}

	seq, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse channel seq: %w", err)
	}
	return seq, nil
}

// appendEvent assigns the next seq and persists event + counter under the
// channel lock. The caller fills everything except ID, Seq and CreatedAt.
func (s *KVStore) appendEvent(ctx context.Context, id string, event Event) (*Event, error) {
	lock := s.channelLock(id)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.kv.Get(ctx, metaKey(id)); errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to load channel metadata: %w", err)
	}

	seq, err := s.currentSeq(ctx, id)
	if err != nil {
		return nil, err
	}

	event.ID = uuid.NewString()
	event.Seq = seq + 1
	event.CreatedAt = time.Now().UTC()

	if event.Type == EventTypeDeletion {
		if event.TargetSeq == 0 || event.TargetSeq > seq {
			return nil, ErrInvalidTarget
		}
		target, err := s.getEventLocked(ctx, id, event.TargetSeq)
		if err != nil {
			if errors.Is(err, ErrEventNotFound) {
				return nil, ErrInvalidTarget
			}
			return nil, err
		}
		if target.Type != EventTypeMessage {
			return nil, ErrInvalidTarget
		}
	}

	raw, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}

	if err := s.kv.Put(ctx, seqKey(id), []byte(strconv.FormatUint(event.Seq, 10))); err != nil {
		return nil, fmt.Errorf("failed to advance channel seq: %w", err)
	}
	if err := s.kv.Put(ctx, eventKey(id, event.Seq), raw); err != nil {
		return nil, fmt.Errorf("failed to store event: %w", err)
	}

	return &event, nil
}

// Append writes a message event.
func (s *KVStore) Append(ctx context.Context, id string, in AppendInput) (*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len([]rune(in.Content)) > MaxContentLength {
		return nil, ErrContentTooLong
	}

	return s.appendEvent(ctx, id, Event{
		AuthorID: in.AuthorID,
		Type:     EventTypeMessage,
		Content:  in.Content,
	})
}

// AppendDeletion writes a tombstone naming an earlier message event.
func (s *KVStore) AppendDeletion(ctx context.Context, id string, in DeletionInput) (*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.appendEvent(ctx, id, Event{
		AuthorID:  in.AuthorID,
		Type:      EventTypeDeletion,
		TargetSeq: in.TargetSeq,
	})
}

// Read scans raw events after AfterSeq in windows of 3x the requested
// limit, collects tombstone targets, and returns up to limit visible
// events. Tombstones are never returned; unparseable records are skipped.
func (s *KVStore) Read(ctx context.Context, id string, opts ReadOptions) (*ReadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := s.kv.Get(ctx, metaKey(id)); errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to load channel metadata: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	if limit > MaxReadLimit {
		limit = MaxReadLimit
	}

	// Scan one extra raw event past the window so HasMore is exact even
	// when the window fills up.
	rawWindow := 3*limit + 1
	raw := make([]Event, 0, rawWindow)
	deleted := make(map[uint64]struct{})
	truncated := false

	cursor := ""
	if opts.AfterSeq > 0 {
		cursor = eventKey(id, opts.AfterSeq)
	}
	prefix := eventPrefix(id)

	for {
		page, err := s.kv.List(ctx, kv.ListOptions{
			Prefix: prefix,
			Limit:  rawWindow - len(raw),
			Cursor: cursor,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan events: %w", err)
		}

		for _, key := range page.Keys {
			value, err := s.kv.Get(ctx, key.Name)
			if err != nil {
				// Key vanished or backend hiccup; fail closed and skip.
				logger.WarnCtx(ctx, "skipping unreadable channel event",
					logger.KeyChannel, id, logger.KeyKey, key.Name, logger.KeyError, err)
				continue
			}

			var event Event
			if err := json.Unmarshal(value, &event); err != nil {
				logger.WarnCtx(ctx, "skipping undecodable channel event",
					logger.KeyChannel, id, logger.KeyKey, key.Name, logger.KeyError, err)
				continue
			}

			if event.Type == EventTypeDeletion {
				deleted[event.TargetSeq] = struct{}{}
			}
			raw = append(raw, event)
		}

		if page.ListComplete {
			break
		}
		if len(raw) >= rawWindow {
			truncated = true
			break
		}
		cursor = page.Cursor
	}

	result := &ReadResult{Events: []Event{}}
	for _, event := range raw {
		// Any raw event past a full window means more to read, whether or
		// not it would be visible.
		if len(result.Events) == limit {
			result.HasMore = true
			return result, nil
		}

		if event.Type == EventTypeDeletion {
			continue
		}

		if _, tombstoned := deleted[event.Seq]; tombstoned {
			if !opts.IncludeDeleted {
				continue
			}
			event.Deleted = true
		}

		result.Events = append(result.Events, event)
	}

	if truncated {
		result.HasMore = true
	}
	return result, nil
}

// GetEvent returns the raw stored event at seq.
func (s *KVStore) GetEvent(ctx context.Context, id string, seq uint64) (*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.getEventLocked(ctx, id, seq)
}

func (s *KVStore) getEventLocked(ctx context.Context, id string, seq uint64) (*Event, error) {
	raw, err := s.kv.Get(ctx, eventKey(id, seq))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	return &event, nil
}

// Delete purges the channel metadata, counter, indexes and all events.
func (s *KVStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := s.channelLock(id)
	lock.Lock()
	defer lock.Unlock()

	meta, err := s.GetMetadata(ctx, id)
	if err != nil {
		return err
	}

	prefix := eventPrefix(id)
	for {
		page, err := s.kv.List(ctx, kv.ListOptions{Prefix: prefix})
		if err != nil {
			return fmt.Errorf("failed to scan events for purge: %w", err)
		}
		for _, key := range page.Keys {
			if err := s.kv.Delete(ctx, key.Name); err != nil {
				return fmt.Errorf("failed to purge event: %w", err)
			}
		}
		if page.ListComplete || len(page.Keys) == 0 {
			break
		}
	}

	if err := s.kv.Delete(ctx, seqKey(id)); err != nil {
		return fmt.Errorf("failed to delete channel seq: %w", err)
	}
	if err := s.kv.Delete(ctx, ownerKey(id)); err != nil {
		return fmt.Errorf("failed to delete channel owner: %w", err)
	}
	if err := s.kv.Delete(ctx, indexKey(meta.OwnerNamespace, id)); err != nil {
		return fmt.Errorf("failed to delete channel index: %w", err)
	}
	if err := s.kv.Delete(ctx, metaKey(id)); err != nil {
		return fmt.Errorf("failed to delete channel metadata: %w", err)
	}

	s.mu.Lock()
	delete(s.locks, id)
	s.mu.Unlock()

	return nil
}

// Ensure KVStore implements Store.
var _ Store = (*KVStore)(nil)
