// Package memory provides an in-memory kv.Store used as the reference
// implementation and in tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/latchhq/latch/pkg/store/kv"
)

// Store is a map-backed implementation of kv.Store. Safe for concurrent
// use. Keys are kept in a sorted slice so List matches the lexicographic
// contract of the persistent backends.
type Store struct {
	mu     sync.RWMutex
	data   map[string][]byte
	keys   []string // sorted
	closed bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Get returns the value for key, or kv.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, kv.ErrStoreClosed
	}

	val, ok := s.data[key]
	if !ok {
		if synth, ok := kv.SyntheticValue(key); ok {
			return synth, nil
		}
		return nil, kv.ErrNotFound
	}

	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

// Put stores value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return kv.ErrStoreClosed
	}

	if _, exists := s.data[key]; !exists {
		idx := sort.SearchStrings(s.keys, key)
		s.keys = append(s.keys, "")
		copy(s.keys[idx+1:], s.keys[idx:])
		s.keys[idx] = key
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}

// Delete removes key. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return kv.ErrStoreClosed
	}

	if _, exists := s.data[key]; !exists {
		return nil
	}

	delete(s.data, key)
	idx := sort.SearchStrings(s.keys, key)
	if idx < len(s.keys) && s.keys[idx] == key {
		s.keys = append(s.keys[:idx], s.keys[idx+1:]...)
	}
	return nil
}

// List scans keys in lexicographic order.
func (s *Store) List(ctx context.Context, opts kv.ListOptions) (*kv.ListResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, kv.ErrStoreClosed
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = kv.DefaultListLimit
	}

	start := 0
	if opts.Cursor != "" {
		// Cursor is the last key of the previous page; resume after it.
		start = sort.SearchStrings(s.keys, opts.Cursor)
		if start < len(s.keys) && s.keys[start] == opts.Cursor {
			start++
		}
	} else if opts.Prefix != "" {
		start = sort.SearchStrings(s.keys, opts.Prefix)
	}

	result := &kv.ListResult{}
	for i := start; i < len(s.keys); i++ {
		name := s.keys[i]
		if opts.Prefix != "" && !strings.HasPrefix(name, opts.Prefix) {
			break
		}
		if len(result.Keys) == limit {
			result.Cursor = result.Keys[limit-1].Name
			return result, nil
		}
		result.Keys = append(result.Keys, kv.Key{Name: name})
	}

	result.ListComplete = true
	return result, nil
}

// Close marks the store closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
