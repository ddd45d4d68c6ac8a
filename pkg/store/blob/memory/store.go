// Package memory provides an in-memory blob.Store for tests and
// single-process development setups.
package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/latchhq/latch/pkg/store/blob"
)

type object struct {
	data        []byte
	contentType string
}

// Store is a map-backed implementation of blob.Store.
type Store struct {
	mu      sync.RWMutex
	objects map[string]object
	closed  bool
}

// New creates an empty in-memory blob store.
func New() *Store {
	return &Store{objects: make(map[string]object)}
}

// Get opens the object for reading.
func (s *Store) Get(ctx context.Context, key string) (*blob.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, blob.ErrStoreClosed
	}

	obj, ok := s.objects[key]
	if !ok {
		return nil, blob.ErrNotFound
	}

	return &blob.Object{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
	}, nil
}

// Put buffers body into the map.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, opts blob.PutOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return blob.ErrStoreClosed
	}

	s.objects[key] = object{data: data, contentType: opts.ContentType}
	return nil
}

// Delete removes the object. Missing objects are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return blob.ErrStoreClosed
	}

	delete(s.objects, key)
	return nil
}

// List scans objects in lexicographic key order.
func (s *Store) List(ctx context.Context, opts blob.ListOptions) (*blob.ListResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, blob.ErrStoreClosed
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = blob.DefaultListLimit
	}

	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, opts.Prefix) && k > opts.Cursor {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	result := &blob.ListResult{}
	for _, k := range keys {
		if len(result.Objects) == limit {
			result.Truncated = true
			result.Cursor = result.Objects[limit-1].Key
			return result, nil
		}
		result.Objects = append(result.Objects, blob.ObjectInfo{
			Key:  k,
			Size: int64(len(s.objects[k].data)),
		})
	}
	return result, nil
}

// Close marks the store closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
