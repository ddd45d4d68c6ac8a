// Package fs provides a filesystem-backed blob.Store. Objects are stored
// as files with the key as the relative path; content type lives in a
// sidecar .meta file next to each object.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/latchhq/latch/pkg/store/blob"
)

const metaSuffix = ".latchmeta"

type objectMeta struct {
	ContentType string `json:"contentType,omitempty"`
}

// Config holds configuration for the filesystem blob store.
type Config struct {
	// BasePath is the root directory for object storage.
	BasePath string

	// CreateDir creates the base directory if it doesn't exist.
	// Default: true.
	CreateDir bool

	// DirMode is the permission mode for created directories.
	// Default: 0755.
	DirMode os.FileMode

	// FileMode is the permission mode for created files.
	// Default: 0644.
	FileMode os.FileMode
}

// DefaultConfig returns the default configuration.
func DefaultConfig(basePath string) Config {
	return Config{
		BasePath:  basePath,
		CreateDir: true,
		DirMode:   0755,
		FileMode:  0644,
	}
}

// Store is a filesystem-backed implementation of blob.Store.
type Store struct {
	mu       sync.RWMutex
	basePath string
	fileMode os.FileMode
	closed   bool
}

// New creates a filesystem blob store with the given configuration.
func New(cfg Config) (*Store, error) {
	if cfg.BasePath == "" {
		return nil, errors.New("base path is required")
	}
	if cfg.DirMode == 0 {
		cfg.DirMode = 0755
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0644
	}

	if cfg.CreateDir {
		if err := os.MkdirAll(cfg.BasePath, cfg.DirMode); err != nil {
			return nil, err
		}
	}

	info, err := os.Stat(cfg.BasePath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("base path is not a directory")
	}

	return &Store{basePath: cfg.BasePath, fileMode: cfg.FileMode}, nil
}

// objectPath maps a key to its filesystem path. Keys use forward slashes
// as separators; path traversal segments are rejected by cleanPath.
func (s *Store) objectPath(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", errors.New("invalid object key")
	}
	return filepath.Join(s.basePath, cleaned), nil
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

	path, err := s.objectPath(key)
	if err != nil {
		return nil, blob.ErrNotFound
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, blob.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	var meta objectMeta
	if raw, err := os.ReadFile(path + metaSuffix); err == nil {
		_ = json.Unmarshal(raw, &meta)
	}

	return &blob.Object{
		Body:        f,
		Size:        info.Size(),
		ContentType: meta.ContentType,
	}, nil
}

// Put streams body to a temporary file, then renames it into place.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, opts blob.PutOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return blob.ErrStoreClosed
	}

	path, err := s.objectPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, s.fileMode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if opts.ContentType != "" {
		raw, err := json.Marshal(objectMeta{ContentType: opts.ContentType})
		if err == nil {
			err = os.WriteFile(path+metaSuffix, raw, s.fileMode)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// Delete removes the object and its sidecar. Missing objects are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return blob.ErrStoreClosed
	}

	path, err := s.objectPath(key)
	if err != nil {
		return nil
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	_ = os.Remove(path + metaSuffix)
	return nil
}

// List walks the base directory and returns object keys in order.
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

	type entry struct {
		key  string
		size int64
	}
	var entries []entry

	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, metaSuffix) || strings.HasSuffix(path, ".tmp") {
			return nil
		}

		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, opts.Prefix) || key <= opts.Cursor {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, entry{key: key, size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	result := &blob.ListResult{}
	for _, e := range entries {
		if len(result.Objects) == limit {
			result.Truncated = true
			result.Cursor = result.Objects[limit-1].Key
			return result, nil
		}
		result.Objects = append(result.Objects, blob.ObjectInfo{Key: e.key, Size: e.size})
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
