package shortlink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/latchhq/latch/internal/base62"
	"github.com/latchhq/latch/pkg/store/kv"
)

const keyPrefix = "__SHORTLINK:"

func linkKey(id string) string { return keyPrefix + id }

// NewID generates a base62 short link id from 64 random bits.
func NewID() string {
	return base62.Random(8)
}

// KVStore implements Store on top of a kv.Store.
type KVStore struct {
	kv kv.Store
}

// NewKVStore creates a short link store backed by the given KV store.
func NewKVStore(store kv.Store) *KVStore {
	return &KVStore{kv: store}
}

// Create stores targetUrl under a fresh random id.
func (s *KVStore) Create(ctx context.Context, targetURL string) (*Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	link := &Link{
		ID:        NewID(),
		TargetURL: targetURL,
		CreatedAt: time.Now().UTC(),
	}

	raw, err := json.Marshal(link)
	if err != nil {
		return nil, fmt.Errorf("failed to encode short link: %w", err)
	}
	if err := s.kv.Put(ctx, linkKey(link.ID), raw); err != nil {
		return nil, fmt.Errorf("failed to store short link: %w", err)
	}
	return link, nil
}

// Resolve returns the link for id.
func (s *KVStore) Resolve(ctx context.Context, id string) (*Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := s.kv.Get(ctx, linkKey(id))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load short link: %w", err)
	}

	var link Link
	if err := json.Unmarshal(raw, &link); err != nil {
		return nil, fmt.Errorf("failed to decode short link: %w", err)
	}
	return &link, nil
}

// Delete removes the link.
func (s *KVStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.kv.Get(ctx, linkKey(id)); errors.Is(err, kv.ErrNotFound) {
		return ErrNotFound
	} else if err != nil {
		return fmt.Errorf("failed to load short link: %w", err)
	}

	if err := s.kv.Delete(ctx, linkKey(id)); err != nil {
		return fmt.Errorf("failed to delete short link: %w", err)
	}
	return nil
}

// List scans all links in id order.
func (s *KVStore) List(ctx context.Context) ([]Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var links []Link
	cursor := ""
	for {
		page, err := s.kv.List(ctx, kv.ListOptions{Prefix: keyPrefix, Cursor: cursor})
		if err != nil {
			return nil, fmt.Errorf("failed to scan short links: %w", err)
		}

		for _, key := range page.Keys {
			link, err := s.Resolve(ctx, strings.TrimPrefix(key.Name, keyPrefix))
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			links = append(links, *link)
		}

		if page.ListComplete {
			return links, nil
		}
		cursor = page.Cursor
	}
}

// Ensure KVStore implements Store.
var _ Store = (*KVStore)(nil)
