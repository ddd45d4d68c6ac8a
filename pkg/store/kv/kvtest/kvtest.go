// Package kvtest provides a conformance suite that every kv.Store backend
// must pass. Backend test files construct a store and call Run.
package kvtest

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/latchhq/latch/pkg/store/kv"
)

// Factory builds a fresh, empty store for one subtest.
type Factory func(t *testing.T) kv.Store

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		_, err := s.Get(context.Background(), "nope")
		if err != kv.ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		cases := [][]byte{
			[]byte("plain"),
			[]byte(""),
			[]byte{0x00, 0xff, 0x10},
			bytes.Repeat([]byte("x"), 64*1024),
		}
		for i, val := range cases {
			key := fmt.Sprintf("ns:key-%d", i)
			if err := s.Put(ctx, key, val); err != nil {
				t.Fatalf("put %q: %v", key, err)
			}
			got, err := s.Get(ctx, key)
			if err != nil {
				t.Fatalf("get %q: %v", key, err)
			}
			if !bytes.Equal(got, val) {
				t.Errorf("round trip mismatch for %q: got %d bytes, want %d", key, len(got), len(val))
			}
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		if err := s.Put(ctx, "k", []byte("one")); err != nil {
			t.Fatal(err)
		}
		if err := s.Put(ctx, "k", []byte("two")); err != nil {
			t.Fatal(err)
		}
		got, err := s.Get(ctx, "k")
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "two" {
			t.Errorf("expected overwrite to win, got %q", got)
		}
	})

	t.Run("DeleteIdempotent", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		if err := s.Put(ctx, "k", []byte("v")); err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, "k"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Get(ctx, "k"); err != kv.ErrNotFound {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		// Deleting again must not fail.
		if err := s.Delete(ctx, "k"); err != nil {
			t.Fatalf("second delete: %v", err)
		}
	})

	t.Run("OrgPermissionsSynthesized", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		got, err := s.Get(context.Background(), kv.OrgPermissionsKey)
		if err != nil {
			t.Fatalf("expected synthesized value, got error %v", err)
		}
		if string(got) != "{}" {
			t.Errorf("expected %q, got %q", "{}", got)
		}
	})

	t.Run("ListPrefixOrdered", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		keys := []string{"a:3", "a:1", "b:1", "a:2", "c:9"}
		for _, k := range keys {
			if err := s.Put(ctx, k, []byte("v")); err != nil {
				t.Fatal(err)
			}
		}

		res, err := s.List(ctx, kv.ListOptions{Prefix: "a:"})
		if err != nil {
			t.Fatal(err)
		}
		if !res.ListComplete {
			t.Error("expected complete listing")
		}
		want := []string{"a:1", "a:2", "a:3"}
		if len(res.Keys) != len(want) {
			t.Fatalf("expected %d keys, got %d", len(want), len(res.Keys))
		}
		for i, k := range res.Keys {
			if k.Name != want[i] {
				t.Errorf("key %d: expected %q, got %q", i, want[i], k.Name)
			}
		}
	})

	t.Run("ListCursorPaging", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		const total = 25
		for i := 0; i < total; i++ {
			if err := s.Put(ctx, fmt.Sprintf("p:%03d", i), []byte("v")); err != nil {
				t.Fatal(err)
			}
		}

		var collected []string
		cursor := ""
		for {
			res, err := s.List(ctx, kv.ListOptions{Prefix: "p:", Limit: 10, Cursor: cursor})
			if err != nil {
				t.Fatal(err)
			}
			for _, k := range res.Keys {
				collected = append(collected, k.Name)
			}
			if res.ListComplete {
				break
			}
			if res.Cursor == "" {
				t.Fatal("truncated result without cursor")
			}
			cursor = res.Cursor
		}

		if len(collected) != total {
			t.Fatalf("expected %d keys across pages, got %d", total, len(collected))
		}
		for i := 1; i < len(collected); i++ {
			if collected[i-1] >= collected[i] {
				t.Errorf("keys out of order: %q before %q", collected[i-1], collected[i])
			}
		}
	})
}
