package shortlink

import (
	"context"
	"errors"
	"testing"

	kvmemory "github.com/latchhq/latch/pkg/store/kv/memory"
)

func TestCreateResolveRoundTrip(t *testing.T) {
	s := NewKVStore(kvmemory.New())
	ctx := context.Background()

	link, err := s.Create(ctx, "https://example.com/some/long/path?x=1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if link.ID == "" {
		t.Fatal("empty link id")
	}

	got, err := s.Resolve(ctx, link.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.TargetURL != "https://example.com/some/long/path?x=1" {
		t.Errorf("unexpected target: %q", got.TargetURL)
	}
}

func TestResolveMissing(t *testing.T) {
	s := NewKVStore(kvmemory.New())

	if _, err := s.Resolve(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := NewKVStore(kvmemory.New())
	ctx := context.Background()

	link, err := s.Create(ctx, "https://example.com")
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(ctx, link.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Resolve(ctx, link.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, link.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestList(t *testing.T) {
	s := NewKVStore(kvmemory.New())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.Create(ctx, "https://example.com"); err != nil {
			t.Fatal(err)
		}
	}

	links, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(links))
	}
	for i := 1; i < len(links); i++ {
		if links[i-1].ID >= links[i].ID {
			t.Errorf("links not ordered by id: %q >= %q", links[i-1].ID, links[i].ID)
		}
	}
}
