package fs

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/latchhq/latch/pkg/store/blob"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(DefaultConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	body := "hello latch"
	err := s.Put(ctx, "ns/file.txt", strings.NewReader(body), blob.PutOptions{
		ContentType:   "text/plain",
		ContentLength: int64(len(body)),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	obj, err := s.Get(ctx, "ns/file.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != body {
		t.Errorf("expected %q, got %q", body, data)
	}
	if obj.Size != int64(len(body)) {
		t.Errorf("expected size %d, got %d", len(body), obj.Size)
	}
	if obj.ContentType != "text/plain" {
		t.Errorf("expected content type text/plain, got %q", obj.ContentType)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Get(context.Background(), "missing"); err != blob.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRemovesObjectAndSidecar(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "a/b", strings.NewReader("x"), blob.PutOptions{ContentType: "text/plain"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "a/b"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "a/b"); err != blob.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	// Idempotent.
	if err := s.Delete(ctx, "a/b"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestKeyTraversalRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Put(ctx, "../escape", strings.NewReader("x"), blob.PutOptions{})
	if err == nil {
		t.Fatal("expected error for traversal key")
	}
}

func TestListSkipsSidecars(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"ns/a", "ns/b", "other/c"} {
		if err := s.Put(ctx, key, strings.NewReader("data"), blob.PutOptions{ContentType: "text/plain"}); err != nil {
			t.Fatal(err)
		}
	}

	res, err := s.List(ctx, blob.ListOptions{Prefix: "ns/"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Objects) != 2 {
		t.Fatalf("expected 2 objects, got %d: %+v", len(res.Objects), res.Objects)
	}
	if res.Objects[0].Key != "ns/a" || res.Objects[1].Key != "ns/b" {
		t.Errorf("unexpected keys: %+v", res.Objects)
	}
	if res.Truncated {
		t.Error("expected untruncated listing")
	}
}

func TestListPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"p/1", "p/2", "p/3"} {
		if err := s.Put(ctx, key, strings.NewReader("data"), blob.PutOptions{}); err != nil {
			t.Fatal(err)
		}
	}

	res, err := s.List(ctx, blob.ListOptions{Prefix: "p/", Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Truncated || res.Cursor == "" {
		t.Fatalf("expected truncated page with cursor, got %+v", res)
	}

	res2, err := s.List(ctx, blob.ListOptions{Prefix: "p/", Limit: 2, Cursor: res.Cursor})
	if err != nil {
		t.Fatal(err)
	}
	if res2.Truncated || len(res2.Objects) != 1 || res2.Objects[0].Key != "p/3" {
		t.Fatalf("unexpected second page: %+v", res2)
	}
}
