package channel

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/latchhq/latch/pkg/store/kv"
	kvmemory "github.com/latchhq/latch/pkg/store/kv/memory"
)

func newTestStore(t *testing.T) *KVStore {
	t.Helper()
	return NewKVStore(kvmemory.New())
}

func mustCreate(t *testing.T, s *KVStore, id string) {
	t.Helper()
	if _, err := s.Create(context.Background(), id, "test", "ns1", NewSecret()); err != nil {
		t.Fatalf("create channel: %v", err)
	}
}

func TestCreateAndGetMetadata(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	secret := NewSecret()
	meta, err := s.Create(ctx, "abc123def456", "general", "ns1", secret)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if meta.ID != "abc123def456" || meta.Name != "general" || meta.OwnerNamespace != "ns1" {
		t.Errorf("unexpected metadata: %+v", meta)
	}

	got, err := s.GetMetadata(ctx, "abc123def456")
	if err != nil {
		t.Fatalf("get metadata: %v", err)
	}
	if got.Secret != secret {
		t.Error("secret not round-tripped")
	}

	if _, err := s.Create(ctx, "abc123def456", "dup", "ns1", NewSecret()); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestGetMetadataMissing(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetMetadata(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendAssignsSequentialSeqs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "ch1")

	for i := 1; i <= 3; i++ {
		event, err := s.Append(ctx, "ch1", AppendInput{AuthorID: "alice", Content: fmt.Sprintf("msg %d", i)})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if event.Seq != uint64(i) {
			t.Errorf("expected seq %d, got %d", i, event.Seq)
		}
		if event.ID == "" {
			t.Error("event id not assigned")
		}
		if event.Type != EventTypeMessage {
			t.Errorf("unexpected type %q", event.Type)
		}
	}
}

func TestAppendMissingChannel(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Append(context.Background(), "ghost", AppendInput{AuthorID: "a", Content: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendContentTooLong(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "ch1")

	long := make([]rune, MaxContentLength+1)
	for i := range long {
		long[i] = 'x'
	}

	_, err := s.Append(context.Background(), "ch1", AppendInput{AuthorID: "a", Content: string(long)})
	if !errors.Is(err, ErrContentTooLong) {
		t.Fatalf("expected ErrContentTooLong, got %v", err)
	}
}

// Concurrent appends to one channel must produce gap-free, unique,
// strictly increasing sequence numbers.
func TestConcurrentAppendsGapFree(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "ch1")

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	var mu sync.Mutex
	seqs := make([]uint64, 0, writers*perWriter)

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				event, err := s.Append(ctx, "ch1", AppendInput{
					AuthorID: fmt.Sprintf("writer-%d", w),
					Content:  "hello",
				})
				if err != nil {
					t.Errorf("append: %v", err)
					return
				}
				mu.Lock()
				seqs = append(seqs, event.Seq)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	if len(seqs) != writers*perWriter {
		t.Fatalf("expected %d events, got %d", writers*perWriter, len(seqs))
	}

	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	for i, seq := range seqs {
		if seq != uint64(i+1) {
			t.Fatalf("sequence gap or duplicate at index %d: got %d", i, seq)
		}
	}
}

func TestTombstoneReadSemantics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "ch1")

	for _, content := range []string{"a", "b", "c"} {
		if _, err := s.Append(ctx, "ch1", AppendInput{AuthorID: "admin", Content: content}); err != nil {
			t.Fatal(err)
		}
	}

	tombstone, err := s.AppendDeletion(ctx, "ch1", DeletionInput{AuthorID: "admin", TargetSeq: 2})
	if err != nil {
		t.Fatalf("append deletion: %v", err)
	}
	if tombstone.Type != EventTypeDeletion || tombstone.Seq != 4 {
		t.Fatalf("unexpected tombstone: %+v", tombstone)
	}

	// Default read hides the deleted event and the tombstone.
	res, err := s.Read(ctx, "ch1", ReadOptions{Limit: 10})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(res.Events) != 2 || res.Events[0].Seq != 1 || res.Events[1].Seq != 3 {
		t.Fatalf("unexpected visible events: %+v", res.Events)
	}
	if res.HasMore {
		t.Error("expected no more events")
	}

	// IncludeDeleted surfaces the target flagged, still no tombstone.
	res, err = s.Read(ctx, "ch1", ReadOptions{Limit: 10, IncludeDeleted: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Events) != 3 {
		t.Fatalf("expected 3 events, got %+v", res.Events)
	}
	if !res.Events[1].Deleted || res.Events[1].Seq != 2 {
		t.Errorf("expected seq 2 flagged deleted, got %+v", res.Events[1])
	}
	for _, event := range res.Events {
		if event.Type == EventTypeDeletion {
			t.Errorf("tombstone leaked into read: %+v", event)
		}
	}
}

func TestAppendDeletionInvalidTarget(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "ch1")

	if _, err := s.Append(ctx, "ch1", AppendInput{AuthorID: "a", Content: "x"}); err != nil {
		t.Fatal(err)
	}

	// Future seq.
	if _, err := s.AppendDeletion(ctx, "ch1", DeletionInput{AuthorID: "a", TargetSeq: 5}); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget for future seq, got %v", err)
	}

	// Zero seq.
	if _, err := s.AppendDeletion(ctx, "ch1", DeletionInput{AuthorID: "a", TargetSeq: 0}); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget for zero seq, got %v", err)
	}

	// Tombstoning a tombstone.
	if _, err := s.AppendDeletion(ctx, "ch1", DeletionInput{AuthorID: "a", TargetSeq: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AppendDeletion(ctx, "ch1", DeletionInput{AuthorID: "a", TargetSeq: 2}); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget for deletion target, got %v", err)
	}
}

func TestReadAfterSeqAndHasMore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "ch1")

	for i := 0; i < 10; i++ {
		if _, err := s.Append(ctx, "ch1", AppendInput{AuthorID: "a", Content: fmt.Sprintf("%d", i)}); err != nil {
			t.Fatal(err)
		}
	}

	res, err := s.Read(ctx, "ch1", ReadOptions{AfterSeq: 4, Limit: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(res.Events))
	}
	for i, event := range res.Events {
		if event.Seq != uint64(5+i) {
			t.Errorf("expected seq %d, got %d", 5+i, event.Seq)
		}
	}
	if !res.HasMore {
		t.Error("expected HasMore with events remaining")
	}

	res, err = s.Read(ctx, "ch1", ReadOptions{AfterSeq: 8, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Events) != 2 || res.HasMore {
		t.Fatalf("unexpected tail read: %+v", res)
	}
}

func TestReadDefaultLimitClamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "ch1")

	for i := 0; i < MaxReadLimit+20; i++ {
		if _, err := s.Append(ctx, "ch1", AppendInput{AuthorID: "a", Content: "x"}); err != nil {
			t.Fatal(err)
		}
	}

	res, err := s.Read(ctx, "ch1", ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Events) != DefaultReadLimit || !res.HasMore {
		t.Fatalf("expected default limit page, got %d events hasMore=%v", len(res.Events), res.HasMore)
	}

	res, err = s.Read(ctx, "ch1", ReadOptions{Limit: 10 * MaxReadLimit})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Events) != MaxReadLimit {
		t.Fatalf("expected clamp to %d, got %d", MaxReadLimit, len(res.Events))
	}
}

func TestGetEvent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "ch1")

	appended, err := s.Append(ctx, "ch1", AppendInput{AuthorID: "alice", Content: "hi"})
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetEvent(ctx, "ch1", appended.Seq)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != appended.ID || got.AuthorID != "alice" || got.Content != "hi" {
		t.Errorf("unexpected event: %+v", got)
	}

	if _, err := s.GetEvent(ctx, "ch1", 99); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestDeletePurgesEverything(t *testing.T) {
	kvStore := kvmemory.New()
	s := NewKVStore(kvStore)
	ctx := context.Background()
	mustCreate(t, s, "ch1")

	for i := 0; i < 5; i++ {
		if _, err := s.Append(ctx, "ch1", AppendInput{AuthorID: "a", Content: "x"}); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.Delete(ctx, "ch1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.GetMetadata(ctx, "ch1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// No channel keys or index rows survive.
	for _, prefix := range []string{"channel:ch1:", "__CHANNEL_OWNER:ch1", "__CHANNEL_INDEX:ns1:"} {
		page, err := kvStore.List(ctx, kv.ListOptions{Prefix: prefix})
		if err != nil {
			t.Fatal(err)
		}
		if len(page.Keys) != 0 {
			t.Errorf("keys left under %q: %+v", prefix, page.Keys)
		}
	}

	if err := s.Delete(ctx, "ch1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListByNamespace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"aaa111aaa111", "bbb222bbb222"} {
		if _, err := s.Create(ctx, id, "c-"+id, "ns1", NewSecret()); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Create(ctx, "ccc333ccc333", "other", "ns2", NewSecret()); err != nil {
		t.Fatal(err)
	}

	channels, err := s.ListByNamespace(ctx, "ns1")
	if err != nil {
		t.Fatal(err)
	}
	if len(channels) != 2 {
		t.Fatalf("expected 2 channels, got %+v", channels)
	}
	for _, meta := range channels {
		if meta.OwnerNamespace != "ns1" {
			t.Errorf("wrong namespace: %+v", meta)
		}
	}

	empty, err := s.ListByNamespace(ctx, "ns3")
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no channels, got %+v", empty)
	}
}
