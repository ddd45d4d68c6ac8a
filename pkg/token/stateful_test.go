package token

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	kvmemory "github.com/latchhq/latch/pkg/store/kv/memory"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(kvmemory.New())
}

func TestCreateAndConsumeIdentityClaim(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tok, err := s.Create(ctx, CreateInput{
		Action:     ActionIdentityClaim,
		CreatedBy:  "ident_admin",
		TTL:        time.Hour,
		Label:      "invite for bob",
		IdentityID: "ident_claimable",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tok.State != StateUnused {
		t.Fatalf("expected unused, got %q", tok.State)
	}
	if len(tok.ID) < 16 {
		t.Errorf("token id too short for 128 bits of entropy: %q", tok.ID)
	}

	claimed, err := s.Consume(ctx, tok.ID)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if claimed.IdentityID != "ident_claimable" {
		t.Errorf("payload lost: %+v", claimed)
	}

	if _, err := s.Consume(ctx, tok.ID); !errors.Is(err, ErrTokenUsed) {
		t.Fatalf("expected ErrTokenUsed on second consume, got %v", err)
	}
}

func TestCreateValidatesPayload(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, CreateInput{Action: ActionIdentityClaim, TTL: time.Hour}); err == nil {
		t.Fatal("identity_claim without identity id accepted")
	}
	if _, err := s.Create(ctx, CreateInput{Action: ActionBlobAccess, TTL: time.Hour}); err == nil {
		t.Fatal("blob_access without payload accepted")
	}
	if _, err := s.Create(ctx, CreateInput{Action: "teleport", TTL: time.Hour}); err == nil {
		t.Fatal("unknown action accepted")
	}
}

// Concurrent claims of one token must have exactly one winner; every
// loser observes the used state.
func TestConcurrentClaimSingleWinner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tok, err := s.Create(ctx, CreateInput{
		Action:     ActionIdentityClaim,
		TTL:        time.Hour,
		IdentityID: "ident_x",
	})
	if err != nil {
		t.Fatal(err)
	}

	const claimers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners, losers := 0, 0

	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Consume(ctx, tok.ID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case errors.Is(err, ErrTokenUsed):
				losers++
			default:
				t.Errorf("unexpected claim error: %v", err)
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("expected exactly 1 winner, got %d", winners)
	}
	if losers != claimers-1 {
		t.Errorf("expected %d losers, got %d", claimers-1, losers)
	}
}

// A consumed token whose downstream action failed is restored to unused
// and can be claimed again.
func TestRestoreAfterFailedClaim(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tok, err := s.Create(ctx, CreateInput{
		Action:     ActionIdentityClaim,
		TTL:        time.Hour,
		IdentityID: "ident_x",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Consume(ctx, tok.ID); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if err := s.Restore(ctx, tok.ID); err != nil {
		t.Fatalf("restore: %v", err)
	}

	claimed, err := s.Consume(ctx, tok.ID)
	if err != nil {
		t.Fatalf("consume after restore: %v", err)
	}
	if claimed.State != StateUsed {
		t.Errorf("expected used after second consume, got %q", claimed.State)
	}
}

func TestRestoreLeavesUnusedAndRevokedAlone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	unused, err := s.Create(ctx, CreateInput{Action: ActionIdentityClaim, TTL: time.Hour, IdentityID: "i"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Restore(ctx, unused.ID); err != nil {
		t.Fatalf("restore unused: %v", err)
	}
	if got, err := s.Get(ctx, unused.ID); err != nil || got.State != StateUnused {
		t.Fatalf("unused token changed state: %v %v", got, err)
	}

	revoked, err := s.Create(ctx, CreateInput{Action: ActionIdentityClaim, TTL: time.Hour, IdentityID: "i"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Revoke(ctx, revoked.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.Restore(ctx, revoked.ID); err != nil {
		t.Fatalf("restore revoked: %v", err)
	}
	if _, err := s.Consume(ctx, revoked.ID); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("revoked token resurrected: %v", err)
	}
}

func TestConsumeExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tok, err := s.Create(ctx, CreateInput{
		Action:     ActionIdentityClaim,
		TTL:        -time.Minute,
		IdentityID: "ident_x",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Consume(ctx, tok.ID); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tok, err := s.Create(ctx, CreateInput{
		Action: ActionBlobAccess,
		TTL:    time.Hour,
		Blob:   &BlobPayload{Bucket: "b", Key: "k"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Revoke(ctx, tok.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := s.Consume(ctx, tok.ID); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}

	// Used tokens cannot be revoked after the fact.
	used, err := s.Create(ctx, CreateInput{Action: ActionIdentityClaim, TTL: time.Hour, IdentityID: "i"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Consume(ctx, used.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.Revoke(ctx, used.ID); !errors.Is(err, ErrTokenUsed) {
		t.Fatalf("expected ErrTokenUsed, got %v", err)
	}
}

func TestConsumeMissing(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Consume(context.Background(), "no-such-token"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestSafeMetadataHidesPayload(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tok, err := s.Create(ctx, CreateInput{
		Action: ActionBlobAccess,
		TTL:    time.Hour,
		Label:  "shared file",
		Blob:   &BlobPayload{Bucket: "secret-bucket", Key: "secret/key", ContentType: "image/png", ContentLength: 42},
	})
	if err != nil {
		t.Fatal(err)
	}

	safe := tok.Safe()
	if safe.Label != "shared file" || safe.Action != ActionBlobAccess {
		t.Errorf("metadata missing: %+v", safe)
	}
	if safe.ContentType != "image/png" || safe.ContentLength != 42 {
		t.Errorf("content metadata missing: %+v", safe)
	}
}

func TestListByCreator(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.Create(ctx, CreateInput{
			Action:     ActionIdentityClaim,
			CreatedBy:  "ident_a",
			TTL:        time.Hour,
			IdentityID: "ident_x",
		}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Create(ctx, CreateInput{
		Action:     ActionIdentityClaim,
		CreatedBy:  "ident_b",
		TTL:        time.Hour,
		IdentityID: "ident_y",
	}); err != nil {
		t.Fatal(err)
	}

	tokens, err := s.ListByCreator(ctx, "ident_a")
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
}
