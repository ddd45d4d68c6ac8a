package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	kvmemory "github.com/latchhq/latch/pkg/store/kv/memory"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(kvmemory.New())
}

func TestCreateIdentityReturnsSecretOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ident, firstCred, secret, err := s.CreateIdentity(ctx, CreateIdentityInput{Type: TypeUser, DisplayName: "alice"})
	if err != nil {
		t.Fatalf("create identity: %v", err)
	}
	if !strings.HasPrefix(ident.ID, "ident_") {
		t.Errorf("unexpected identity id %q", ident.ID)
	}
	if ident.Status != StatusActive {
		t.Errorf("expected active status, got %q", ident.Status)
	}
	if firstCred == nil || firstCred.Type != CredentialTypeAPIKey || firstCred.IdentityID != ident.ID {
		t.Errorf("unexpected first credential %+v", firstCred)
	}
	if !strings.HasPrefix(secret, "lk_") {
		t.Errorf("unexpected secret prefix in %q", secret)
	}

	// The plaintext secret must authenticate; the stored rows must not
	// contain it.
	cred, got, err := s.LookupCredential(ctx, secret)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ID != ident.ID {
		t.Errorf("lookup returned wrong identity: %q", got.ID)
	}
	if cred.SecretHash == secret || cred.SecretHash != HashSecret(secret) {
		t.Errorf("secret not stored as hash: %q", cred.SecretHash)
	}
}

func TestCreateIdentityRejectsAppType(t *testing.T) {
	s := newTestStore(t)

	if _, _, _, err := s.CreateIdentity(context.Background(), CreateIdentityInput{Type: TypeApp}); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if _, _, _, err := s.CreateIdentity(context.Background(), CreateIdentityInput{Type: "robot"}); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestLookupCredentialUnknownSecret(t *testing.T) {
	s := newTestStore(t)

	if _, _, err := s.LookupCredential(context.Background(), "lk_never_issued"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestRevokedCredentialRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ident, _, secret, err := s.CreateIdentity(ctx, CreateIdentityInput{Type: TypeService, DisplayName: "svc"})
	if err != nil {
		t.Fatal(err)
	}

	cred, _, err := s.LookupCredential(ctx, secret)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RevokeCredential(ctx, cred.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if _, _, err := s.LookupCredential(ctx, secret); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential after revoke, got %v", err)
	}

	// Other credentials of the identity still work.
	_, secret2, err := s.CreateCredential(ctx, ident.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.LookupCredential(ctx, secret2); err != nil {
		t.Fatalf("fresh credential rejected: %v", err)
	}
}

func TestExpiredCredentialRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ident, _, _, err := s.CreateIdentity(ctx, CreateIdentityInput{Type: TypeUser, DisplayName: "u"})
	if err != nil {
		t.Fatal(err)
	}

	past := time.Now().Add(-time.Hour)
	_, secret, err := s.CreateCredential(ctx, ident.ID, &past)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := s.LookupCredential(ctx, secret); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential for expired credential, got %v", err)
	}
}

func TestRotateCredential(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _, secret, err := s.CreateIdentity(ctx, CreateIdentityInput{Type: TypeUser, DisplayName: "u"})
	if err != nil {
		t.Fatal(err)
	}
	cred, _, err := s.LookupCredential(ctx, secret)
	if err != nil {
		t.Fatal(err)
	}

	newCred, newSecret, err := s.RotateCredential(ctx, cred.ID)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if newCred.ID == cred.ID {
		t.Error("rotation reused credential id")
	}

	if _, _, err := s.LookupCredential(ctx, secret); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("old secret still valid after rotation: %v", err)
	}
	if _, _, err := s.LookupCredential(ctx, newSecret); err != nil {
		t.Fatalf("new secret rejected: %v", err)
	}
}

func TestDeleteIdentityRevokesEverything(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ident, _, secret, err := s.CreateIdentity(ctx, CreateIdentityInput{Type: TypeUser, DisplayName: "doomed"})
	if err != nil {
		t.Fatal(err)
	}
	_, secret2, err := s.CreateCredential(ctx, ident.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateGrant(ctx, Grant{
		IdentityID: ident.ID,
		Capability: CapChannelRead,
		Source:     GrantSourceExplicit,
	}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteIdentity(ctx, ident.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := s.GetIdentity(ctx, ident.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusDeleted {
		t.Errorf("expected deleted status, got %q", got.Status)
	}

	for _, sec := range []string{secret, secret2} {
		if _, _, err := s.LookupCredential(ctx, sec); !errors.Is(err, ErrInvalidCredential) {
			t.Errorf("credential survived identity delete: %v", err)
		}
	}

	grants, err := s.ListGrants(ctx, ident.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(grants) != 0 {
		t.Errorf("grants survived identity delete: %+v", grants)
	}
}

func TestHasAnyIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	any, err := s.HasAnyIdentity(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if any {
		t.Fatal("expected empty store")
	}

	if _, _, _, err := s.CreateIdentity(ctx, CreateIdentityInput{Type: TypeUser, DisplayName: "first"}); err != nil {
		t.Fatal(err)
	}

	any, err = s.HasAnyIdentity(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !any {
		t.Fatal("expected identity to be visible")
	}
}

func TestRegisterAppIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, secret, err := s.RegisterApp(ctx, RegisterAppInput{
		Origin:       "https://App.Example.com:8443",
		Capabilities: []string{CapKVRead},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if secret == "" {
		t.Fatal("first registration must return a secret")
	}
	if first.AppConfig.Namespace != "app_example_com_8443" {
		t.Errorf("unexpected derived namespace %q", first.AppConfig.Namespace)
	}

	second, secret2, err := s.RegisterApp(ctx, RegisterAppInput{
		Origin:       "https://app.example.com:8443",
		Capabilities: []string{CapKVRead, CapKVWrite},
	})
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if secret2 != "" {
		t.Error("re-registration must not mint a new secret")
	}
	if second.ID != first.ID {
		t.Errorf("re-registration created a new identity: %q vs %q", second.ID, first.ID)
	}

	caps := second.AppConfig.GrantedCapabilities
	if len(caps) != 2 {
		t.Fatalf("expected capability union of 2, got %v", caps)
	}
}

func TestClaimableIdentityActivation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ident, err := s.CreateClaimableIdentity(ctx, "invitee", "ident_admin")
	if err != nil {
		t.Fatal(err)
	}
	if ident.Status != StatusClaimable {
		t.Fatalf("expected claimable, got %q", ident.Status)
	}

	activated, err := s.ActivateIdentity(ctx, ident.ID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if activated.Status != StatusActive {
		t.Errorf("expected active, got %q", activated.Status)
	}

	// Activating twice fails: claimable is a one-way gate.
	if _, err := s.ActivateIdentity(ctx, ident.ID); !errors.Is(err, ErrIdentityInactive) {
		t.Fatalf("expected ErrIdentityInactive, got %v", err)
	}
}

func TestDeriveAppNamespace(t *testing.T) {
	tests := []struct {
		origin string
		want   string
	}{
		{"https://example.com", "example_com"},
		{"http://localhost:3000", "localhost_3000"},
		{"HTTPS://My.App.IO", "my_app_io"},
		{"example.com", "example_com"},
	}
	for _, tt := range tests {
		if got := DeriveAppNamespace(tt.origin); got != tt.want {
			t.Errorf("DeriveAppNamespace(%q) = %q, want %q", tt.origin, got, tt.want)
		}
	}
}
