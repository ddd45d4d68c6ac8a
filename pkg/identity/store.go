package identity

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/latchhq/latch/pkg/store/kv"
)

// Reserved KV prefixes used by the identity store.
const (
	identityPrefix     = "__IDENTITY:"
	credentialPrefix   = "__CREDENTIAL:"
	credentialIDPrefix = "__CREDENTIAL_ID:"
	grantPrefix        = "__GRANT:"
	appOriginPrefix    = "__APP_ORIGIN:"
)

func identityKey(id string) string       { return identityPrefix + id }
func credentialKey(hash string) string   { return credentialPrefix + hash }
func credentialIDKey(id string) string   { return credentialIDPrefix + id }
func appOriginKey(namespace string) string {
	return appOriginPrefix + namespace
}

// Grant rows are keyed by identity so per-identity scans stay cheap while
// remaining inside the __GRANT: reserved prefix.
func grantKey(identityID, grantID string) string {
	return grantPrefix + identityID + ":" + grantID
}

// HashSecret returns the SHA-256 hex digest of a plaintext secret.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Store persists identities, credentials and grants in a kv.Store.
type Store struct {
	kv kv.Store
}

// NewStore creates an identity store backed by the given KV store.
func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// CreateIdentityInput carries the identity-create parameters.
type CreateIdentityInput struct {
	Type        string
	DisplayName string
	CreatedBy   string
}

// CreateIdentity writes a new active identity and its first credential.
// The plaintext secret is returned exactly once and never stored.
func (s *Store) CreateIdentity(ctx context.Context, in CreateIdentityInput) (*Identity, *Credential, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, "", err
	}

	switch in.Type {
	case TypeUser, TypeService, TypeAgent:
	case TypeApp:
		// Apps go through RegisterApp so the namespace derivation and
		// origin index stay consistent.
		return nil, nil, "", ErrInvalidType
	default:
		return nil, nil, "", ErrInvalidType
	}

	ident := &Identity{
		ID:          NewIdentityID(),
		Type:        in.Type,
		DisplayName: in.DisplayName,
		Status:      StatusActive,
		CreatedAt:   time.Now().UTC(),
		CreatedBy:   in.CreatedBy,
	}

	if err := s.putIdentity(ctx, ident); err != nil {
		return nil, nil, "", err
	}

	cred, secret, err := s.CreateCredential(ctx, ident.ID, nil)
	if err != nil {
		return nil, nil, "", err
	}
	return ident, cred, secret, nil
}

// CreateClaimableIdentity writes an identity in claimable state. No
// credential exists until the matching claim token is redeemed.
func (s *Store) CreateClaimableIdentity(ctx context.Context, displayName, createdBy string) (*Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ident := &Identity{
		ID:          NewIdentityID(),
		Type:        TypeUser,
		DisplayName: displayName,
		Status:      StatusClaimable,
		CreatedAt:   time.Now().UTC(),
		CreatedBy:   createdBy,
	}
	if err := s.putIdentity(ctx, ident); err != nil {
		return nil, err
	}
	return ident, nil
}

func (s *Store) putIdentity(ctx context.Context, ident *Identity) error {
	raw, err := json.Marshal(ident)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	if err := s.kv.Put(ctx, identityKey(ident.ID), raw); err != nil {
		return fmt.Errorf("failed to store identity: %w", err)
	}
	return nil
}

// GetIdentity returns the identity for id.
func (s *Store) GetIdentity(ctx context.Context, id string) (*Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := s.kv.Get(ctx, identityKey(id))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}

	var ident Identity
	if err := json.Unmarshal(raw, &ident); err != nil {
		return nil, fmt.Errorf("failed to decode identity: %w", err)
	}
	return &ident, nil
}

// ListIdentities scans all identities.
func (s *Store) ListIdentities(ctx context.Context) ([]Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var identities []Identity
	cursor := ""
	for {
		page, err := s.kv.List(ctx, kv.ListOptions{Prefix: identityPrefix, Cursor: cursor})
		if err != nil {
			return nil, fmt.Errorf("failed to scan identities: %w", err)
		}

		for _, key := range page.Keys {
			ident, err := s.GetIdentity(ctx, strings.TrimPrefix(key.Name, identityPrefix))
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			identities = append(identities, *ident)
		}

		if page.ListComplete {
			return identities, nil
		}
		cursor = page.Cursor
	}
}

// HasAnyIdentity reports whether at least one identity exists. The
// bootstrap key is only honored for identity creation while this is false.
func (s *Store) HasAnyIdentity(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	page, err := s.kv.List(ctx, kv.ListOptions{Prefix: identityPrefix, Limit: 1})
	if err != nil {
		return false, fmt.Errorf("failed to scan identities: %w", err)
	}
	return len(page.Keys) > 0, nil
}

// ActivateIdentity flips a claimable identity to active. Used by the
// identity-claim flow.
func (s *Store) ActivateIdentity(ctx context.Context, id string) (*Identity, error) {
	ident, err := s.GetIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	if ident.Status != StatusClaimable {
		return nil, ErrIdentityInactive
	}

	ident.Status = StatusActive
	if err := s.putIdentity(ctx, ident); err != nil {
		return nil, err
	}
	return ident, nil
}

// UpdateDisplayName renames an identity.
func (s *Store) UpdateDisplayName(ctx context.Context, id, displayName string) (*Identity, error) {
	ident, err := s.GetIdentity(ctx, id)
	if err != nil {
		return nil, err
	}

	ident.DisplayName = displayName
	if err := s.putIdentity(ctx, ident); err != nil {
		return nil, err
	}
	return ident, nil
}

// DeleteIdentity flips the identity to deleted, revokes and removes every
// credential belonging to it, and removes its grants. Deleted is terminal.
func (s *Store) DeleteIdentity(ctx context.Context, id string) error {
	ident, err := s.GetIdentity(ctx, id)
	if err != nil {
		return err
	}

	ident.Status = StatusDeleted
	if err := s.putIdentity(ctx, ident); err != nil {
		return err
	}

	// Enumerate all credentials; the hash-keyed rows carry the identity id.
	cursor := ""
	for {
		page, err := s.kv.List(ctx, kv.ListOptions{Prefix: credentialPrefix, Cursor: cursor})
		if err != nil {
			return fmt.Errorf("failed to scan credentials: %w", err)
		}

		for _, key := range page.Keys {
			raw, err := s.kv.Get(ctx, key.Name)
			if errors.Is(err, kv.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to load credential: %w", err)
			}

			var cred Credential
			if err := json.Unmarshal(raw, &cred); err != nil {
				continue
			}
			if cred.IdentityID != id {
				continue
			}

			if err := s.kv.Delete(ctx, key.Name); err != nil {
				return fmt.Errorf("failed to delete credential: %w", err)
			}
			if err := s.kv.Delete(ctx, credentialIDKey(cred.ID)); err != nil {
				return fmt.Errorf("failed to delete credential index: %w", err)
			}
		}

		if page.ListComplete {
			break
		}
		cursor = page.Cursor
	}

	if ident.Type == TypeApp && ident.AppConfig != nil {
		if err := s.kv.Delete(ctx, appOriginKey(ident.AppConfig.Namespace)); err != nil {
			return fmt.Errorf("failed to delete app origin index: %w", err)
		}
	}

	return s.DeleteGrantsForIdentity(ctx, id)
}

// CreateCredential mints a credential for the identity and returns it with
// the plaintext secret, which is not persisted.
func (s *Store) CreateCredential(ctx context.Context, identityID string, expiresAt *time.Time) (*Credential, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	secret := NewSecret()
	cred := &Credential{
		ID:         NewCredentialID(),
		IdentityID: identityID,
		Type:       CredentialTypeAPIKey,
		SecretHash: HashSecret(secret),
		Status:     CredentialActive,
		CreatedAt:  time.Now().UTC(),
		ExpiresAt:  expiresAt,
	}

	if err := s.putCredential(ctx, cred); err != nil {
		return nil, "", err
	}
	return cred, secret, nil
}

func (s *Store) putCredential(ctx context.Context, cred *Credential) error {
	raw, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}
	if err := s.kv.Put(ctx, credentialKey(cred.SecretHash), raw); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	if err := s.kv.Put(ctx, credentialIDKey(cred.ID), []byte(cred.SecretHash)); err != nil {
		return fmt.Errorf("failed to index credential: %w", err)
	}
	return nil
}

// GetCredentialByID loads a credential through the id index.
func (s *Store) GetCredentialByID(ctx context.Context, id string) (*Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash, err := s.kv.Get(ctx, credentialIDKey(id))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credential index: %w", err)
	}

	raw, err := s.kv.Get(ctx, credentialKey(string(hash)))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return nil, fmt.Errorf("failed to decode credential: %w", err)
	}
	return &cred, nil
}

// LookupCredential authenticates a plaintext secret. It returns the
// credential and its active identity, or ErrInvalidCredential /
// ErrIdentityInactive. Which check failed is never surfaced to clients.
func (s *Store) LookupCredential(ctx context.Context, secret string) (*Credential, *Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	hash := HashSecret(secret)
	raw, err := s.kv.Get(ctx, credentialKey(hash))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil, ErrInvalidCredential
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load credential: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return nil, nil, fmt.Errorf("failed to decode credential: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(cred.SecretHash), []byte(hash)) != 1 {
		return nil, nil, ErrInvalidCredential
	}
	if cred.Status != CredentialActive {
		return nil, nil, ErrInvalidCredential
	}
	if cred.ExpiresAt != nil && time.Now().After(*cred.ExpiresAt) {
		return nil, nil, ErrInvalidCredential
	}

	ident, err := s.GetIdentity(ctx, cred.IdentityID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil, ErrInvalidCredential
	}
	if err != nil {
		return nil, nil, err
	}
	if ident.Status != StatusActive {
		return nil, nil, ErrIdentityInactive
	}

	return &cred, ident, nil
}

// RevokeCredential flips the credential to revoked. Revoked is terminal.
func (s *Store) RevokeCredential(ctx context.Context, id string) error {
	cred, err := s.GetCredentialByID(ctx, id)
	if err != nil {
		return err
	}

	cred.Status = CredentialRevoked
	return s.putCredential(ctx, cred)
}

// RotateCredential revokes the credential and mints a replacement for the
// same identity, returning the new plaintext secret once.
func (s *Store) RotateCredential(ctx context.Context, id string) (*Credential, string, error) {
	cred, err := s.GetCredentialByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if err := s.RevokeCredential(ctx, id); err != nil {
		return nil, "", err
	}
	return s.CreateCredential(ctx, cred.IdentityID, nil)
}

// RegisterAppInput carries the register-app parameters.
type RegisterAppInput struct {
	Origin       string
	DisplayName  string
	Capabilities []string
	FrameAccess  bool
	CreatedBy    string
}

// RegisterApp is an idempotent upsert keyed by the origin-derived
// namespace. The first registration creates the APP identity and returns
// its credential secret; re-registration merges capabilities as a set
// union and returns an empty secret.
func (s *Store) RegisterApp(ctx context.Context, in RegisterAppInput) (*Identity, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	namespace := DeriveAppNamespace(in.Origin)

	existingID, err := s.kv.Get(ctx, appOriginKey(namespace))
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to load app origin index: %w", err)
	}

	if err == nil {
		ident, err := s.GetIdentity(ctx, string(existingID))
		if err != nil {
			return nil, "", err
		}
		if ident.AppConfig == nil {
			ident.AppConfig = &AppConfig{Origin: in.Origin, Namespace: namespace}
		}
		ident.AppConfig.GrantedCapabilities = mergeCapabilities(
			ident.AppConfig.GrantedCapabilities, in.Capabilities)
		if in.FrameAccess {
			ident.AppConfig.FrameAccess = true
		}
		if err := s.putIdentity(ctx, ident); err != nil {
			return nil, "", err
		}
		return ident, "", nil
	}

	displayName := in.DisplayName
	if displayName == "" {
		displayName = in.Origin
	}

	ident := &Identity{
		ID:          NewIdentityID(),
		Type:        TypeApp,
		DisplayName: displayName,
		Status:      StatusActive,
		CreatedAt:   time.Now().UTC(),
		CreatedBy:   in.CreatedBy,
		AppConfig: &AppConfig{
			Origin:              in.Origin,
			Namespace:           namespace,
			GrantedCapabilities: mergeCapabilities(nil, in.Capabilities),
			FrameAccess:         in.FrameAccess,
		},
	}
	if err := s.putIdentity(ctx, ident); err != nil {
		return nil, "", err
	}
	if err := s.kv.Put(ctx, appOriginKey(namespace), []byte(ident.ID)); err != nil {
		return nil, "", fmt.Errorf("failed to index app origin: %w", err)
	}

	_, secret, err := s.CreateCredential(ctx, ident.ID, nil)
	if err != nil {
		return nil, "", err
	}
	return ident, secret, nil
}

func mergeCapabilities(existing, extra []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(extra))
	merged := make([]string, 0, len(existing)+len(extra))
	for _, c := range append(append([]string{}, existing...), extra...) {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		merged = append(merged, c)
	}
	return merged
}

// CreateGrant attaches a capability grant to an identity.
func (s *Store) CreateGrant(ctx context.Context, grant Grant) (*Grant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if grant.GrantID == "" {
		grant.GrantID = NewGrantID()
	}
	if grant.GrantedAt.IsZero() {
		grant.GrantedAt = time.Now().UTC()
	}

	raw, err := json.Marshal(grant)
	if err != nil {
		return nil, fmt.Errorf("failed to encode grant: %w", err)
	}
	if err := s.kv.Put(ctx, grantKey(grant.IdentityID, grant.GrantID), raw); err != nil {
		return nil, fmt.Errorf("failed to store grant: %w", err)
	}
	return &grant, nil
}

// ListGrants returns all grants for an identity.
func (s *Store) ListGrants(ctx context.Context, identityID string) ([]Grant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := grantPrefix + identityID + ":"
	var grants []Grant
	cursor := ""
	for {
		page, err := s.kv.List(ctx, kv.ListOptions{Prefix: prefix, Cursor: cursor})
		if err != nil {
			return nil, fmt.Errorf("failed to scan grants: %w", err)
		}

		for _, key := range page.Keys {
			raw, err := s.kv.Get(ctx, key.Name)
			if errors.Is(err, kv.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to load grant: %w", err)
			}

			var grant Grant
			if err := json.Unmarshal(raw, &grant); err != nil {
				continue
			}
			grants = append(grants, grant)
		}

		if page.ListComplete {
			return grants, nil
		}
		cursor = page.Cursor
	}
}

// DeleteGrant removes one grant.
func (s *Store) DeleteGrant(ctx context.Context, identityID, grantID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.kv.Delete(ctx, grantKey(identityID, grantID))
}

// DeleteGrantsForIdentity removes every grant belonging to the identity.
func (s *Store) DeleteGrantsForIdentity(ctx context.Context, identityID string) error {
	grants, err := s.ListGrants(ctx, identityID)
	if err != nil {
		return err
	}
	for _, grant := range grants {
		if err := s.DeleteGrant(ctx, identityID, grant.GrantID); err != nil {
			return err
		}
	}
	return nil
}
