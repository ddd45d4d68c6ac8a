// Package identity implements identities, credentials and grants: the
// authentication entities behind every API key the gateway accepts.
//
// Secrets are minted once, returned to the caller in plaintext exactly
// once, and persisted only as SHA-256 hashes. Credential lookup is by
// hash, with a constant-time comparison against the stored digest.
package identity

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/latchhq/latch/internal/base62"
)

// Identity types.
const (
	TypeUser      = "user"
	TypeService   = "service"
	TypeAgent     = "agent"
	TypeApp       = "app"
	TypeAnonymous = "anonymous"
)

// Identity statuses.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusDeleted   = "deleted"
	StatusClaimable = "claimable"
)

// Credential statuses.
const (
	CredentialActive  = "active"
	CredentialRevoked = "revoked"
)

// CredentialTypeAPIKey is the only credential type currently issued.
const CredentialTypeAPIKey = "api_key"

// Grant sources.
const (
	GrantSourceInvitation = "invitation"
	GrantSourceExplicit   = "explicit"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when the addressed entity does not exist.
	ErrNotFound = errors.New("identity: not found")

	// ErrInvalidCredential is returned for unknown, revoked or expired
	// secrets. Callers must not distinguish which check failed.
	ErrInvalidCredential = errors.New("identity: invalid credential")

	// ErrIdentityInactive is returned when the credential is valid but its
	// identity is not active.
	ErrIdentityInactive = errors.New("identity: identity not active")

	// ErrInvalidType is returned for identity types that cannot be created
	// through the generic create path.
	ErrInvalidType = errors.New("identity: invalid identity type")
)

// AppConfig holds app-identity specifics. Origin is the browser origin the
// app authenticates from; Namespace is derived from it deterministically.
type AppConfig struct {
	Origin              string   `json:"origin"`
	Namespace           string   `json:"namespace"`
	GrantedCapabilities []string `json:"grantedCapabilities,omitempty"`
	FrameAccess         bool     `json:"frameAccess,omitempty"`
}

// Identity is an authenticated principal.
type Identity struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	DisplayName string     `json:"displayName"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	AppConfig   *AppConfig `json:"appConfig,omitempty"`
}

// Credential is one API key belonging to an identity. The plaintext secret
// is never stored; SecretHash is its SHA-256 hex digest.
type Credential struct {
	ID         string     `json:"id"`
	IdentityID string     `json:"identityId"`
	Type       string     `json:"type"`
	SecretHash string     `json:"secretHash"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// Resource addresses one scoped object in a grant.
type Resource struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Scope restricts a grant to a resource set.
type Scope struct {
	Resources []Resource `json:"resources"`
}

// Grant attaches one capability over a resource set to an identity.
// Absence of a grant means absence of the capability, apart from the
// identity's implicit self-scoped powers.
type Grant struct {
	GrantID    string    `json:"grantId"`
	IdentityID string    `json:"identityId"`
	Capability string    `json:"capability"`
	Source     string    `json:"source"`
	SourceID   string    `json:"sourceId,omitempty"`
	Scope      Scope     `json:"scope"`
	GrantedBy  string    `json:"grantedBy,omitempty"`
	GrantedAt  time.Time `json:"grantedAt"`
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// NewIdentityID generates an identity id of the form ident_<16 hex>.
func NewIdentityID() string {
	return "ident_" + randomHex(8)
}

// NewCredentialID generates a credential id of the form cred_<16 hex>.
func NewCredentialID() string {
	return "cred_" + randomHex(8)
}

// NewGrantID generates a grant id of the form grant_<16 hex>.
func NewGrantID() string {
	return "grant_" + randomHex(8)
}

// NewSecret mints a plaintext API key secret: lk_ followed by the base62
// encoding of 32 random bytes. Shown to the caller once, then discarded.
func NewSecret() string {
	return "lk_" + base62.Random(32)
}

// DeriveAppNamespace maps a browser origin to its app namespace:
// lowercase, scheme stripped, dots and colons replaced by underscores.
func DeriveAppNamespace(origin string) string {
	ns := strings.ToLower(origin)
	if i := strings.Index(ns, "://"); i >= 0 {
		ns = ns[i+3:]
	}
	ns = strings.ReplaceAll(ns, ".", "_")
	ns = strings.ReplaceAll(ns, ":", "_")
	return ns
}
