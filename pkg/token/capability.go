// Package token implements the two token families the gateway issues:
// stateless HMAC capability tokens scoped to one channel, and stateful
// single-use tokens persisted in the KV store.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Channel permissions a capability token may carry.
const (
	PermRead        = "read"
	PermAppend      = "append"
	PermReadDeleted = "read:deleted"
	PermDeleteOwn   = "delete:own"
	PermDeleteAny   = "delete:any"
)

// Sentinel errors for capability token verification. Handlers map all of
// them to 401 without revealing which check failed.
var (
	// ErrUnknownVersion is returned for tokens whose version prefix is not
	// recognized.
	ErrUnknownVersion = errors.New("token: unknown token version")

	// ErrInvalidToken is returned when parsing or signature verification
	// fails.
	ErrInvalidToken = errors.New("token: invalid token")

	// ErrTokenExpired is returned for structurally valid but expired tokens.
	ErrTokenExpired = errors.New("token: token expired")

	// ErrInvalidPermission is returned when minting with a permission
	// outside the known set.
	ErrInvalidPermission = errors.New("token: invalid permission")
)

// capabilityVersion is the only version this build mints and accepts.
// Verifiers parse by prefix so future versions can coexist.
const capabilityVersion = "ct1"

var knownPermissions = map[string]struct{}{
	PermRead:        {},
	PermAppend:      {},
	PermReadDeleted: {},
	PermDeleteOwn:   {},
	PermDeleteAny:   {},
}

type capabilityClaims struct {
	ChannelID   string   `json:"cid"`
	Permissions []string `json:"perms"`
	AuthorID    string   `json:"author"`
	jwt.RegisteredClaims
}

// Capability is a verified capability token's payload.
type Capability struct {
	ChannelID   string
	Permissions []string
	AuthorID    string
	ExpiresAt   time.Time
}

// Has reports whether the capability carries the permission.
func (c *Capability) Has(perm string) bool {
	for _, p := range c.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// NewAuthorNonce generates the random 4-hex author id used when the token
// creator does not name one.
func NewAuthorNonce() string {
	buf := make([]byte, 2)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// MintCapability signs a capability token for one channel with the
// channel's secret. An empty authorID gets a random 4-hex nonce.
func MintCapability(secret, channelID string, permissions []string, authorID string, ttl time.Duration) (string, error) {
	if len(permissions) == 0 {
		return "", ErrInvalidPermission
	}
	for _, p := range permissions {
		if _, ok := knownPermissions[p]; !ok {
			return "", fmt.Errorf("%w: %q", ErrInvalidPermission, p)
		}
	}
	if authorID == "" {
		authorID = NewAuthorNonce()
	}

	claims := capabilityClaims{
		ChannelID:   channelID,
		Permissions: permissions,
		AuthorID:    authorID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign capability token: %w", err)
	}
	return capabilityVersion + "." + signed, nil
}

// VerifyCapability parses and verifies a capability token against the
// channel secret: version prefix, HMAC signature (constant-time inside the
// JWT library) and expiry.
func VerifyCapability(secret, token string) (*Capability, error) {
	body, ok := strings.CutPrefix(token, capabilityVersion+".")
	if !ok {
		return nil, ErrUnknownVersion
	}

	var claims capabilityClaims
	parsed, err := jwt.ParseWithClaims(body, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid || claims.ChannelID == "" {
		return nil, ErrInvalidToken
	}

	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	return &Capability{
		ChannelID:   claims.ChannelID,
		Permissions: claims.Permissions,
		AuthorID:    claims.AuthorID,
		ExpiresAt:   expires,
	}, nil
}
