// Package middleware provides the gateway's HTTP middleware: API key
// authentication and CORS with Private-Network-Access support.
package middleware

import (
	"context"

	"github.com/latchhq/latch/pkg/identity"
)

type contextKey int

const (
	identityKey contextKey = iota
	credentialKey
	bootstrapKey
)

// WithIdentity stores the authenticated identity and credential.
func WithIdentity(ctx context.Context, ident *identity.Identity, cred *identity.Credential) context.Context {
	ctx = context.WithValue(ctx, identityKey, ident)
	return context.WithValue(ctx, credentialKey, cred)
}

// IdentityFrom returns the authenticated identity, or nil.
func IdentityFrom(ctx context.Context) *identity.Identity {
	ident, _ := ctx.Value(identityKey).(*identity.Identity)
	return ident
}

// CredentialFrom returns the authenticated credential, or nil.
func CredentialFrom(ctx context.Context) *identity.Credential {
	cred, _ := ctx.Value(credentialKey).(*identity.Credential)
	return cred
}

// WithBootstrap marks the request as authenticated by the bootstrap key.
func WithBootstrap(ctx context.Context) context.Context {
	return context.WithValue(ctx, bootstrapKey, true)
}

// IsBootstrap reports whether the request used the bootstrap key.
func IsBootstrap(ctx context.Context) bool {
	v, _ := ctx.Value(bootstrapKey).(bool)
	return v
}
