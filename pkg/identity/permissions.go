package identity

import "strings"

// Well-known capability strings. Grants may carry any string; these are
// the ones the gateway itself checks.
const (
	CapKVRead        = "kv:read"
	CapKVWrite       = "kv:write"
	CapBlobRead      = "blob:read"
	CapBlobWrite     = "blob:write"
	CapChannelRead   = "channel:read"
	CapChannelAppend = "channel:append"
	CapChannelManage = "channel:manage"
)

// Resource types used in grant scopes.
const (
	ResourceNamespace = "namespace"
	ResourceChannel   = "channel"
)

// Permissions summarizes what an identity can do: its implicit powers
// plus its grants. Built by Resolve and returned by whoami.
type Permissions struct {
	// Admin identities hold every capability over the whole realm.
	Admin bool `json:"admin"`

	// Namespaces the identity can address implicitly.
	Namespaces []string `json:"namespaces,omitempty"`

	// Capabilities granted to app identities at registration.
	Capabilities []string `json:"capabilities,omitempty"`

	// Grants are the explicit scoped capabilities.
	Grants []Grant `json:"grants,omitempty"`
}

// Resolve computes the effective permissions of an identity: the union of
// its type-intrinsic powers and its grants.
//
// User, service and agent identities act as realm operators: they hold
// every capability. App identities are confined to the namespace derived
// from their origin plus whatever capabilities registration granted them.
// Claimable and other non-active identities have only their grants.
func Resolve(ident *Identity, grants []Grant) *Permissions {
	perms := &Permissions{Grants: grants}
	if ident == nil || ident.Status != StatusActive {
		return perms
	}

	switch ident.Type {
	case TypeUser, TypeService, TypeAgent:
		perms.Admin = true
	case TypeApp:
		if ident.AppConfig != nil {
			perms.Namespaces = []string{ident.AppConfig.Namespace}
			perms.Capabilities = ident.AppConfig.GrantedCapabilities
		}
	}
	return perms
}

// CanAccessNamespace reports whether the permissions allow addressing the
// namespace at all. Grant scopes are honored in addition to implicit
// namespace ownership.
func (p *Permissions) CanAccessNamespace(namespace string) bool {
	if p.Admin {
		return true
	}
	for _, ns := range p.Namespaces {
		if ns == namespace {
			return true
		}
	}
	for _, grant := range p.Grants {
		if grant.Scope.Resources == nil {
			continue
		}
		for _, res := range grant.Scope.Resources {
			if res.Type == ResourceNamespace && res.ID == namespace {
				return true
			}
		}
	}
	return false
}

// Has reports whether the permissions include capability over the given
// resource. A grant with an empty resource list applies to any resource
// of any type.
func (p *Permissions) Has(capability string, resource Resource) bool {
	if p.Admin {
		return true
	}

	// App capabilities are namespace-implicit: they apply to the app's
	// own namespace and to channels it can reach through grants.
	for _, c := range p.Capabilities {
		if c != capability {
			continue
		}
		if resource.Type != ResourceNamespace {
			break
		}
		for _, ns := range p.Namespaces {
			if ns == resource.ID {
				return true
			}
		}
	}

	for _, grant := range p.Grants {
		if grant.Capability != capability {
			continue
		}
		if len(grant.Scope.Resources) == 0 {
			return true
		}
		for _, res := range grant.Scope.Resources {
			if res.Type == resource.Type && res.ID == resource.ID {
				return true
			}
		}
	}
	return false
}

// ValidNamespace reports whether a caller-supplied namespace is
// well-formed: it must match [A-Za-z0-9._~:-]+ and may not start with the
// reserved double underscore.
func ValidNamespace(namespace string) bool {
	if namespace == "" || strings.HasPrefix(namespace, "__") {
		return false
	}
	for _, r := range namespace {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '~' || r == ':' || r == '-':
		default:
			return false
		}
	}
	return true
}
