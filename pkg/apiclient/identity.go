package apiclient

import "time"

// Identity is the gateway's public view of a principal.
type Identity struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	DisplayName string     `json:"displayName"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	AppConfig   *AppConfig `json:"appConfig,omitempty"`
}

// AppConfig is the origin binding of an app identity.
type AppConfig struct {
	Origin              string   `json:"origin"`
	Namespace           string   `json:"namespace"`
	GrantedCapabilities []string `json:"grantedCapabilities,omitempty"`
	FrameAccess         bool     `json:"frameAccess,omitempty"`
}

// Permissions are an identity's effective capabilities.
type Permissions struct {
	Admin        bool     `json:"admin"`
	Namespaces   []string `json:"namespaces,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	Grants       []Grant  `json:"grants,omitempty"`
}

// Grant attaches one scoped capability to an identity.
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

// Scope restricts a grant to a resource set.
type Scope struct {
	Resources []Resource `json:"resources"`
}

// Resource addresses one object a grant covers.
type Resource struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// CreateIdentityRequest is the request to create an identity.
type CreateIdentityRequest struct {
	Type        string `json:"type"`
	DisplayName string `json:"displayName"`
}

// Credential is the public view of a stored credential. The secret it
// hashes is never part of this view.
type Credential struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateIdentityResponse carries the new identity, its first credential
// and the plaintext secret. The secret is shown once and never
// retrievable again.
type CreateIdentityResponse struct {
	Identity   Identity   `json:"identity"`
	Credential Credential `json:"credential"`
	Secret     string     `json:"secret"`
}

// CreateIdentity creates an identity and mints its first credential.
func (c *Client) CreateIdentity(req CreateIdentityRequest) (*CreateIdentityResponse, error) {
	var resp CreateIdentityResponse
	if err := c.post("/identity/create", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListIdentities returns every identity. Admin only.
func (c *Client) ListIdentities() ([]Identity, error) {
	var resp struct {
		Identities []Identity `json:"identities"`
	}
	if err := c.post("/identity/list", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Identities, nil
}

// DeleteIdentity removes an identity and revokes its credentials.
func (c *Client) DeleteIdentity(identityID string) error {
	req := struct {
		IdentityID string `json:"identityId"`
	}{IdentityID: identityID}
	return c.post("/identity/delete", req, nil)
}

// InviteRequest creates a claimable identity behind a one-shot token.
type InviteRequest struct {
	DisplayName      string   `json:"displayName"`
	ChannelID        string   `json:"channelId,omitempty"`
	Capabilities     []string `json:"capabilities,omitempty"`
	ExpiresInSeconds int64    `json:"expiresInSeconds,omitempty"`
	Label            string   `json:"label,omitempty"`
}

// InviteResponse carries the pending identity and its claim token.
type InviteResponse struct {
	IdentityID string    `json:"identityId"`
	TokenID    string    `json:"tokenId"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Invite creates a claimable identity and its claim token.
func (c *Client) Invite(req InviteRequest) (*InviteResponse, error) {
	var resp InviteResponse
	if err := c.post("/identity/invite", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WhoamiResponse describes the calling principal. Bootstrap is set when
// the caller authenticated with the bootstrap key.
type WhoamiResponse struct {
	Bootstrap   bool         `json:"bootstrap,omitempty"`
	Identity    *Identity    `json:"identity,omitempty"`
	Permissions *Permissions `json:"permissions,omitempty"`
}

// Whoami returns the calling identity and its effective permissions.
func (c *Client) Whoami() (*WhoamiResponse, error) {
	var resp WhoamiResponse
	if err := c.post("/identity/whoami", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegisterAppRequest registers a browser app by origin.
type RegisterAppRequest struct {
	Origin       string   `json:"origin"`
	DisplayName  string   `json:"displayName,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	FrameAccess  bool     `json:"frameAccess,omitempty"`
}

// RegisterAppResponse carries the app identity and its derived
// namespace. APIKey is only set on first registration.
type RegisterAppResponse struct {
	Identity  Identity `json:"identity"`
	Namespace string   `json:"namespace"`
	APIKey    string   `json:"apiKey,omitempty"`
}

// RegisterApp registers an app identity for an origin. Registration is
// idempotent per origin.
func (c *Client) RegisterApp(req RegisterAppRequest) (*RegisterAppResponse, error) {
	var resp RegisterAppResponse
	if err := c.post("/identity/app/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateIdentity renames an identity.
func (c *Client) UpdateIdentity(identityID, displayName string) (*Identity, error) {
	req := struct {
		IdentityID  string `json:"identityId"`
		DisplayName string `json:"displayName"`
	}{IdentityID: identityID, DisplayName: displayName}

	var resp struct {
		Identity Identity `json:"identity"`
	}
	if err := c.post("/identity/update", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Identity, nil
}

// RotateCredentialResponse carries the replacement credential and its
// API key.
type RotateCredentialResponse struct {
	CredentialID string `json:"credentialId"`
	APIKey       string `json:"apiKey"`
}

// RotateCredential replaces a credential with a fresh secret. An empty
// credentialID rotates the caller's own credential.
func (c *Client) RotateCredential(credentialID string) (*RotateCredentialResponse, error) {
	req := struct {
		CredentialID string `json:"credentialId,omitempty"`
	}{CredentialID: credentialID}

	var resp RotateCredentialResponse
	if err := c.post("/identity/rotate-credential", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
