package apiclient

import "time"

// Token action names, matching the gateway's stateful token actions.
const (
	TokenActionIdentityClaim = "identity_claim"
	TokenActionBlobAccess    = "blob_access"
)

// TokenMetadata is a token's public metadata. Payload internals stay
// hidden until the token is claimed.
type TokenMetadata struct {
	ID            string    `json:"id"`
	Action        string    `json:"action"`
	State         string    `json:"state"`
	ExpiresAt     time.Time `json:"expiresAt"`
	Label         string    `json:"label,omitempty"`
	ContentType   string    `json:"contentType,omitempty"`
	ContentLength int64     `json:"contentLength,omitempty"`
}

// BlobPayload binds a blob_access token to one object and, for uploads,
// its content constraints.
type BlobPayload struct {
	Bucket        string `json:"bucket"`
	Key           string `json:"key"`
	ContentType   string `json:"contentType,omitempty"`
	ContentLength int64  `json:"contentLength,omitempty"`
}

// CreateTokenRequest mints a single-use token. IdentityID is required
// for identity_claim, Blob for blob_access.
type CreateTokenRequest struct {
	Action           string       `json:"action"`
	Label            string       `json:"label,omitempty"`
	ExpiresInSeconds int64        `json:"expiresInSeconds,omitempty"`
	IdentityID       string       `json:"identityId,omitempty"`
	Blob             *BlobPayload `json:"blob,omitempty"`
}

// CreateTokenResponse identifies the minted token.
type CreateTokenResponse struct {
	TokenID   string    `json:"tokenId"`
	Action    string    `json:"action"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateToken mints a stateful single-use token. Admin only.
func (c *Client) CreateToken(req CreateTokenRequest) (*CreateTokenResponse, error) {
	var resp CreateTokenResponse
	if err := c.post("/token/create", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LookupToken returns a token's public metadata without consuming it.
func (c *Client) LookupToken(tokenID string) (*TokenMetadata, error) {
	req := struct {
		TokenID string `json:"tokenId"`
	}{TokenID: tokenID}

	var resp TokenMetadata
	if err := c.post("/token/lookup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClaimTokenResponse is the result of consuming a token. Identity claims
// fill the identity fields; blob claims fill the presigned URL fields.
type ClaimTokenResponse struct {
	IdentityID   string `json:"identityId,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	CredentialID string `json:"credentialId,omitempty"`
	APIKey       string `json:"apiKey,omitempty"`

	URL       string    `json:"url,omitempty"`
	Method    string    `json:"method,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// ClaimToken consumes a token and performs its action. Exactly one
// concurrent claimer wins; the rest get a conflict error.
func (c *Client) ClaimToken(tokenID string) (*ClaimTokenResponse, error) {
	req := struct {
		TokenID string `json:"tokenId"`
	}{TokenID: tokenID}

	var resp ClaimTokenResponse
	if err := c.post("/token/claim", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RevokeToken invalidates an unclaimed token.
func (c *Client) RevokeToken(tokenID string) error {
	req := struct {
		TokenID string `json:"tokenId"`
	}{TokenID: tokenID}
	return c.post("/token/revoke", req, nil)
}

// ListTokens returns the caller's tokens as public metadata.
func (c *Client) ListTokens() ([]TokenMetadata, error) {
	var resp struct {
		Tokens []TokenMetadata `json:"tokens"`
	}
	if err := c.post("/token/list", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Tokens, nil
}
