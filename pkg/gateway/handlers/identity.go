package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/latchhq/latch/internal/logger"
	"github.com/latchhq/latch/pkg/gateway/middleware"
	"github.com/latchhq/latch/pkg/gateway/response"
	"github.com/latchhq/latch/pkg/identity"
	"github.com/latchhq/latch/pkg/token"
)

// defaultInviteTTL applies when an invite names no expiry.
const defaultInviteTTL = 7 * 24 * time.Hour

// IdentityHandler serves the identity, credential and grant endpoints.
type IdentityHandler struct {
	identities *identity.Store
	tokens     *token.Store
}

// NewIdentityHandler creates the identity endpoint handler.
func NewIdentityHandler(identities *identity.Store, tokens *token.Store) *IdentityHandler {
	return &IdentityHandler{identities: identities, tokens: tokens}
}

// identityView strips nothing today but pins the response shape.
type identityView struct {
	ID          string              `json:"id"`
	Type        string              `json:"type"`
	DisplayName string              `json:"displayName"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	CreatedBy   string              `json:"createdBy,omitempty"`
	AppConfig   *identity.AppConfig `json:"appConfig,omitempty"`
}

func viewOf(ident *identity.Identity) identityView {
	return identityView{
		ID:          ident.ID,
		Type:        ident.Type,
		DisplayName: ident.DisplayName,
		Status:      ident.Status,
		CreatedAt:   ident.CreatedAt,
		CreatedBy:   ident.CreatedBy,
		AppConfig:   ident.AppConfig,
	}
}

type identityCreateRequest struct {
	Type        string `json:"type"`
	DisplayName string `json:"displayName"`
}

// Create mints a new identity with its first credential. Reachable with
// the bootstrap key only while no identities exist; afterwards admin only.
func (h *IdentityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req identityCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	createdBy := ""
	if !middleware.IsBootstrap(r.Context()) {
		ident, perms := callerPermissions(w, r, h.identities)
		if perms == nil {
			return
		}
		if !perms.Admin {
			response.Forbidden(w, "admin access required")
			return
		}
		createdBy = ident.ID
	}

	ident, cred, secret, err := h.identities.CreateIdentity(r.Context(), identity.CreateIdentityInput{
		Type:        req.Type,
		DisplayName: req.DisplayName,
		CreatedBy:   createdBy,
	})
	if errors.Is(err, identity.ErrInvalidType) {
		response.InvalidRequest(w, "invalid identity type")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "identity create failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	response.WriteJSONOK(w, map[string]any{
		"identity":   viewOf(ident),
		"credential": credentialViewOf(cred),
		"secret":     secret,
	})
}

// credentialView is the public shape of a credential. The secret hash
// never leaves the store.
type credentialView struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

func credentialViewOf(cred *identity.Credential) credentialView {
	return credentialView{ID: cred.ID, Type: cred.Type, CreatedAt: cred.CreatedAt}
}

// List returns every identity. Admin only.
func (h *IdentityHandler) List(w http.ResponseWriter, r *http.Request) {
	_, perms := callerPermissions(w, r, h.identities)
	if perms == nil {
		return
	}
	if !perms.Admin {
		response.Forbidden(w, "admin access required")
		return
	}

	identities, err := h.identities.ListIdentities(r.Context())
	if err != nil {
		logger.ErrorCtx(r.Context(), "identity list failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	views := make([]identityView, 0, len(identities))
	for i := range identities {
		views = append(views, viewOf(&identities[i]))
	}
	response.WriteJSONOK(w, map[string]any{"identities": views})
}

type identityDeleteRequest struct {
	IdentityID string `json:"identityId"`
}

// Delete flips an identity to deleted and revokes all of its credentials
// and grants. Admin only.
func (h *IdentityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req identityDeleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	caller, perms := callerPermissions(w, r, h.identities)
	if perms == nil {
		return
	}
	if !perms.Admin {
		response.Forbidden(w, "admin access required")
		return
	}
	if req.IdentityID == caller.ID {
		response.InvalidRequest(w, "cannot delete the calling identity")
		return
	}

	err := h.identities.DeleteIdentity(r.Context(), req.IdentityID)
	if errors.Is(err, identity.ErrNotFound) {
		response.NotFound(w, "identity not found")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "identity delete failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}
	response.WriteJSONOK(w, map[string]any{"ok": true})
}

type identityInviteRequest struct {
	DisplayName      string   `json:"displayName"`
	ChannelID        string   `json:"channelId,omitempty"`
	Capabilities     []string `json:"capabilities,omitempty"`
	ExpiresInSeconds int64    `json:"expiresInSeconds,omitempty"`
	Label            string   `json:"label,omitempty"`
}

// Invite creates a claimable identity, grants it the requested
// capabilities over the named resource, and mints an identity-claim
// token. The credential is minted when the token is claimed.
func (h *IdentityHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req identityInviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	caller, perms := callerPermissions(w, r, h.identities)
	if perms == nil {
		return
	}
	if !perms.Admin {
		response.Forbidden(w, "admin access required")
		return
	}

	capabilities := req.Capabilities
	if len(capabilities) == 0 && req.ChannelID != "" {
		capabilities = []string{identity.CapChannelRead, identity.CapChannelAppend}
	}

	invitee, err := h.identities.CreateClaimableIdentity(r.Context(), req.DisplayName, caller.ID)
	if err != nil {
		logger.ErrorCtx(r.Context(), "invite identity create failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	var scope identity.Scope
	if req.ChannelID != "" {
		scope.Resources = []identity.Resource{{Type: identity.ResourceChannel, ID: req.ChannelID}}
	}
	for _, capability := range capabilities {
		if _, err := h.identities.CreateGrant(r.Context(), identity.Grant{
			IdentityID: invitee.ID,
			Capability: capability,
			Source:     identity.GrantSourceInvitation,
			Scope:      scope,
			GrantedBy:  caller.ID,
		}); err != nil {
			logger.ErrorCtx(r.Context(), "invite grant failed", logger.KeyError, err)
			response.Upstream(w)
			return
		}
	}

	ttl := defaultInviteTTL
	if req.ExpiresInSeconds > 0 {
		ttl = time.Duration(req.ExpiresInSeconds) * time.Second
	}

	claim, err := h.tokens.Create(r.Context(), token.CreateInput{
		Action:     token.ActionIdentityClaim,
		CreatedBy:  caller.ID,
		TTL:        ttl,
		Label:      req.Label,
		IdentityID: invitee.ID,
	})
	if err != nil {
		logger.ErrorCtx(r.Context(), "invite token create failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	response.WriteJSONOK(w, map[string]any{
		"identityId": invitee.ID,
		"tokenId":    claim.ID,
		"expiresAt":  claim.ExpiresAt,
	})
}

// Whoami returns the calling identity and its effective permissions.
// With the bootstrap key it reports the bootstrap pseudo-principal.
func (h *IdentityHandler) Whoami(w http.ResponseWriter, r *http.Request) {
	if middleware.IsBootstrap(r.Context()) {
		response.WriteJSONOK(w, map[string]any{"bootstrap": true})
		return
	}

	ident, perms := callerPermissions(w, r, h.identities)
	if perms == nil {
		return
	}

	response.WriteJSONOK(w, map[string]any{
		"identity":    viewOf(ident),
		"permissions": perms,
	})
}

type appRegisterRequest struct {
	Origin       string   `json:"origin"`
	DisplayName  string   `json:"displayName,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	FrameAccess  bool     `json:"frameAccess,omitempty"`
}

// RegisterApp upserts an app identity keyed by its origin-derived
// namespace. Admin only. Re-registration merges capabilities and returns
// no secret.
func (h *IdentityHandler) RegisterApp(w http.ResponseWriter, r *http.Request) {
	var req appRegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Origin == "" {
		response.InvalidRequest(w, "origin is required")
		return
	}

	caller, perms := callerPermissions(w, r, h.identities)
	if perms == nil {
		return
	}
	if !perms.Admin {
		response.Forbidden(w, "admin access required")
		return
	}

	ident, secret, err := h.identities.RegisterApp(r.Context(), identity.RegisterAppInput{
		Origin:       req.Origin,
		DisplayName:  req.DisplayName,
		Capabilities: req.Capabilities,
		FrameAccess:  req.FrameAccess,
		CreatedBy:    caller.ID,
	})
	if err != nil {
		logger.ErrorCtx(r.Context(), "app register failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	body := map[string]any{
		"identity":  viewOf(ident),
		"namespace": ident.AppConfig.Namespace,
	}
	if secret != "" {
		body["apiKey"] = secret
	}
	response.WriteJSONOK(w, body)
}

type identityUpdateRequest struct {
	IdentityID  string `json:"identityId"`
	DisplayName string `json:"displayName"`
}

// Update renames an identity. Admin, or the identity itself.
func (h *IdentityHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req identityUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DisplayName == "" {
		response.InvalidRequest(w, "displayName is required")
		return
	}

	caller, perms := callerPermissions(w, r, h.identities)
	if perms == nil {
		return
	}
	if !perms.Admin && caller.ID != req.IdentityID {
		response.Forbidden(w, "cannot update other identities")
		return
	}

	ident, err := h.identities.UpdateDisplayName(r.Context(), req.IdentityID, req.DisplayName)
	if errors.Is(err, identity.ErrNotFound) {
		response.NotFound(w, "identity not found")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "identity update failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}
	response.WriteJSONOK(w, map[string]any{"identity": viewOf(ident)})
}

type credentialRotateRequest struct {
	CredentialID string `json:"credentialId,omitempty"`
}

// RotateCredential revokes a credential and mints a replacement for the
// same identity. Without a credentialId the caller's own credential is
// rotated.
func (h *IdentityHandler) RotateCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRotateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	caller, perms := callerPermissions(w, r, h.identities)
	if perms == nil {
		return
	}

	credentialID := req.CredentialID
	if credentialID == "" {
		cred := middleware.CredentialFrom(r.Context())
		if cred == nil {
			response.Unauthorized(w, "authentication required")
			return
		}
		credentialID = cred.ID
	}

	target, err := h.identities.GetCredentialByID(r.Context(), credentialID)
	if errors.Is(err, identity.ErrNotFound) {
		response.NotFound(w, "credential not found")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "credential load failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}
	if !perms.Admin && target.IdentityID != caller.ID {
		response.Forbidden(w, "cannot rotate other identities' credentials")
		return
	}

	cred, secret, err := h.identities.RotateCredential(r.Context(), credentialID)
	if err != nil {
		logger.ErrorCtx(r.Context(), "credential rotate failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	response.WriteJSONOK(w, map[string]any{
		"credentialId": cred.ID,
		"apiKey":       secret,
	})
}
