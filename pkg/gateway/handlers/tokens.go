package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/latchhq/latch/internal/logger"
	"github.com/latchhq/latch/pkg/gateway/response"
	"github.com/latchhq/latch/pkg/identity"
	"github.com/latchhq/latch/pkg/metrics"
	"github.com/latchhq/latch/pkg/presign"
	"github.com/latchhq/latch/pkg/token"
)

// tokenPresignTTL bounds the presigned URL minted when a blob_access
// token is claimed.
const tokenPresignTTL = 15 * time.Minute

// TokenHandler serves the stateful token endpoints. Lookup and claim are
// public; create, revoke and list require an API key.
type TokenHandler struct {
	tokens     *token.Store
	identities *identity.Store
	presigner  presign.Presigner
	bucket     string
	metrics    metrics.GatewayMetrics
}

// NewTokenHandler creates the stateful token endpoint handler.
func NewTokenHandler(tokens *token.Store, identities *identity.Store, presigner presign.Presigner, bucket string, m metrics.GatewayMetrics) *TokenHandler {
	return &TokenHandler{
		tokens:     tokens,
		identities: identities,
		presigner:  presigner,
		bucket:     bucket,
		metrics:    m,
	}
}

type tokenIDRequest struct {
	TokenID string `json:"tokenId"`
}

// Lookup returns a token's safe metadata. Public; the payload internals
// stay hidden until the token is claimed.
func (h *TokenHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req tokenIDRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tok, err := h.tokens.Get(r.Context(), req.TokenID)
	if errors.Is(err, token.ErrTokenNotFound) {
		response.NotFound(w, "token not found")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "token lookup failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	response.WriteJSONOK(w, tok.Safe())
}

// Claim consumes a token and performs its action. Public. Exactly one
// concurrent claimer wins; the rest get Conflict.
//
// identity_claim activates the claimable identity and mints its first
// credential. blob_access exchanges the token for a presigned URL, an
// upload URL when the payload carries content constraints and a download
// URL otherwise.
func (h *TokenHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req tokenIDRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tok, err := h.tokens.Consume(r.Context(), req.TokenID)
	switch {
	case errors.Is(err, token.ErrTokenNotFound):
		response.NotFound(w, "token not found")
		return
	case errors.Is(err, token.ErrTokenUsed):
		metrics.ObserveTokenClaim(h.metrics, "unknown", "lost")
		response.Conflict(w, "token already claimed")
		return
	case errors.Is(err, token.ErrTokenRevoked):
		metrics.ObserveTokenClaim(h.metrics, "unknown", "revoked")
		response.Unauthorized(w, "token has been revoked")
		return
	case errors.Is(err, token.ErrTokenExpired):
		metrics.ObserveTokenClaim(h.metrics, "unknown", "expired")
		response.Unauthorized(w, "token has expired")
		return
	case err != nil:
		logger.ErrorCtx(r.Context(), "token claim failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}
	metrics.ObserveTokenClaim(h.metrics, tok.Action, "won")

	switch tok.Action {
	case token.ActionIdentityClaim:
		h.claimIdentity(w, r, tok)
	case token.ActionBlobAccess:
		h.claimBlob(w, r, tok)
	default:
		logger.ErrorCtx(r.Context(), "token has unknown action",
			"action", tok.Action, logger.KeyError, errors.New("unhandled token action"))
		response.Upstream(w)
	}
}

// restoreToken puts a consumed token back to unused after its action
// failed, so the claim can be retried instead of burning the token.
func (h *TokenHandler) restoreToken(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.tokens.Restore(r.Context(), id); err != nil {
		logger.ErrorCtx(r.Context(), "token restore failed",
			"token_id", id, logger.KeyError, err)
	}
	response.Upstream(w)
}

func (h *TokenHandler) claimIdentity(w http.ResponseWriter, r *http.Request, tok *token.Stateful) {
	ident, err := h.identities.ActivateIdentity(r.Context(), tok.IdentityID)
	if err != nil {
		logger.ErrorCtx(r.Context(), "identity activation failed",
			logger.KeyIdentity, tok.IdentityID, logger.KeyError, err)
		h.restoreToken(w, r, tok.ID)
		return
	}

	cred, secret, err := h.identities.CreateCredential(r.Context(), ident.ID, nil)
	if err != nil {
		logger.ErrorCtx(r.Context(), "credential mint failed",
			logger.KeyIdentity, ident.ID, logger.KeyError, err)
		h.restoreToken(w, r, tok.ID)
		return
	}

	response.WriteJSONOK(w, map[string]any{
		"identityId":   ident.ID,
		"displayName":  ident.DisplayName,
		"credentialId": cred.ID,
		"apiKey":       secret,
	})
}

func (h *TokenHandler) claimBlob(w http.ResponseWriter, r *http.Request, tok *token.Stateful) {
	bucket := tok.Blob.Bucket
	if bucket == "" {
		bucket = h.bucket
	}

	var (
		signed *presign.PresignedURL
		err    error
	)
	if tok.Blob.ContentType != "" || tok.Blob.ContentLength > 0 {
		signed, err = h.presigner.PresignUpload(r.Context(), presign.UploadParams{
			Bucket:        bucket,
			Key:           tok.Blob.Key,
			ContentType:   tok.Blob.ContentType,
			ContentLength: tok.Blob.ContentLength,
			ExpiresIn:     tokenPresignTTL,
		})
	} else {
		signed, err = h.presigner.PresignDownload(r.Context(), presign.DownloadParams{
			Bucket:    bucket,
			Key:       tok.Blob.Key,
			ExpiresIn: tokenPresignTTL,
		})
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "token presign failed", logger.KeyError, err)
		h.restoreToken(w, r, tok.ID)
		return
	}

	response.WriteJSONOK(w, map[string]any{
		"url":       signed.URL,
		"method":    signed.Method,
		"expiresAt": signed.ExpiresAt,
	})
}

type tokenCreateRequest struct {
	Action           string `json:"action"`
	Label            string `json:"label,omitempty"`
	ExpiresInSeconds int64  `json:"expiresInSeconds,omitempty"`

	IdentityID string             `json:"identityId,omitempty"`
	Blob       *token.BlobPayload `json:"blob,omitempty"`
}

// Create mints a stateful token. Admin only; invites use the dedicated
// identity endpoint.
func (h *TokenHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req tokenCreateRequest
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

	ttl := defaultInviteTTL
	if req.ExpiresInSeconds > 0 {
		ttl = time.Duration(req.ExpiresInSeconds) * time.Second
	}

	tok, err := h.tokens.Create(r.Context(), token.CreateInput{
		Action:     req.Action,
		CreatedBy:  caller.ID,
		TTL:        ttl,
		Label:      req.Label,
		IdentityID: req.IdentityID,
		Blob:       req.Blob,
	})
	if err != nil {
		response.InvalidRequest(w, "invalid token request")
		return
	}

	response.WriteJSONOK(w, map[string]any{
		"tokenId":   tok.ID,
		"action":    tok.Action,
		"expiresAt": tok.ExpiresAt,
	})
}

// Revoke invalidates an unused token. The creator or an admin may
// revoke; already-claimed tokens stay used.
func (h *TokenHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	var req tokenIDRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	caller, perms := callerPermissions(w, r, h.identities)
	if perms == nil {
		return
	}

	tok, err := h.tokens.Get(r.Context(), req.TokenID)
	if errors.Is(err, token.ErrTokenNotFound) {
		response.NotFound(w, "token not found")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "token load failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}
	if !perms.Admin && tok.CreatedBy != caller.ID {
		response.Forbidden(w, "cannot revoke other identities' tokens")
		return
	}

	err = h.tokens.Revoke(r.Context(), req.TokenID)
	if errors.Is(err, token.ErrTokenUsed) {
		response.Conflict(w, "token already claimed")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "token revoke failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}
	response.WriteJSONOK(w, map[string]any{"ok": true})
}

// List returns the caller's tokens as safe metadata.
func (h *TokenHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, perms := callerPermissions(w, r, h.identities)
	if perms == nil {
		return
	}

	tokens, err := h.tokens.ListByCreator(r.Context(), caller.ID)
	if err != nil {
		logger.ErrorCtx(r.Context(), "token list failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	views := make([]*token.SafeMetadata, 0, len(tokens))
	for i := range tokens {
		views = append(views, tokens[i].Safe())
	}
	response.WriteJSONOK(w, map[string]any{"tokens": views})
}
