package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/latchhq/latch/internal/logger"
	"github.com/latchhq/latch/pkg/gateway/response"
	"github.com/latchhq/latch/pkg/identity"
	"github.com/latchhq/latch/pkg/metrics"
	"github.com/latchhq/latch/pkg/store/channel"
	"github.com/latchhq/latch/pkg/token"
)

// ChannelTokenHeader carries a capability token as an alternative to an
// API key on channel endpoints.
const ChannelTokenHeader = "X-Channel-Token"

// defaultChannelTokenTTL applies when token creation names no expiry.
const defaultChannelTokenTTL = time.Hour

// ChannelHandler serves the channel endpoints.
type ChannelHandler struct {
	channels   channel.Store
	identities *identity.Store
	metrics    metrics.GatewayMetrics
}

// NewChannelHandler creates the channel endpoint handler.
func NewChannelHandler(channels channel.Store, identities *identity.Store, m metrics.GatewayMetrics) *ChannelHandler {
	return &ChannelHandler{channels: channels, identities: identities, metrics: m}
}

// channelView is channel metadata without the signing secret.
type channelView struct {
	ChannelID      string    `json:"channelId"`
	Name           string    `json:"name"`
	OwnerNamespace string    `json:"ownerNamespace"`
	CreatedAt      time.Time `json:"createdAt"`
}

func channelViewOf(meta *channel.Metadata) channelView {
	return channelView{
		ChannelID:      meta.ID,
		Name:           meta.Name,
		OwnerNamespace: meta.OwnerNamespace,
		CreatedAt:      meta.CreatedAt,
	}
}

// loadChannel fetches metadata and maps missing channels to 404. A nil
// return means the response was written.
func (h *ChannelHandler) loadChannel(w http.ResponseWriter, r *http.Request, id string) *channel.Metadata {
	if id == "" {
		response.InvalidRequest(w, "channelId is required")
		return nil
	}

	meta, err := h.channels.GetMetadata(r.Context(), id)
	if errors.Is(err, channel.ErrNotFound) {
		response.NotFound(w, "channel not found")
		return nil
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "channel load failed",
			logger.KeyChannel, id, logger.KeyError, err)
		response.Upstream(w)
		return nil
	}

	if lc := logger.FromContext(r.Context()); lc != nil {
		lc.ChannelID = id
	}
	return meta
}

// capabilityFrom verifies an X-Channel-Token against the channel secret.
// Returns nil without writing when no token is present; writes 401 and
// returns nil on a bad token (second return false).
func capabilityFrom(w http.ResponseWriter, r *http.Request, meta *channel.Metadata) (*token.Capability, bool) {
	raw := r.Header.Get(ChannelTokenHeader)
	if raw == "" {
		return nil, true
	}

	verified, err := token.VerifyCapability(meta.Secret, raw)
	if err != nil {
		response.Unauthorized(w, "invalid channel token")
		return nil, false
	}
	return verified, true
}

// ownerAccess reports whether the API-key caller may manage the channel:
// it must be able to address the channel's owner namespace, or hold a
// matching grant.
func (h *ChannelHandler) ownerAccess(w http.ResponseWriter, r *http.Request, meta *channel.Metadata) (*identity.Identity, *identity.Permissions) {
	ident, perms := callerPermissions(w, r, h.identities)
	if perms == nil {
		return nil, nil
	}
	if !perms.CanAccessNamespace(meta.OwnerNamespace) &&
		!perms.Has(identity.CapChannelManage, identity.Resource{Type: identity.ResourceChannel, ID: meta.ID}) {
		response.Forbidden(w, "not the channel owner")
		return nil, nil
	}
	return ident, perms
}

type channelCreateRequest struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// Create registers a new channel owned by the namespace.
func (h *ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req channelCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !identity.ValidNamespace(req.Namespace) {
		response.InvalidRequest(w, "invalid namespace")
		return
	}

	_, perms := callerPermissions(w, r, h.identities)
	if perms == nil {
		return
	}
	if !perms.CanAccessNamespace(req.Namespace) {
		response.Forbidden(w, "namespace not accessible")
		return
	}

	meta, err := h.channels.Create(r.Context(), channel.NewID(), req.Name, req.Namespace, channel.NewSecret())
	if err != nil {
		logger.ErrorCtx(r.Context(), "channel create failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	response.WriteJSONOK(w, channelViewOf(meta))
}

type channelListRequest struct {
	Namespace string `json:"namespace"`
}

// List returns the channels owned by a namespace.
func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	var req channelListRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !identity.ValidNamespace(req.Namespace) {
		response.InvalidRequest(w, "invalid namespace")
		return
	}

	_, perms := callerPermissions(w, r, h.identities)
	if perms == nil {
		return
	}
	if !perms.CanAccessNamespace(req.Namespace) {
		response.Forbidden(w, "namespace not accessible")
		return
	}

	metas, err := h.channels.ListByNamespace(r.Context(), req.Namespace)
	if err != nil {
		logger.ErrorCtx(r.Context(), "channel list failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	views := make([]channelView, 0, len(metas))
	for i := range metas {
		views = append(views, channelViewOf(&metas[i]))
	}
	response.WriteJSONOK(w, map[string]any{"channels": views})
}

type channelGetRequest struct {
	ChannelID string `json:"channelId"`
}

// Get returns channel metadata to its owner.
func (h *ChannelHandler) Get(w http.ResponseWriter, r *http.Request) {
	var req channelGetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	meta := h.loadChannel(w, r, req.ChannelID)
	if meta == nil {
		return
	}
	if _, perms := h.ownerAccess(w, r, meta); perms == nil {
		return
	}

	response.WriteJSONOK(w, channelViewOf(meta))
}

type channelAppendRequest struct {
	ChannelID string `json:"channelId"`
	Content   string `json:"content"`
	AuthorID  string `json:"authorId,omitempty"`
}

// Append writes a message event. Token callers author as the token's
// authorId; API-key callers must name one.
func (h *ChannelHandler) Append(w http.ResponseWriter, r *http.Request) {
	var req channelAppendRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	meta := h.loadChannel(w, r, req.ChannelID)
	if meta == nil {
		return
	}

	capability, ok := capabilityFrom(w, r, meta)
	if !ok {
		return
	}

	var authorID string
	switch {
	case capability != nil:
		if !capability.Has(token.PermAppend) {
			response.Forbidden(w, "token does not permit append")
			return
		}
		authorID = capability.AuthorID
	default:
		if _, perms := h.ownerAccess(w, r, meta); perms == nil {
			return
		}
		if req.AuthorID == "" {
			response.InvalidRequest(w, "authorId is required")
			return
		}
		authorID = req.AuthorID
	}

	event, err := h.channels.Append(r.Context(), meta.ID, channel.AppendInput{
		AuthorID: authorID,
		Content:  req.Content,
	})
	if errors.Is(err, channel.ErrContentTooLong) {
		response.InvalidRequest(w, "content exceeds maximum length")
		return
	}
	if errors.Is(err, channel.ErrNotFound) {
		response.NotFound(w, "channel not found")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "channel append failed",
			logger.KeyChannel, meta.ID, logger.KeyError, err)
		response.Upstream(w)
		return
	}

	metrics.ObserveChannelAppend(h.metrics, channel.EventTypeMessage)
	response.WriteJSONOK(w, event)
}

type channelReadRequest struct {
	ChannelID      string `json:"channelId"`
	AfterSeq       uint64 `json:"afterSeq,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	IncludeDeleted bool   `json:"includeDeleted,omitempty"`
}

// Read returns visible events. Tokens need read, plus read:deleted for
// includeDeleted.
func (h *ChannelHandler) Read(w http.ResponseWriter, r *http.Request) {
	var req channelReadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	meta := h.loadChannel(w, r, req.ChannelID)
	if meta == nil {
		return
	}

	capability, ok := capabilityFrom(w, r, meta)
	if !ok {
		return
	}
	if capability != nil {
		if !capability.Has(token.PermRead) {
			response.Forbidden(w, "token does not permit read")
			return
		}
		if req.IncludeDeleted && !capability.Has(token.PermReadDeleted) {
			response.Forbidden(w, "token does not permit reading deleted events")
			return
		}
	} else {
		if _, perms := h.ownerAccess(w, r, meta); perms == nil {
			return
		}
	}

	result, err := h.channels.Read(r.Context(), meta.ID, channel.ReadOptions{
		AfterSeq:       req.AfterSeq,
		Limit:          req.Limit,
		IncludeDeleted: req.IncludeDeleted,
	})
	if errors.Is(err, channel.ErrNotFound) {
		response.NotFound(w, "channel not found")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "channel read failed",
			logger.KeyChannel, meta.ID, logger.KeyError, err)
		response.Upstream(w)
		return
	}

	response.WriteJSONOK(w, result)
}

// Delete purges a channel. Owner only; capability tokens cannot delete
// channels.
func (h *ChannelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req channelGetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	meta := h.loadChannel(w, r, req.ChannelID)
	if meta == nil {
		return
	}
	if _, perms := h.ownerAccess(w, r, meta); perms == nil {
		return
	}

	if err := h.channels.Delete(r.Context(), meta.ID); err != nil {
		logger.ErrorCtx(r.Context(), "channel delete failed",
			logger.KeyChannel, meta.ID, logger.KeyError, err)
		response.Upstream(w)
		return
	}
	response.WriteJSONOK(w, map[string]any{"ok": true})
}

type channelDeleteEventRequest struct {
	ChannelID string `json:"channelId"`
	TargetSeq uint64 `json:"targetSeq"`
}

// DeleteEvent appends a tombstone for an earlier message. Owners may
// delete any event; tokens need delete:any, or delete:own with a
// matching author.
func (h *ChannelHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	var req channelDeleteEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	meta := h.loadChannel(w, r, req.ChannelID)
	if meta == nil {
		return
	}

	capability, ok := capabilityFrom(w, r, meta)
	if !ok {
		return
	}

	var authorID string
	switch {
	case capability != nil:
		authorID = capability.AuthorID
		switch {
		case capability.Has(token.PermDeleteAny):
		case capability.Has(token.PermDeleteOwn):
			target, err := h.channels.GetEvent(r.Context(), meta.ID, req.TargetSeq)
			if errors.Is(err, channel.ErrEventNotFound) {
				response.NotFound(w, "event not found")
				return
			}
			if err != nil {
				logger.ErrorCtx(r.Context(), "event load failed",
					logger.KeyChannel, meta.ID, logger.KeyError, err)
				response.Upstream(w)
				return
			}
			if target.AuthorID != capability.AuthorID {
				response.Forbidden(w, "token only permits deleting own events")
				return
			}
		default:
			response.Forbidden(w, "token does not permit delete")
			return
		}
	default:
		ident, perms := h.ownerAccess(w, r, meta)
		if perms == nil {
			return
		}
		authorID = ident.ID
	}

	event, err := h.channels.AppendDeletion(r.Context(), meta.ID, channel.DeletionInput{
		AuthorID:  authorID,
		TargetSeq: req.TargetSeq,
	})
	if errors.Is(err, channel.ErrInvalidTarget) {
		response.InvalidRequest(w, "invalid deletion target")
		return
	}
	if errors.Is(err, channel.ErrNotFound) {
		response.NotFound(w, "channel not found")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "event delete failed",
			logger.KeyChannel, meta.ID, logger.KeyError, err)
		response.Upstream(w)
		return
	}

	metrics.ObserveChannelAppend(h.metrics, channel.EventTypeDeletion)
	response.WriteJSONOK(w, event)
}

type channelTokenCreateRequest struct {
	ChannelID        string   `json:"channelId"`
	Permissions      []string `json:"permissions"`
	AuthorID         string   `json:"authorId,omitempty"`
	ExpiresInSeconds int64    `json:"expiresInSeconds,omitempty"`
}

// CreateToken mints a capability token for the channel. Owner only.
func (h *ChannelHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	var req channelTokenCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	meta := h.loadChannel(w, r, req.ChannelID)
	if meta == nil {
		return
	}
	if _, perms := h.ownerAccess(w, r, meta); perms == nil {
		return
	}

	ttl := defaultChannelTokenTTL
	if req.ExpiresInSeconds > 0 {
		ttl = time.Duration(req.ExpiresInSeconds) * time.Second
	}

	minted, err := token.MintCapability(meta.Secret, meta.ID, req.Permissions, req.AuthorID, ttl)
	if errors.Is(err, token.ErrInvalidPermission) {
		response.InvalidRequest(w, "invalid permission set")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "token mint failed",
			logger.KeyChannel, meta.ID, logger.KeyError, err)
		response.Upstream(w)
		return
	}

	response.WriteJSONOK(w, map[string]any{
		"token":     minted,
		"channelId": meta.ID,
		"expiresAt": time.Now().Add(ttl),
	})
}
