package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/latchhq/latch/internal/logger"
	"github.com/latchhq/latch/pkg/gateway/response"
	"github.com/latchhq/latch/pkg/identity"
	"github.com/latchhq/latch/pkg/store/shortlink"
)

// ShortLinkHandler serves the short redirect link endpoints. Management
// is admin only; resolution is public.
type ShortLinkHandler struct {
	links      shortlink.Store
	identities *identity.Store
}

// NewShortLinkHandler creates the short link endpoint handler.
func NewShortLinkHandler(links shortlink.Store, identities *identity.Store) *ShortLinkHandler {
	return &ShortLinkHandler{links: links, identities: identities}
}

func (h *ShortLinkHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	_, perms := callerPermissions(w, r, h.identities)
	if perms == nil {
		return false
	}
	if !perms.Admin {
		response.Forbidden(w, "admin access required")
		return false
	}
	return true
}

type shortCreateRequest struct {
	TargetURL string `json:"targetUrl"`
}

// Create registers a short link to an absolute http(s) URL.
func (h *ShortLinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req shortCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	target, err := url.Parse(req.TargetURL)
	if err != nil || !target.IsAbs() || (target.Scheme != "http" && target.Scheme != "https") {
		response.InvalidRequest(w, "targetUrl must be an absolute http or https URL")
		return
	}
	if !h.requireAdmin(w, r) {
		return
	}

	link, err := h.links.Create(r.Context(), req.TargetURL)
	if err != nil {
		logger.ErrorCtx(r.Context(), "short link create failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	response.WriteJSONOK(w, link)
}

// Delete removes a short link.
func (h *ShortLinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.requireAdmin(w, r) {
		return
	}

	err := h.links.Delete(r.Context(), id)
	if errors.Is(err, shortlink.ErrNotFound) {
		response.NotFound(w, "short link not found")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "short link delete failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}
	response.WriteJSONOK(w, map[string]any{"ok": true})
}

// List returns every short link.
func (h *ShortLinkHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	links, err := h.links.List(r.Context())
	if err != nil {
		logger.ErrorCtx(r.Context(), "short link list failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}
	response.WriteJSONOK(w, map[string]any{"links": links})
}

// Resolve redirects /s/{id} to the stored target. Public.
func (h *ShortLinkHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	link, err := h.links.Resolve(r.Context(), id)
	if errors.Is(err, shortlink.ErrNotFound) {
		response.NotFound(w, "short link not found")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "short link resolve failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	http.Redirect(w, r, link.TargetURL, http.StatusFound)
}
