package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/latchhq/latch/internal/logger"
	"github.com/latchhq/latch/pkg/gateway/response"
	"github.com/latchhq/latch/pkg/identity"
	"github.com/latchhq/latch/pkg/store/kv"
)

// KVHandler serves the namespaced key-value endpoints.
type KVHandler struct {
	kv         kv.Store
	identities *identity.Store
}

// NewKVHandler creates the KV endpoint handler.
func NewKVHandler(kvStore kv.Store, identities *identity.Store) *KVHandler {
	return &KVHandler{kv: kvStore, identities: identities}
}

func storageKey(namespace, key string) string {
	return namespace + ":" + key
}

// checkNamespace validates the namespace shape and the caller's access to
// it. A false return means the error response was written.
func (h *KVHandler) checkNamespace(w http.ResponseWriter, r *http.Request, namespace string) bool {
	if !identity.ValidNamespace(namespace) {
		response.InvalidRequest(w, "invalid namespace")
		return false
	}

	_, perms := callerPermissions(w, r, h.identities)
	if perms == nil {
		return false
	}
	if !perms.CanAccessNamespace(namespace) {
		response.Forbidden(w, "namespace not accessible")
		return false
	}
	return true
}

type kvGetRequest struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
}

// Get returns the value for one key. The reserved __ORG:permissions key
// reads as "{}" even when never written; all other reserved namespaces
// are rejected.
func (h *KVHandler) Get(w http.ResponseWriter, r *http.Request) {
	var req kvGetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// The org permissions object predates namespace validation in the
	// browser clients; it is the one reserved key exposed read-only.
	if storageKey(req.Namespace, req.Key) == kv.OrgPermissionsKey {
		value, err := h.kv.Get(r.Context(), kv.OrgPermissionsKey)
		if errors.Is(err, kv.ErrNotFound) {
			value, _ = kv.SyntheticValue(kv.OrgPermissionsKey)
		} else if err != nil {
			logger.ErrorCtx(r.Context(), "kv get failed", logger.KeyError, err)
			response.Upstream(w)
			return
		}
		response.WriteJSONOK(w, map[string]any{"key": req.Key, "value": string(value)})
		return
	}

	if !h.checkNamespace(w, r, req.Namespace) {
		return
	}
	if req.Key == "" {
		response.InvalidRequest(w, "key is required")
		return
	}

	value, err := h.kv.Get(r.Context(), storageKey(req.Namespace, req.Key))
	if errors.Is(err, kv.ErrNotFound) {
		response.NotFound(w, "key not found")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "kv get failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	response.WriteJSONOK(w, map[string]any{"key": req.Key, "value": string(value)})
}

type kvSetRequest struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

// Set stores one value.
func (h *KVHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req kvSetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.checkNamespace(w, r, req.Namespace) {
		return
	}
	if req.Key == "" {
		response.InvalidRequest(w, "key is required")
		return
	}

	if err := h.kv.Put(r.Context(), storageKey(req.Namespace, req.Key), []byte(req.Value)); err != nil {
		logger.ErrorCtx(r.Context(), "kv put failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}
	response.WriteJSONOK(w, map[string]any{"ok": true})
}

// Delete removes one key.
func (h *KVHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req kvGetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.checkNamespace(w, r, req.Namespace) {
		return
	}

	if err := h.kv.Delete(r.Context(), storageKey(req.Namespace, req.Key)); err != nil {
		logger.ErrorCtx(r.Context(), "kv delete failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}
	response.WriteJSONOK(w, map[string]any{"ok": true})
}

type kvKeysRequest struct {
	Namespace string `json:"namespace"`
	Prefix    string `json:"prefix,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Cursor    string `json:"cursor,omitempty"`
}

// Keys lists keys in a namespace, optionally below a key prefix.
func (h *KVHandler) Keys(w http.ResponseWriter, r *http.Request) {
	var req kvKeysRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.checkNamespace(w, r, req.Namespace) {
		return
	}

	nsPrefix := req.Namespace + ":"
	result, err := h.kv.List(r.Context(), kv.ListOptions{
		Prefix: nsPrefix + req.Prefix,
		Limit:  req.Limit,
		Cursor: req.Cursor,
	})
	if err != nil {
		logger.ErrorCtx(r.Context(), "kv list failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	keys := make([]string, 0, len(result.Keys))
	for _, k := range result.Keys {
		keys = append(keys, strings.TrimPrefix(k.Name, nsPrefix))
	}

	response.WriteJSONOK(w, map[string]any{
		"keys":         keys,
		"cursor":       result.Cursor,
		"listComplete": result.ListComplete,
	})
}

type kvBulkGetRequest struct {
	Namespace string   `json:"namespace"`
	Keys      []string `json:"keys"`
}

// BulkGet returns the values for several keys at once. Missing keys are
// reported with null values.
func (h *KVHandler) BulkGet(w http.ResponseWriter, r *http.Request) {
	var req kvBulkGetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.checkNamespace(w, r, req.Namespace) {
		return
	}

	values := make(map[string]*string, len(req.Keys))
	for _, key := range req.Keys {
		value, err := h.kv.Get(r.Context(), storageKey(req.Namespace, key))
		if errors.Is(err, kv.ErrNotFound) {
			values[key] = nil
			continue
		}
		if err != nil {
			logger.ErrorCtx(r.Context(), "kv bulk get failed", logger.KeyError, err)
			response.Upstream(w)
			return
		}
		s := string(value)
		values[key] = &s
	}

	response.WriteJSONOK(w, map[string]any{"values": values})
}

type kvBulkSetRequest struct {
	Namespace string            `json:"namespace"`
	Entries   map[string]string `json:"entries"`
}

// BulkSet stores several values at once.
func (h *KVHandler) BulkSet(w http.ResponseWriter, r *http.Request) {
	var req kvBulkSetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.checkNamespace(w, r, req.Namespace) {
		return
	}

	for key, value := range req.Entries {
		if key == "" {
			response.InvalidRequest(w, "entry keys must be non-empty")
			return
		}
		if err := h.kv.Put(r.Context(), storageKey(req.Namespace, key), []byte(value)); err != nil {
			logger.ErrorCtx(r.Context(), "kv bulk set failed", logger.KeyError, err)
			response.Upstream(w)
			return
		}
	}
	response.WriteJSONOK(w, map[string]any{"ok": true, "count": len(req.Entries)})
}

// Namespaces lists the distinct non-reserved namespaces present in the
// store. Admin only.
func (h *KVHandler) Namespaces(w http.ResponseWriter, r *http.Request) {
	_, perms := callerPermissions(w, r, h.identities)
	if perms == nil {
		return
	}
	if !perms.Admin {
		response.Forbidden(w, "admin access required")
		return
	}

	namespaces := []string{}
	seen := make(map[string]struct{})
	cursor := ""
	for {
		page, err := h.kv.List(r.Context(), kv.ListOptions{Cursor: cursor})
		if err != nil {
			logger.ErrorCtx(r.Context(), "kv scan failed", logger.KeyError, err)
			response.Upstream(w)
			return
		}

		for _, key := range page.Keys {
			ns, _, ok := strings.Cut(key.Name, ":")
			if !ok || strings.HasPrefix(ns, "__") {
				continue
			}
			if _, dup := seen[ns]; dup {
				continue
			}
			seen[ns] = struct{}{}
			namespaces = append(namespaces, ns)
		}

		if page.ListComplete {
			break
		}
		cursor = page.Cursor
	}

	response.WriteJSONOK(w, map[string]any{"namespaces": namespaces})
}

// Dump returns every non-reserved key grouped by namespace. Admin only.
func (h *KVHandler) Dump(w http.ResponseWriter, r *http.Request) {
	_, perms := callerPermissions(w, r, h.identities)
	if perms == nil {
		return
	}
	if !perms.Admin {
		response.Forbidden(w, "admin access required")
		return
	}

	dump := make(map[string]map[string]string)
	cursor := ""
	for {
		page, err := h.kv.List(r.Context(), kv.ListOptions{Cursor: cursor})
		if err != nil {
			logger.ErrorCtx(r.Context(), "kv scan failed", logger.KeyError, err)
			response.Upstream(w)
			return
		}

		for _, key := range page.Keys {
			ns, rest, ok := strings.Cut(key.Name, ":")
			if !ok || strings.HasPrefix(ns, "__") {
				continue
			}

			value, err := h.kv.Get(r.Context(), key.Name)
			if errors.Is(err, kv.ErrNotFound) {
				continue
			}
			if err != nil {
				logger.ErrorCtx(r.Context(), "kv dump read failed", logger.KeyError, err)
				response.Upstream(w)
				return
			}

			if dump[ns] == nil {
				dump[ns] = make(map[string]string)
			}
			dump[ns][rest] = string(value)
		}

		if page.ListComplete {
			break
		}
		cursor = page.Cursor
	}

	response.WriteJSONOK(w, map[string]any{"namespaces": dump})
}
