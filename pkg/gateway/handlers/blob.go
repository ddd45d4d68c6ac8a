package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/latchhq/latch/internal/logger"
	"github.com/latchhq/latch/pkg/gateway/response"
	"github.com/latchhq/latch/pkg/identity"
	"github.com/latchhq/latch/pkg/metrics"
	"github.com/latchhq/latch/pkg/presign"
	"github.com/latchhq/latch/pkg/store/blob"
	"github.com/latchhq/latch/pkg/store/kv"
)

// Upload metadata travels in headers so the body can stream.
const (
	BlobNamespaceHeader  = "X-Blob-Namespace"
	BlobKeyHeader        = "X-Blob-Key"
	BlobPublicHeader     = "X-Blob-Public"
	BlobVisibilityHeader = "X-Blob-Visibility"
)

// Blob visibility levels. The flag lives in the KV store under a
// reserved prefix keyed by the full storage key.
const (
	VisibilityPublic    = "public"
	VisibilityPresigned = "presigned"
	VisibilityPrivate   = "private"

	blobVisibilityPrefix = "__BLOB_VISIBILITY:"
)

// defaultPresignTTL applies when a presign request names no expiry.
const defaultPresignTTL = time.Hour

// BlobHandler serves the blob endpoints. presigner issues upload and
// download URLs in whichever mode the deployment runs; local verifies
// gateway-terminated tokens and is nil when presigning is delegated to
// the backend.
type BlobHandler struct {
	blobs      blob.Store
	kv         kv.Store
	identities *identity.Store
	presigner  presign.Presigner
	local      *presign.LocalPresigner
	bucket     string
	presignTTL time.Duration
	metrics    metrics.GatewayMetrics
}

// NewBlobHandler creates the blob endpoint handler.
func NewBlobHandler(blobs blob.Store, kvStore kv.Store, identities *identity.Store, presigner presign.Presigner, local *presign.LocalPresigner, bucket string, presignTTL time.Duration, m metrics.GatewayMetrics) *BlobHandler {
	if presignTTL <= 0 {
		presignTTL = defaultPresignTTL
	}
	return &BlobHandler{
		blobs:      blobs,
		kv:         kvStore,
		identities: identities,
		presigner:  presigner,
		local:      local,
		bucket:     bucket,
		presignTTL: presignTTL,
		metrics:    m,
	}
}

// blobKey joins namespace and object key into the storage key.
func blobKey(namespace, key string) string {
	return namespace + "/" + key
}

func validBlobKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}

// checkNamespace mirrors the KV handler's policy gate.
func (h *BlobHandler) checkNamespace(w http.ResponseWriter, r *http.Request, namespace string) bool {
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

func (h *BlobHandler) visibility(r *http.Request, storageKey string) string {
	value, err := h.kv.Get(r.Context(), blobVisibilityPrefix+storageKey)
	if err != nil {
		return VisibilityPrivate
	}
	return string(value)
}

// Upload streams the request body into the store. Object coordinates
// travel in X-Blob-Namespace and X-Blob-Key so the body is not framed.
func (h *BlobHandler) Upload(w http.ResponseWriter, r *http.Request) {
	namespace := r.Header.Get(BlobNamespaceHeader)
	key := r.Header.Get(BlobKeyHeader)
	if !validBlobKey(key) {
		response.InvalidRequest(w, "invalid blob key")
		return
	}
	if !h.checkNamespace(w, r, namespace) {
		return
	}

	visibility := r.Header.Get(BlobVisibilityHeader)
	if visibility == "" && r.Header.Get(BlobPublicHeader) == "true" {
		visibility = VisibilityPublic
	}
	if visibility != "" && visibility != VisibilityPublic &&
		visibility != VisibilityPresigned && visibility != VisibilityPrivate {
		response.InvalidRequest(w, "invalid visibility")
		return
	}

	storageKey := blobKey(namespace, key)
	err := h.blobs.Put(r.Context(), storageKey, r.Body, blob.PutOptions{
		ContentType:   r.Header.Get("Content-Type"),
		ContentLength: r.ContentLength,
	})
	if err != nil {
		logger.ErrorCtx(r.Context(), "blob put failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	if visibility != "" {
		if err := h.kv.Put(r.Context(), blobVisibilityPrefix+storageKey, []byte(visibility)); err != nil {
			logger.ErrorCtx(r.Context(), "blob visibility write failed", logger.KeyError, err)
			response.Upstream(w)
			return
		}
	}

	if r.ContentLength > 0 {
		metrics.ObserveBlobTransfer(h.metrics, "upload", r.ContentLength)
	}
	response.WriteJSONOK(w, map[string]any{"key": key, "namespace": namespace})
}

type blobGetRequest struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
}

// Get returns object metadata. Unless the object is private a signed
// download URL is included.
func (h *BlobHandler) Get(w http.ResponseWriter, r *http.Request) {
	var req blobGetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validBlobKey(req.Key) {
		response.InvalidRequest(w, "invalid blob key")
		return
	}
	if !h.checkNamespace(w, r, req.Namespace) {
		return
	}

	storageKey := blobKey(req.Namespace, req.Key)
	object, err := h.blobs.Get(r.Context(), storageKey)
	if errors.Is(err, blob.ErrNotFound) {
		response.NotFound(w, "blob not found")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "blob get failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}
	object.Body.Close()

	visibility := h.visibility(r, storageKey)
	body := map[string]any{
		"key":         req.Key,
		"namespace":   req.Namespace,
		"size":        object.Size,
		"contentType": object.ContentType,
		"visibility":  visibility,
	}

	if visibility != VisibilityPrivate {
		signed, err := h.presigner.PresignDownload(r.Context(), presign.DownloadParams{
			Bucket:    h.bucket,
			Key:       storageKey,
			ExpiresIn: h.presignTTL,
		})
		if err != nil {
			logger.ErrorCtx(r.Context(), "presign download failed", logger.KeyError, err)
			response.Upstream(w)
			return
		}
		body["downloadUrl"] = signed.URL
		body["expiresAt"] = signed.ExpiresAt
	}

	response.WriteJSONOK(w, body)
}

// Delete removes the object and its visibility flag.
func (h *BlobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req blobGetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validBlobKey(req.Key) {
		response.InvalidRequest(w, "invalid blob key")
		return
	}
	if !h.checkNamespace(w, r, req.Namespace) {
		return
	}

	storageKey := blobKey(req.Namespace, req.Key)
	if err := h.blobs.Delete(r.Context(), storageKey); err != nil && !errors.Is(err, blob.ErrNotFound) {
		logger.ErrorCtx(r.Context(), "blob delete failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}
	if err := h.kv.Delete(r.Context(), blobVisibilityPrefix+storageKey); err != nil {
		logger.ErrorCtx(r.Context(), "blob visibility delete failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}
	response.WriteJSONOK(w, map[string]any{"ok": true})
}

type blobListRequest struct {
	Namespace string `json:"namespace"`
	Prefix    string `json:"prefix,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Cursor    string `json:"cursor,omitempty"`
}

// List scans the namespace's objects, trimming the namespace from the
// returned keys.
func (h *BlobHandler) List(w http.ResponseWriter, r *http.Request) {
	var req blobListRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.checkNamespace(w, r, req.Namespace) {
		return
	}

	nsPrefix := req.Namespace + "/"
	result, err := h.blobs.List(r.Context(), blob.ListOptions{
		Prefix: nsPrefix + req.Prefix,
		Limit:  req.Limit,
		Cursor: req.Cursor,
	})
	if err != nil {
		logger.ErrorCtx(r.Context(), "blob list failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	objects := make([]blob.ObjectInfo, 0, len(result.Objects))
	for _, object := range result.Objects {
		object.Key = strings.TrimPrefix(object.Key, nsPrefix)
		objects = append(objects, object)
	}

	response.WriteJSONOK(w, map[string]any{
		"objects":   objects,
		"truncated": result.Truncated,
		"cursor":    result.Cursor,
	})
}

type blobPresignUploadRequest struct {
	Namespace        string `json:"namespace"`
	Key              string `json:"key"`
	ContentType      string `json:"contentType"`
	Size             int64  `json:"size"`
	ExpiresInSeconds int64  `json:"expiresInSeconds,omitempty"`
}

// PresignUpload issues a signed PUT URL bound to the exact content type
// and size of the eventual upload.
func (h *BlobHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	var req blobPresignUploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validBlobKey(req.Key) {
		response.InvalidRequest(w, "invalid blob key")
		return
	}
	if req.Size < 0 {
		response.InvalidRequest(w, "size must be non-negative")
		return
	}
	if !h.checkNamespace(w, r, req.Namespace) {
		return
	}

	ttl := h.presignTTL
	if req.ExpiresInSeconds > 0 {
		ttl = time.Duration(req.ExpiresInSeconds) * time.Second
	}

	signed, err := h.presigner.PresignUpload(r.Context(), presign.UploadParams{
		Bucket:        h.bucket,
		Key:           blobKey(req.Namespace, req.Key),
		ContentType:   req.ContentType,
		ContentLength: req.Size,
		ExpiresIn:     ttl,
	})
	if err != nil {
		logger.ErrorCtx(r.Context(), "presign upload failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	response.WriteJSONOK(w, map[string]any{
		"uploadUrl": signed.URL,
		"method":    signed.Method,
		"expiresAt": signed.ExpiresAt,
	})
}

type blobVisibilityRequest struct {
	Namespace  string `json:"namespace"`
	Key        string `json:"key"`
	Visibility string `json:"visibility"`
}

// Visibility sets the public / presigned / private flag on an object.
func (h *BlobHandler) Visibility(w http.ResponseWriter, r *http.Request) {
	var req blobVisibilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validBlobKey(req.Key) {
		response.InvalidRequest(w, "invalid blob key")
		return
	}
	if req.Visibility != VisibilityPublic && req.Visibility != VisibilityPresigned &&
		req.Visibility != VisibilityPrivate {
		response.InvalidRequest(w, "visibility must be public, presigned or private")
		return
	}
	if !h.checkNamespace(w, r, req.Namespace) {
		return
	}

	storageKey := blobKey(req.Namespace, req.Key)
	object, err := h.blobs.Get(r.Context(), storageKey)
	if errors.Is(err, blob.ErrNotFound) {
		response.NotFound(w, "blob not found")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "blob get failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}
	object.Body.Close()

	if err := h.kv.Put(r.Context(), blobVisibilityPrefix+storageKey, []byte(req.Visibility)); err != nil {
		logger.ErrorCtx(r.Context(), "blob visibility write failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}
	response.WriteJSONOK(w, map[string]any{"ok": true, "visibility": req.Visibility})
}

// PublicDownload streams objects flagged public. No authentication; the
// route sits before the auth middleware.
func (h *BlobHandler) PublicDownload(w http.ResponseWriter, r *http.Request) {
	storageKey := chi.URLParam(r, "*")
	if storageKey == "" {
		response.InvalidRequest(w, "object path is required")
		return
	}

	if h.visibility(r, storageKey) != VisibilityPublic {
		// Hide existence of non-public objects.
		response.NotFound(w, "blob not found")
		return
	}

	h.stream(w, r, storageKey)
}

// PresignedPut accepts the upload leg of a gateway-terminated presigned
// URL. The request must match the token's content type and length
// exactly.
func (h *BlobHandler) PresignedPut(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.verifyPresignToken(w, r)
	if !ok {
		return
	}

	if r.Header.Get("Content-Type") != claims.ContentType {
		response.InvalidRequest(w, "content type does not match the presigned upload")
		return
	}
	if r.ContentLength != claims.ContentLength {
		response.InvalidRequest(w, "content length does not match the presigned upload")
		return
	}

	// The declared length is signed; the body must not exceed it.
	body := http.MaxBytesReader(w, r.Body, claims.ContentLength)
	err := h.blobs.Put(r.Context(), claims.Key, body, blob.PutOptions{
		ContentType:   claims.ContentType,
		ContentLength: claims.ContentLength,
	})
	if err != nil {
		logger.ErrorCtx(r.Context(), "presigned put failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}

	response.WriteJSONOK(w, map[string]any{"ok": true})
}

// PresignedGet streams the download leg of a gateway-terminated
// presigned URL.
func (h *BlobHandler) PresignedGet(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.verifyPresignToken(w, r)
	if !ok {
		return
	}
	h.stream(w, r, claims.Key)
}

// Download serves /blob/download/* where the URL carries both the object
// path and a signature token. The token must cover the addressed object.
func (h *BlobHandler) Download(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.verifyPresignToken(w, r)
	if !ok {
		return
	}

	storageKey := chi.URLParam(r, "*")
	if storageKey != claims.Key {
		response.Unauthorized(w, "token does not cover this object")
		return
	}
	h.stream(w, r, storageKey)
}

// verifyPresignToken checks the token query parameter against the local
// presigner. A false return means the response was written.
func (h *BlobHandler) verifyPresignToken(w http.ResponseWriter, r *http.Request) (*presign.Claims, bool) {
	if h.local == nil {
		response.NotFound(w, "gateway-terminated presigning is not enabled")
		return nil, false
	}

	claims, err := h.local.VerifyToken(r.URL.Query().Get("token"))
	if errors.Is(err, presign.ErrTokenExpired) {
		response.Unauthorized(w, "presigned URL has expired")
		return nil, false
	}
	if err != nil {
		response.Unauthorized(w, "invalid presigned URL")
		return nil, false
	}
	return claims, true
}

// stream writes the object body to the response with its stored content
// type.
func (h *BlobHandler) stream(w http.ResponseWriter, r *http.Request, storageKey string) {
	object, err := h.blobs.Get(r.Context(), storageKey)
	if errors.Is(err, blob.ErrNotFound) {
		response.NotFound(w, "blob not found")
		return
	}
	if err != nil {
		logger.ErrorCtx(r.Context(), "blob get failed", logger.KeyError, err)
		response.Upstream(w)
		return
	}
	defer object.Body.Close()

	if object.ContentType != "" {
		w.Header().Set("Content-Type", object.ContentType)
	}
	w.Header().Set("Content-Length", strconv.FormatInt(object.Size, 10))
	w.WriteHeader(http.StatusOK)

	written, err := io.Copy(w, object.Body)
	if err != nil {
		logger.WarnCtx(r.Context(), "blob stream interrupted", logger.KeyError, err)
	}
	metrics.ObserveBlobTransfer(h.metrics, "download", written)
}
