package apiclient

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// Blob visibility levels.
const (
	VisibilityPublic    = "public"
	VisibilityPresigned = "presigned"
	VisibilityPrivate   = "private"
)

// BlobInfo is object metadata. DownloadURL is set unless the object is
// private.
type BlobInfo struct {
	Key         string    `json:"key"`
	Namespace   string    `json:"namespace"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	Visibility  string    `json:"visibility"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
}

// UploadBlobOptions control an upload's content type and visibility.
type UploadBlobOptions struct {
	ContentType string
	Visibility  string
}

// UploadBlob streams body into the store under namespace/key. Object
// coordinates travel in headers so the body is not framed; size must
// match the body's length.
func (c *Client) UploadBlob(namespace, key string, body io.Reader, size int64, opts UploadBlobOptions) error {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/blob/upload", body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.ContentLength = size

	req.Header.Set("X-Blob-Namespace", namespace)
	req.Header.Set("X-Blob-Key", key)
	if opts.ContentType != "" {
		req.Header.Set("Content-Type", opts.ContentType)
	}
	if opts.Visibility != "" {
		req.Header.Set("X-Blob-Visibility", opts.Visibility)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return decodeAPIError(resp.StatusCode, respBody)
	}
	return nil
}

// GetBlob returns object metadata and, unless the object is private, a
// signed download URL.
func (c *Client) GetBlob(namespace, key string) (*BlobInfo, error) {
	req := struct {
		Namespace string `json:"namespace"`
		Key       string `json:"key"`
	}{Namespace: namespace, Key: key}

	var resp BlobInfo
	if err := c.post("/blob/get", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteBlob removes an object and its visibility flag.
func (c *Client) DeleteBlob(namespace, key string) error {
	req := struct {
		Namespace string `json:"namespace"`
		Key       string `json:"key"`
	}{Namespace: namespace, Key: key}
	return c.post("/blob/delete", req, nil)
}

// ListBlobsRequest scans a namespace's objects by prefix.
type ListBlobsRequest struct {
	Namespace string `json:"namespace"`
	Prefix    string `json:"prefix,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Cursor    string `json:"cursor,omitempty"`
}

// BlobObject is one listed object.
type BlobObject struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// ListBlobsResponse is one page of objects. Cursor continues the scan
// while Truncated is true.
type ListBlobsResponse struct {
	Objects   []BlobObject `json:"objects"`
	Truncated bool         `json:"truncated"`
	Cursor    string       `json:"cursor"`
}

// ListBlobs lists a namespace's objects under a prefix.
func (c *Client) ListBlobs(req ListBlobsRequest) (*ListBlobsResponse, error) {
	var resp ListBlobsResponse
	if err := c.post("/blob/list", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PresignUploadRequest requests a signed PUT URL bound to the exact
// content type and size of the eventual upload.
type PresignUploadRequest struct {
	Namespace        string `json:"namespace"`
	Key              string `json:"key"`
	ContentType      string `json:"contentType"`
	Size             int64  `json:"size"`
	ExpiresInSeconds int64  `json:"expiresInSeconds,omitempty"`
}

// PresignUploadResponse carries the signed upload URL.
type PresignUploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PresignUpload issues a signed upload URL for one object.
func (c *Client) PresignUpload(req PresignUploadRequest) (*PresignUploadResponse, error) {
	var resp PresignUploadResponse
	if err := c.post("/blob/presign-upload", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetBlobVisibility flags an object public, presigned or private.
func (c *Client) SetBlobVisibility(namespace, key, visibility string) error {
	req := struct {
		Namespace  string `json:"namespace"`
		Key        string `json:"key"`
		Visibility string `json:"visibility"`
	}{Namespace: namespace, Key: key, Visibility: visibility}
	return c.post("/blob/visibility", req, nil)
}

// DownloadBlob fetches a signed or public download URL and returns the
// response body. The caller must close it.
func (c *Client) DownloadBlob(url string) (io.ReadCloser, error) {
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, decodeAPIError(resp.StatusCode, respBody)
	}
	return resp.Body, nil
}
