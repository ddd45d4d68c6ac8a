package apiclient

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadBlob(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/blob/upload", r.URL.Path)
		assert.Equal(t, "app-example-com", r.Header.Get("X-Blob-Namespace"))
		assert.Equal(t, "reports/q3.txt", r.Header.Get("X-Blob-Key"))
		assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
		assert.Equal(t, "public", r.Header.Get("X-Blob-Visibility"))
		assert.Equal(t, "ApiKey key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(body))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"key":"reports/q3.txt","namespace":"app-example-com"}`))
	}))
	defer server.Close()

	client := New(server.URL).WithAPIKey("key")
	err := client.UploadBlob("app-example-com", "reports/q3.txt",
		strings.NewReader("hello"), 5,
		UploadBlobOptions{ContentType: "text/plain", Visibility: VisibilityPublic})

	require.NoError(t, err)
}

func TestGetBlob(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/blob/get", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(BlobInfo{
			Key:         "reports/q3.txt",
			Namespace:   "app-example-com",
			Size:        5,
			ContentType: "text/plain",
			Visibility:  VisibilityPresigned,
			DownloadURL: "http://gateway/blob/download/app-example-com/reports/q3.txt?token=x",
		})
	}))
	defer server.Close()

	info, err := New(server.URL).WithAPIKey("key").GetBlob("app-example-com", "reports/q3.txt")

	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, VisibilityPresigned, info.Visibility)
	assert.NotEmpty(t, info.DownloadURL)
}

func TestPresignUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/blob/presign-upload", r.URL.Path)

		var req PresignUploadRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(1024), req.Size)
		assert.Equal(t, "image/png", req.ContentType)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(PresignUploadResponse{
			UploadURL: "http://gateway/blob/presigned-put?token=y",
			Method:    http.MethodPut,
		})
	}))
	defer server.Close()

	resp, err := New(server.URL).WithAPIKey("key").PresignUpload(PresignUploadRequest{
		Namespace:   "ns",
		Key:         "avatar.png",
		ContentType: "image/png",
		Size:        1024,
	})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, resp.Method)
	assert.Contains(t, resp.UploadURL, "token=")
}

func TestDownloadBlob(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello"))
	}))
	defer server.Close()

	body, err := New(server.URL).DownloadBlob(server.URL + "/blob/public/ns/file.txt")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestDownloadBlobExpired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"Unauthorized","message":"presigned URL has expired"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).DownloadBlob(server.URL + "/blob/download/ns/file.txt?token=stale")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsAuthError())
}
