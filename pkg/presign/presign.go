// Package presign issues short-lived signed URLs for direct blob upload
// and download.
//
// Two implementations exist: S3Presigner delegates to an S3-compatible
// backend so clients transfer directly against it, and LocalPresigner
// signs URLs that terminate at the gateway itself, for deployments with
// no presign-capable backend.
package presign

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for gateway-terminated token verification.
var (
	// ErrInvalidToken is returned when the token cannot be parsed or its
	// signature does not verify.
	ErrInvalidToken = errors.New("presign: invalid token")

	// ErrTokenExpired is returned for verified but expired tokens.
	ErrTokenExpired = errors.New("presign: token expired")
)

// UploadParams describes a presigned PUT. ContentType and ContentLength
// are bound into the signature: the eventual upload must match exactly.
type UploadParams struct {
	Bucket        string
	Key           string
	ContentType   string
	ContentLength int64
	ExpiresIn     time.Duration
}

// DownloadParams describes a presigned GET.
type DownloadParams struct {
	Bucket    string
	Key       string
	ExpiresIn time.Duration
}

// PresignedURL is an issued URL and its expiry.
type PresignedURL struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Presigner issues signed URLs for direct blob transfer.
type Presigner interface {
	// PresignUpload returns a URL accepting exactly one matching PUT.
	PresignUpload(ctx context.Context, params UploadParams) (*PresignedURL, error)

	// PresignDownload returns a URL streaming the object on GET.
	PresignDownload(ctx context.Context, params DownloadParams) (*PresignedURL, error)
}
