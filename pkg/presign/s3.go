package presign

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Presigner delegates URL signing to an S3-compatible backend; issued
// URLs point at the backend directly and never touch the gateway.
type S3Presigner struct {
	presign *s3.PresignClient
	bucket  string
}

// NewS3Presigner creates a presigner sharing the blob store's S3 client.
// bucket is the default bucket used when params leave Bucket empty.
func NewS3Presigner(client *s3.Client, bucket string) *S3Presigner {
	return &S3Presigner{
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
	}
}

func (p *S3Presigner) bucketFor(requested string) string {
	if requested != "" {
		return requested
	}
	return p.bucket
}

// PresignUpload issues a direct-to-backend PUT URL binding content type
// and length.
func (p *S3Presigner) PresignUpload(ctx context.Context, params UploadParams) (*PresignedURL, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(p.bucketFor(params.Bucket)),
		Key:    aws.String(params.Key),
	}
	if params.ContentType != "" {
		input.ContentType = aws.String(params.ContentType)
	}
	if params.ContentLength > 0 {
		input.ContentLength = aws.Int64(params.ContentLength)
	}

	req, err := p.presign.PresignPutObject(ctx, input, func(o *s3.PresignOptions) {
		o.Expires = params.ExpiresIn
	})
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &PresignedURL{
		URL:       req.URL,
		Method:    req.Method,
		ExpiresAt: time.Now().Add(params.ExpiresIn),
	}, nil
}

// PresignDownload issues a direct-to-backend GET URL.
func (p *S3Presigner) PresignDownload(ctx context.Context, params DownloadParams) (*PresignedURL, error) {
	req, err := p.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucketFor(params.Bucket)),
		Key:    aws.String(params.Key),
	}, func(o *s3.PresignOptions) {
		o.Expires = params.ExpiresIn
	})
	if err != nil {
		return nil, fmt.Errorf("failed to presign download: %w", err)
	}

	return &PresignedURL{
		URL:       req.URL,
		Method:    req.Method,
		ExpiresAt: time.Now().Add(params.ExpiresIn),
	}, nil
}

// Ensure S3Presigner implements Presigner.
var _ Presigner = (*S3Presigner)(nil)
