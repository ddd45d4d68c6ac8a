package presign

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/latchhq/latch/pkg/store/kv"
)

// SigningSecretKey is the reserved KV key holding the generated signing
// secret. Rotating or deleting it invalidates all outstanding URLs.
const SigningSecretKey = "__SIGNING_SECRET"

// tokenPayload is the signed content of a gateway-terminated URL token.
// Download tokens leave ContentType empty and ContentLength zero.
type tokenPayload struct {
	Bucket        string `json:"bucket"`
	Key           string `json:"key"`
	ContentType   string `json:"contentType,omitempty"`
	ContentLength int64  `json:"contentLength,omitempty"`
	ExpiresAt     int64  `json:"expiresAt"`
}

// LocalPresigner signs URLs that point back at the gateway's own
// presigned-put / presigned-get endpoints. Tokens are
// base64url(payload) + "." + base64url(HMAC-SHA256(payload, secret)).
type LocalPresigner struct {
	baseURL string
	secret  []byte
}

// NewLocalPresigner creates a gateway-terminated presigner. baseURL is
// the externally reachable gateway address, without a trailing slash.
func NewLocalPresigner(baseURL string, secret []byte) *LocalPresigner {
	return &LocalPresigner{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
	}
}

// LoadOrCreateSigningSecret returns the configured secret if non-empty,
// otherwise the persisted one, generating and storing a fresh 32-byte
// secret on first boot.
func LoadOrCreateSigningSecret(ctx context.Context, store kv.Store, configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}

	existing, err := store.Get(ctx, SigningSecretKey)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, kv.ErrNotFound) {
		return nil, fmt.Errorf("failed to load signing secret: %w", err)
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate signing secret: %w", err)
	}
	if err := store.Put(ctx, SigningSecretKey, secret); err != nil {
		return nil, fmt.Errorf("failed to persist signing secret: %w", err)
	}
	return secret, nil
}

func (p *LocalPresigner) sign(payload []byte) string {
	mac := hmac.New(sha256.New, p.secret)
	mac.Write(payload)
	return base64.RawURLEncoding.EncodeToString(payload) + "." +
		base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (p *LocalPresigner) mintToken(payload tokenPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode presign payload: %w", err)
	}
	return p.sign(raw), nil
}

// PresignUpload issues a gateway-terminated PUT URL.
func (p *LocalPresigner) PresignUpload(ctx context.Context, params UploadParams) (*PresignedURL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	expires := time.Now().Add(params.ExpiresIn)
	token, err := p.mintToken(tokenPayload{
		Bucket:        params.Bucket,
		Key:           params.Key,
		ContentType:   params.ContentType,
		ContentLength: params.ContentLength,
		ExpiresAt:     expires.Unix(),
	})
	if err != nil {
		return nil, err
	}

	return &PresignedURL{
		URL:       p.baseURL + "/blob/presigned-put?token=" + url.QueryEscape(token),
		Method:    "PUT",
		ExpiresAt: expires,
	}, nil
}

// PresignDownload issues a gateway-terminated GET URL.
func (p *LocalPresigner) PresignDownload(ctx context.Context, params DownloadParams) (*PresignedURL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	expires := time.Now().Add(params.ExpiresIn)
	token, err := p.mintToken(tokenPayload{
		Bucket:    params.Bucket,
		Key:       params.Key,
		ExpiresAt: expires.Unix(),
	})
	if err != nil {
		return nil, err
	}

	return &PresignedURL{
		URL:       p.baseURL + "/blob/presigned-get?token=" + url.QueryEscape(token),
		Method:    "GET",
		ExpiresAt: expires,
	}, nil
}

// Claims is a verified gateway-terminated token.
type Claims struct {
	Bucket        string
	Key           string
	ContentType   string
	ContentLength int64
	ExpiresAt     time.Time
}

// VerifyToken parses a token, checks its MAC in constant time and its
// expiry, and returns the signed claims.
func (p *LocalPresigner) VerifyToken(token string) (*Claims, error) {
	payloadPart, macPart, ok := strings.Cut(token, ".")
	if !ok {
		return nil, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return nil, ErrInvalidToken
	}
	presented, err := base64.RawURLEncoding.DecodeString(macPart)
	if err != nil {
		return nil, ErrInvalidToken
	}

	mac := hmac.New(sha256.New, p.secret)
	mac.Write(payload)
	if !hmac.Equal(presented, mac.Sum(nil)) {
		return nil, ErrInvalidToken
	}

	var decoded tokenPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, ErrInvalidToken
	}

	expires := time.Unix(decoded.ExpiresAt, 0)
	if time.Now().After(expires) {
		return nil, ErrTokenExpired
	}

	return &Claims{
		Bucket:        decoded.Bucket,
		Key:           decoded.Key,
		ContentType:   decoded.ContentType,
		ContentLength: decoded.ContentLength,
		ExpiresAt:     expires,
	}, nil
}

// Ensure LocalPresigner implements Presigner.
var _ Presigner = (*LocalPresigner)(nil)
