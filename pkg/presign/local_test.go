package presign

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/latchhq/latch/pkg/store/kv"
	kvmemory "github.com/latchhq/latch/pkg/store/kv/memory"
)

func tokenFromURL(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("bad presigned url %q: %v", raw, err)
	}
	token := u.Query().Get("token")
	if token == "" {
		t.Fatalf("no token in %q", raw)
	}
	return token
}

func TestUploadTokenRoundTrip(t *testing.T) {
	p := NewLocalPresigner("https://gw.example.com", []byte("secret-key"))
	ctx := context.Background()

	presigned, err := p.PresignUpload(ctx, UploadParams{
		Bucket:        "blobs",
		Key:           "ns/pic.png",
		ContentType:   "image/png",
		ContentLength: 1234,
		ExpiresIn:     time.Minute,
	})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if presigned.Method != "PUT" {
		t.Errorf("expected PUT, got %q", presigned.Method)
	}
	if !strings.HasPrefix(presigned.URL, "https://gw.example.com/blob/presigned-put?token=") {
		t.Errorf("unexpected url shape: %q", presigned.URL)
	}

	claims, err := p.VerifyToken(tokenFromURL(t, presigned.URL))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Bucket != "blobs" || claims.Key != "ns/pic.png" {
		t.Errorf("claims lost location: %+v", claims)
	}
	if claims.ContentType != "image/png" || claims.ContentLength != 1234 {
		t.Errorf("claims lost content constraints: %+v", claims)
	}
}

func TestDownloadTokenRoundTrip(t *testing.T) {
	p := NewLocalPresigner("https://gw.example.com/", []byte("secret-key"))

	presigned, err := p.PresignDownload(context.Background(), DownloadParams{
		Bucket:    "blobs",
		Key:       "ns/doc.pdf",
		ExpiresIn: time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(presigned.URL, "https://gw.example.com/blob/presigned-get?token=") {
		t.Errorf("unexpected url shape: %q", presigned.URL)
	}

	claims, err := p.VerifyToken(tokenFromURL(t, presigned.URL))
	if err != nil {
		t.Fatal(err)
	}
	if claims.ContentType != "" || claims.ContentLength != 0 {
		t.Errorf("download token carries upload constraints: %+v", claims)
	}
}

func TestVerifyRejectsForgedToken(t *testing.T) {
	p := NewLocalPresigner("http://gw", []byte("secret-key"))
	other := NewLocalPresigner("http://gw", []byte("different-key"))

	presigned, err := other.PresignUpload(context.Background(), UploadParams{
		Bucket: "b", Key: "k", ExpiresIn: time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.VerifyToken(tokenFromURL(t, presigned.URL)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	if _, err := p.VerifyToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed input, got %v", err)
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	p := NewLocalPresigner("http://gw", []byte("secret-key"))

	presigned, err := p.PresignUpload(context.Background(), UploadParams{
		Bucket: "b", Key: "k", ExpiresIn: time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}

	token := tokenFromURL(t, presigned.URL)
	_, mac, _ := strings.Cut(token, ".")
	tampered := "eyJidWNrZXQiOiJvdGhlciJ9." + mac

	if _, err := p.VerifyToken(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	p := NewLocalPresigner("http://gw", []byte("secret-key"))

	presigned, err := p.PresignDownload(context.Background(), DownloadParams{
		Bucket: "b", Key: "k", ExpiresIn: -time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.VerifyToken(tokenFromURL(t, presigned.URL)); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestLoadOrCreateSigningSecret(t *testing.T) {
	store := kvmemory.New()
	ctx := context.Background()

	// Configured secret wins, nothing persisted.
	secret, err := LoadOrCreateSigningSecret(ctx, store, "configured")
	if err != nil {
		t.Fatal(err)
	}
	if string(secret) != "configured" {
		t.Errorf("configured secret ignored: %q", secret)
	}
	if _, err := store.Get(ctx, SigningSecretKey); !errors.Is(err, kv.ErrNotFound) {
		t.Error("configured secret must not be persisted")
	}

	// First boot generates and persists; second boot reuses.
	first, err := LoadOrCreateSigningSecret(ctx, store, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 32 {
		t.Fatalf("expected 32-byte secret, got %d", len(first))
	}

	second, err := LoadOrCreateSigningSecret(ctx, store, "")
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("signing secret not stable across boots")
	}
}
