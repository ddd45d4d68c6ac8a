package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestMintVerifyRoundTrip(t *testing.T) {
	tok, err := MintCapability(testSecret, "chan12hex456", []string{PermRead, PermAppend}, "alice", time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if !strings.HasPrefix(tok, "ct1.") {
		t.Fatalf("missing version prefix: %q", tok)
	}

	verified, err := VerifyCapability(testSecret, tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.ChannelID != "chan12hex456" {
		t.Errorf("wrong channel: %q", verified.ChannelID)
	}
	if verified.AuthorID != "alice" {
		t.Errorf("wrong author: %q", verified.AuthorID)
	}
	if !verified.Has(PermRead) || !verified.Has(PermAppend) {
		t.Errorf("permissions lost: %v", verified.Permissions)
	}
	if verified.Has(PermDeleteAny) {
		t.Error("permission invented out of thin air")
	}
}

func TestMintRandomAuthorNonce(t *testing.T) {
	tok, err := MintCapability(testSecret, "ch1", []string{PermRead}, "", time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	verified, err := VerifyCapability(testSecret, tok)
	if err != nil {
		t.Fatal(err)
	}
	if len(verified.AuthorID) != 4 {
		t.Errorf("expected 4-hex nonce, got %q", verified.AuthorID)
	}
}

func TestMintRejectsUnknownPermission(t *testing.T) {
	if _, err := MintCapability(testSecret, "ch1", []string{"sudo"}, "a", time.Minute); !errors.Is(err, ErrInvalidPermission) {
		t.Fatalf("expected ErrInvalidPermission, got %v", err)
	}
	if _, err := MintCapability(testSecret, "ch1", nil, "a", time.Minute); !errors.Is(err, ErrInvalidPermission) {
		t.Fatalf("expected ErrInvalidPermission for empty set, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	tok, err := MintCapability(testSecret, "ch1", []string{PermRead}, "a", time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := VerifyCapability("another-secret", tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyUnknownVersion(t *testing.T) {
	tok, err := MintCapability(testSecret, "ch1", []string{PermRead}, "a", time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	forged := "ct9." + strings.TrimPrefix(tok, "ct1.")
	if _, err := VerifyCapability(testSecret, forged); !errors.Is(err, ErrUnknownVersion) {
		t.Fatalf("expected ErrUnknownVersion, got %v", err)
	}

	if _, err := VerifyCapability(testSecret, "garbage"); !errors.Is(err, ErrUnknownVersion) {
		t.Fatalf("expected ErrUnknownVersion for prefixless token, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	tok, err := MintCapability(testSecret, "ch1", []string{PermRead}, "a", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := VerifyCapability(testSecret, tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	tok, err := MintCapability(testSecret, "ch1", []string{PermRead}, "a", time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	parts := strings.Split(strings.TrimPrefix(tok, "ct1."), ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected JWS shape: %q", tok)
	}
	tampered := "ct1." + parts[0] + ".eyJjaWQiOiJvdGhlciJ9." + parts[2]

	if _, err := VerifyCapability(testSecret, tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
