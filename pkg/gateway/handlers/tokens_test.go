package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latchhq/latch/pkg/identity"
	"github.com/latchhq/latch/pkg/presign"
	kvmemory "github.com/latchhq/latch/pkg/store/kv/memory"
	"github.com/latchhq/latch/pkg/token"
)

// failingPresigner stands in for an unreachable blob backend.
type failingPresigner struct{}

func (failingPresigner) PresignUpload(context.Context, presign.UploadParams) (*presign.PresignedURL, error) {
	return nil, errors.New("backend unavailable")
}

func (failingPresigner) PresignDownload(context.Context, presign.DownloadParams) (*presign.PresignedURL, error) {
	return nil, errors.New("backend unavailable")
}

func claimToken(t *testing.T, h *TokenHandler, tokenID string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]string{"tokenId": tokenID})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/token/claim", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Claim(rec, req)
	return rec
}

// A claim whose presign fails must not burn the token: the claimer
// retries once the backend is back and still gets its URL.
func TestClaimNotBurnedByPresignFailure(t *testing.T) {
	store := kvmemory.New()
	tokens := token.NewStore(store)
	identities := identity.NewStore(store)

	tok, err := tokens.Create(context.Background(), token.CreateInput{
		Action: token.ActionBlobAccess,
		TTL:    time.Hour,
		Blob:   &token.BlobPayload{Bucket: "blobs", Key: "ns/report.pdf"},
	})
	require.NoError(t, err)

	broken := NewTokenHandler(tokens, identities, failingPresigner{}, "blobs", nil)
	rec := claimToken(t, broken, tok.ID)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	stored, err := tokens.Get(context.Background(), tok.ID)
	require.NoError(t, err)
	assert.Equal(t, token.StateUnused, stored.State)

	// With the backend healthy again the same token claims fine, and
	// only once.
	local := presign.NewLocalPresigner("http://gateway.test", []byte("signing-secret"))
	healthy := NewTokenHandler(tokens, identities, local, "blobs", nil)

	rec = claimToken(t, healthy, tok.ID)
	require.Equal(t, http.StatusOK, rec.Code, "retry after restore failed: %s", rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["url"])

	rec = claimToken(t, healthy, tok.ID)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
