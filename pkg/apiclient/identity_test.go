package apiclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIdentity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/identity/create", r.URL.Path)

		var req CreateIdentityRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user", req.Type)
		assert.Equal(t, "Alice", req.DisplayName)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(CreateIdentityResponse{
			Identity:   Identity{ID: "id_1", Type: "user", DisplayName: "Alice", Status: "active"},
			Credential: Credential{ID: "cred_1", Type: "api_key"},
			Secret:     "lk_secret",
		})
	}))
	defer server.Close()

	client := New(server.URL).WithAPIKey("admin-key")
	resp, err := client.CreateIdentity(CreateIdentityRequest{Type: "user", DisplayName: "Alice"})

	require.NoError(t, err)
	assert.Equal(t, "id_1", resp.Identity.ID)
	assert.Equal(t, "cred_1", resp.Credential.ID)
	assert.Equal(t, "api_key", resp.Credential.Type)
	assert.Equal(t, "lk_secret", resp.Secret)
}

func TestWhoamiBootstrap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/identity/whoami", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"bootstrap":true}`))
	}))
	defer server.Close()

	resp, err := New(server.URL).WithAPIKey("bootstrap-key").Whoami()

	require.NoError(t, err)
	assert.True(t, resp.Bootstrap)
	assert.Nil(t, resp.Identity)
}

func TestWhoamiIdentity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(WhoamiResponse{
			Identity:    &Identity{ID: "id_2", Type: "service", DisplayName: "ci"},
			Permissions: &Permissions{Admin: true},
		})
	}))
	defer server.Close()

	resp, err := New(server.URL).WithAPIKey("svc-key").Whoami()

	require.NoError(t, err)
	assert.False(t, resp.Bootstrap)
	require.NotNil(t, resp.Identity)
	assert.Equal(t, "id_2", resp.Identity.ID)
	require.NotNil(t, resp.Permissions)
	assert.True(t, resp.Permissions.Admin)
}

func TestRegisterApp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/identity/app/register", r.URL.Path)

		var req RegisterAppRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://app.example.com", req.Origin)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(RegisterAppResponse{
			Identity:  Identity{ID: "id_app", Type: "app"},
			Namespace: "app-example-com",
			APIKey:    "lk_app_secret",
		})
	}))
	defer server.Close()

	resp, err := New(server.URL).WithAPIKey("admin-key").RegisterApp(RegisterAppRequest{
		Origin: "https://app.example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "app-example-com", resp.Namespace)
	assert.Equal(t, "lk_app_secret", resp.APIKey)
}

func TestClaimToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token/claim", r.URL.Path)
		// Claim is public, no auth header expected
		assert.Empty(t, r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(ClaimTokenResponse{
			IdentityID:   "id_3",
			DisplayName:  "Invitee",
			CredentialID: "cred_1",
			APIKey:       "lk_new",
		})
	}))
	defer server.Close()

	resp, err := New(server.URL).ClaimToken("tok_1")

	require.NoError(t, err)
	assert.Equal(t, "id_3", resp.IdentityID)
	assert.Equal(t, "lk_new", resp.APIKey)
}

func TestClaimTokenConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"Conflict","message":"token already claimed"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).ClaimToken("tok_1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsConflict())
}
