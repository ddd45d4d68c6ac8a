package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/latchhq/latch/pkg/gateway/response"
)

// endpointDoc describes one route in the served API document.
type endpointDoc struct {
	Method  string             `json:"method"`
	Path    string             `json:"path"`
	Auth    string             `json:"auth"`
	Summary string             `json:"summary"`
	Request *jsonschema.Schema `json:"requestSchema,omitempty"`
}

var (
	apiDocOnce sync.Once
	apiDoc     []byte
)

// OpenAPI serves a machine-readable description of the JSON endpoints,
// with request schemas reflected from the handler request types. Public.
func OpenAPI(w http.ResponseWriter, r *http.Request) {
	apiDocOnce.Do(buildAPIDoc)
	if apiDoc == nil {
		response.Upstream(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(apiDoc)
}

func buildAPIDoc() {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := func(v any) *jsonschema.Schema { return reflector.Reflect(v) }

	doc := map[string]any{
		"title":   "latch gateway API",
		"version": "v1",
		"endpoints": []endpointDoc{
			{Method: "GET", Path: "/ping", Auth: "none", Summary: "liveness probe"},
			{Method: "GET", Path: "/openapi", Auth: "none", Summary: "this document"},

			{Method: "POST", Path: "/identity/create", Auth: "bootstrap|admin", Summary: "create an identity and its first credential", Request: schema(&identityCreateRequest{})},
			{Method: "POST", Path: "/identity/list", Auth: "admin", Summary: "list identities"},
			{Method: "POST", Path: "/identity/delete", Auth: "admin", Summary: "delete an identity", Request: schema(&identityDeleteRequest{})},
			{Method: "POST", Path: "/identity/invite", Auth: "admin", Summary: "create a claimable identity and its claim token", Request: schema(&identityInviteRequest{})},
			{Method: "POST", Path: "/identity/whoami", Auth: "apikey", Summary: "describe the calling identity"},
			{Method: "POST", Path: "/identity/app/register", Auth: "admin", Summary: "register an app identity by origin", Request: schema(&appRegisterRequest{})},
			{Method: "POST", Path: "/identity/update", Auth: "apikey", Summary: "rename an identity", Request: schema(&identityUpdateRequest{})},
			{Method: "POST", Path: "/identity/rotate-credential", Auth: "apikey", Summary: "rotate a credential", Request: schema(&credentialRotateRequest{})},

			{Method: "POST", Path: "/kv/get", Auth: "apikey", Summary: "read one key", Request: schema(&kvGetRequest{})},
			{Method: "POST", Path: "/kv/set", Auth: "apikey", Summary: "write one key", Request: schema(&kvSetRequest{})},
			{Method: "POST", Path: "/kv/delete", Auth: "apikey", Summary: "delete one key", Request: schema(&kvGetRequest{})},
			{Method: "POST", Path: "/kv/keys", Auth: "apikey", Summary: "list keys in a namespace", Request: schema(&kvKeysRequest{})},
			{Method: "POST", Path: "/kv/bulk/get", Auth: "apikey", Summary: "read several keys", Request: schema(&kvBulkGetRequest{})},
			{Method: "POST", Path: "/kv/bulk/set", Auth: "apikey", Summary: "write several keys", Request: schema(&kvBulkSetRequest{})},
			{Method: "POST", Path: "/kv/namespaces", Auth: "admin", Summary: "list namespaces"},
			{Method: "POST", Path: "/kv/dump", Auth: "admin", Summary: "dump all non-reserved keys"},

			{Method: "POST", Path: "/blob/upload", Auth: "apikey", Summary: "upload a blob (streaming body, X-Blob-* headers)"},
			{Method: "POST", Path: "/blob/get", Auth: "apikey", Summary: "blob metadata and download URL", Request: schema(&blobGetRequest{})},
			{Method: "POST", Path: "/blob/delete", Auth: "apikey", Summary: "delete a blob", Request: schema(&blobGetRequest{})},
			{Method: "POST", Path: "/blob/list", Auth: "apikey", Summary: "list blobs in a namespace", Request: schema(&blobListRequest{})},
			{Method: "POST", Path: "/blob/presign-upload", Auth: "apikey", Summary: "issue a presigned upload URL", Request: schema(&blobPresignUploadRequest{})},
			{Method: "POST", Path: "/blob/visibility", Auth: "apikey", Summary: "set blob visibility", Request: schema(&blobVisibilityRequest{})},
			{Method: "GET", Path: "/blob/public/*", Auth: "none", Summary: "download a public blob"},
			{Method: "GET", Path: "/blob/download/*", Auth: "url-signature", Summary: "download a blob via signed URL"},
			{Method: "PUT", Path: "/blob/presigned-put", Auth: "url-signature", Summary: "upload leg of a gateway-terminated presigned URL"},
			{Method: "GET", Path: "/blob/presigned-get", Auth: "url-signature", Summary: "download leg of a gateway-terminated presigned URL"},

			{Method: "POST", Path: "/channel/create", Auth: "apikey", Summary: "create a channel", Request: schema(&channelCreateRequest{})},
			{Method: "POST", Path: "/channel/list", Auth: "apikey", Summary: "list channels in a namespace", Request: schema(&channelListRequest{})},
			{Method: "POST", Path: "/channel/get", Auth: "apikey", Summary: "channel metadata", Request: schema(&channelGetRequest{})},
			{Method: "POST", Path: "/channel/append", Auth: "apikey|channel-token", Summary: "append an event", Request: schema(&channelAppendRequest{})},
			{Method: "POST", Path: "/channel/read", Auth: "apikey|channel-token", Summary: "read events", Request: schema(&channelReadRequest{})},
			{Method: "POST", Path: "/channel/delete", Auth: "apikey", Summary: "delete a channel", Request: schema(&channelGetRequest{})},
			{Method: "POST", Path: "/channel/delete-event", Auth: "apikey|channel-token", Summary: "tombstone an event", Request: schema(&channelDeleteEventRequest{})},
			{Method: "POST", Path: "/channel/token/create", Auth: "apikey", Summary: "mint a capability token", Request: schema(&channelTokenCreateRequest{})},
			{Method: "GET", Path: "/channel/subscribe", Auth: "channel-token", Summary: "SSE event stream"},

			{Method: "POST", Path: "/token/lookup", Auth: "none", Summary: "safe token metadata", Request: schema(&tokenIDRequest{})},
			{Method: "POST", Path: "/token/claim", Auth: "none", Summary: "consume a single-use token", Request: schema(&tokenIDRequest{})},
			{Method: "POST", Path: "/token/create", Auth: "admin", Summary: "mint a stateful token", Request: schema(&tokenCreateRequest{})},
			{Method: "POST", Path: "/token/revoke", Auth: "apikey", Summary: "revoke an unused token", Request: schema(&tokenIDRequest{})},
			{Method: "POST", Path: "/token/list", Auth: "apikey", Summary: "list the caller's tokens"},

			{Method: "POST", Path: "/short", Auth: "admin", Summary: "create a short link", Request: schema(&shortCreateRequest{})},
			{Method: "POST", Path: "/short/list", Auth: "admin", Summary: "list short links"},
			{Method: "DELETE", Path: "/short/{id}", Auth: "admin", Summary: "delete a short link"},
			{Method: "GET", Path: "/s/{id}", Auth: "none", Summary: "resolve a short link"},
		},
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return
	}
	apiDoc = raw
}
