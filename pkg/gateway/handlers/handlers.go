// Package handlers implements the gateway's HTTP endpoints.
//
// Every handler follows the same discipline: decode and validate the
// request, resolve the caller's effective permissions, perform the store
// operation, and map errors onto the `{code, message}` envelope. Adapter
// failures are logged and surfaced as a generic Upstream error.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/latchhq/latch/pkg/gateway/middleware"
	"github.com/latchhq/latch/pkg/gateway/response"
	"github.com/latchhq/latch/pkg/identity"
)

// maxJSONBody caps JSON request bodies at 1 MiB. Blob uploads stream and
// are not subject to this limit.
const maxJSONBody = 1 << 20

// decodeJSON decodes the request body into dst, rejecting malformed and
// oversized bodies. Unknown fields are ignored so older clients keep
// working. A false return means the error response has already been
// written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(body)

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			response.InvalidRequest(w, "request body is required")
			return false
		}
		response.InvalidRequest(w, "malformed JSON body")
		return false
	}
	return true
}

// callerPermissions resolves the effective permissions of the
// authenticated identity, loading its grants. Returns nil after writing
// an error response.
func callerPermissions(w http.ResponseWriter, r *http.Request, store *identity.Store) (*identity.Identity, *identity.Permissions) {
	ident := middleware.IdentityFrom(r.Context())
	if ident == nil {
		response.Unauthorized(w, "authentication required")
		return nil, nil
	}

	grants, err := store.ListGrants(r.Context(), ident.ID)
	if err != nil {
		response.Upstream(w)
		return nil, nil
	}
	return ident, identity.Resolve(ident, grants)
}
