package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/latchhq/latch/internal/logger"
	"github.com/latchhq/latch/pkg/gateway/response"
	"github.com/latchhq/latch/pkg/identity"
)

// apiKeyPattern is the required shape of the Authorization header value.
var apiKeyPattern = regexp.MustCompile(`^ApiKey [A-Za-z0-9_-]+$`)

// APIKeyConfig controls the authentication middleware.
type APIKeyConfig struct {
	// BootstrapKey is the one-shot bootstrap secret. Empty disables the
	// bootstrap path entirely.
	BootstrapKey string

	// AllowBootstrapAdminCheck opts in to using the bootstrap key for the
	// whoami endpoint even after identities exist.
	AllowBootstrapAdminCheck bool
}

// Paths the bootstrap key may reach.
const (
	bootstrapCreatePath = "/identity/create"
	bootstrapCheckPath  = "/identity/whoami"
)

// APIKey authenticates every request with an `Authorization: ApiKey`
// header.
//
// The bootstrap key is checked before the hashed-credential path: it is
// honored for identity creation only while no identities exist, and for
// the admin check endpoint only when the instance opts in. Any other
// bootstrap use is rejected, so the key locks out permanently once the
// first real identity is created.
func APIKey(cfg APIKeyConfig, store *identity.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !apiKeyPattern.MatchString(header) {
				response.Unauthorized(w, "missing or malformed Authorization header")
				return
			}
			secret := strings.TrimPrefix(header, "ApiKey ")

			if cfg.BootstrapKey != "" &&
				subtle.ConstantTimeCompare([]byte(secret), []byte(cfg.BootstrapKey)) == 1 {
				if cfg.AllowBootstrapAdminCheck && r.URL.Path == bootstrapCheckPath {
					next.ServeHTTP(w, r.WithContext(WithBootstrap(r.Context())))
					return
				}

				hasAny, err := store.HasAnyIdentity(r.Context())
				if err != nil {
					logger.ErrorCtx(r.Context(), "failed to check for existing identities",
						logger.KeyError, err)
					response.Upstream(w)
					return
				}
				if !hasAny && r.URL.Path == bootstrapCreatePath {
					next.ServeHTTP(w, r.WithContext(WithBootstrap(r.Context())))
					return
				}

				response.Unauthorized(w, "bootstrap key not accepted")
				return
			}

			cred, ident, err := store.LookupCredential(r.Context(), secret)
			if err != nil {
				if errors.Is(err, identity.ErrInvalidCredential) ||
					errors.Is(err, identity.ErrIdentityInactive) {
					response.Unauthorized(w, "invalid credentials")
					return
				}
				logger.ErrorCtx(r.Context(), "credential lookup failed", logger.KeyError, err)
				response.Upstream(w)
				return
			}

			ctx := WithIdentity(r.Context(), ident, cred)
			if lc := logger.FromContext(ctx); lc != nil {
				lc.IdentityID = ident.ID
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
