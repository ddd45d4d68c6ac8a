package gateway

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/latchhq/latch/internal/logger"
	"github.com/latchhq/latch/pkg/gateway/handlers"
	"github.com/latchhq/latch/pkg/gateway/middleware"
	"github.com/latchhq/latch/pkg/identity"
	"github.com/latchhq/latch/pkg/metrics"
	"github.com/latchhq/latch/pkg/presign"
	"github.com/latchhq/latch/pkg/store/blob"
	"github.com/latchhq/latch/pkg/store/channel"
	"github.com/latchhq/latch/pkg/store/kv"
	"github.com/latchhq/latch/pkg/store/shortlink"
	"github.com/latchhq/latch/pkg/token"
)

// Deps bundles the stores and presigners the router wires into handlers.
type Deps struct {
	KV         kv.Store
	Blobs      blob.Store
	Channels   channel.Store
	Links      shortlink.Store
	Identities *identity.Store
	Tokens     *token.Store

	// Presigner issues upload and download URLs. Local verifies
	// gateway-terminated tokens; nil when presigning is delegated to the
	// backend.
	Presigner presign.Presigner
	Local     *presign.LocalPresigner

	// Metrics observes gateway traffic. Nil disables collection.
	Metrics metrics.GatewayMetrics
}

// NewRouter creates and configures the chi router with all middleware and
// routes.
//
// Public routes (liveness, the API document, short link resolution,
// public and signed blob downloads, token lookup and claim, and the SSE
// subscribe route) are registered before the API key middleware. Channel
// append, read and delete-event accept a capability token in place of an
// API key; everything else requires `Authorization: ApiKey`.
func NewRouter(cfg Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	if deps.Metrics != nil {
		r.Use(requestMetrics(deps.Metrics))
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	kvHandler := handlers.NewKVHandler(deps.KV, deps.Identities)
	identityHandler := handlers.NewIdentityHandler(deps.Identities, deps.Tokens)
	blobHandler := handlers.NewBlobHandler(deps.Blobs, deps.KV, deps.Identities,
		deps.Presigner, deps.Local, cfg.Bucket, cfg.PresignExpiresIn, deps.Metrics)
	channelHandler := handlers.NewChannelHandler(deps.Channels, deps.Identities, deps.Metrics)
	sseHandler := handlers.NewSSEHandler(deps.Channels, deps.Metrics)
	tokenHandler := handlers.NewTokenHandler(deps.Tokens, deps.Identities,
		deps.Presigner, cfg.Bucket, deps.Metrics)
	shortHandler := handlers.NewShortLinkHandler(deps.Links, deps.Identities)

	// Public routes - no API key
	r.Get("/ping", handlers.Ping)
	r.Get("/openapi", handlers.OpenAPI)
	r.Get("/s/{id}", shortHandler.Resolve)
	r.Get("/blob/public/*", blobHandler.PublicDownload)
	r.Get("/blob/download/*", blobHandler.Download)
	r.Put("/blob/presigned-put", blobHandler.PresignedPut)
	r.Get("/blob/presigned-get", blobHandler.PresignedGet)
	r.Post("/token/lookup", tokenHandler.Lookup)
	r.Post("/token/claim", tokenHandler.Claim)

	// SSE authenticates by capability token and holds the connection open,
	// so it skips both the API key middleware and the request timeout.
	r.Get("/channel/subscribe", sseHandler.Subscribe)

	apiKey := middleware.APIKey(middleware.APIKeyConfig{
		BootstrapKey:             cfg.GetBootstrapKey(),
		AllowBootstrapAdminCheck: cfg.AllowBootstrapAdminCheck,
	}, deps.Identities)

	// Channel data routes accept either auth scheme. When a capability
	// token is presented the handler verifies it; otherwise the API key
	// middleware runs as usual.
	tokenOrAPIKey := func(next http.Handler) http.Handler {
		authed := apiKey(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(handlers.ChannelTokenHeader) != "" {
				next.ServeHTTP(w, r)
				return
			}
			authed.ServeHTTP(w, r)
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
		r.Use(tokenOrAPIKey)

		r.Post("/channel/append", channelHandler.Append)
		r.Post("/channel/read", channelHandler.Read)
		r.Post("/channel/delete-event", channelHandler.DeleteEvent)
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
		r.Use(apiKey)

		r.Route("/identity", func(r chi.Router) {
			r.Post("/create", identityHandler.Create)
			r.Post("/list", identityHandler.List)
			r.Post("/delete", identityHandler.Delete)
			r.Post("/invite", identityHandler.Invite)
			r.Post("/whoami", identityHandler.Whoami)
			r.Post("/app/register", identityHandler.RegisterApp)
			r.Post("/update", identityHandler.Update)
			r.Post("/rotate-credential", identityHandler.RotateCredential)
		})

		r.Route("/kv", func(r chi.Router) {
			r.Post("/get", kvHandler.Get)
			r.Post("/set", kvHandler.Set)
			r.Post("/delete", kvHandler.Delete)
			r.Post("/keys", kvHandler.Keys)
			r.Post("/bulk/get", kvHandler.BulkGet)
			r.Post("/bulk/set", kvHandler.BulkSet)
			r.Post("/namespaces", kvHandler.Namespaces)
			r.Post("/dump", kvHandler.Dump)
		})

		r.Route("/channel", func(r chi.Router) {
			r.Post("/create", channelHandler.Create)
			r.Post("/list", channelHandler.List)
			r.Post("/get", channelHandler.Get)
			r.Post("/delete", channelHandler.Delete)
			r.Post("/token/create", channelHandler.CreateToken)
		})

		r.Route("/token", func(r chi.Router) {
			r.Post("/create", tokenHandler.Create)
			r.Post("/revoke", tokenHandler.Revoke)
			r.Post("/list", tokenHandler.List)
		})

		r.Post("/short", shortHandler.Create)
		r.Post("/short/list", shortHandler.List)
		r.Delete("/short/{id}", shortHandler.Delete)

		// Blob transfers stream bodies, so the upload route sits outside
		// the JSON body limit but inside auth.
		r.Route("/blob", func(r chi.Router) {
			r.Post("/upload", blobHandler.Upload)
			r.Post("/get", blobHandler.Get)
			r.Post("/delete", blobHandler.Delete)
			r.Post("/list", blobHandler.List)
			r.Post("/presign-upload", blobHandler.PresignUpload)
			r.Post("/visibility", blobHandler.Visibility)
		})
	})

	return r
}

// requestMetrics observes every request with its chi route pattern, so
// parameterized paths aggregate under one label.
func requestMetrics(m metrics.GatewayMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			metrics.ObserveRequest(m, r.Method, route, ww.Status(), time.Since(start))
		})
	}
}

// requestLogger logs one line per request with the request id, status and
// duration, and seeds the request-scoped LogContext.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := chimiddleware.GetReqID(r.Context())

		clientIP := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			clientIP = host
		}

		lc := logger.NewLogContext(clientIP)
		lc.RequestID = requestID
		ctx := logger.WithContext(r.Context(), lc)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		duration := time.Since(start)
		logArgs := []any{
			logger.KeyRequestID, requestID,
			logger.KeyMethod, r.Method,
			logger.KeyPath, r.URL.Path,
			logger.KeyStatus, ww.Status(),
			"bytes", ww.BytesWritten(),
			logger.KeyDuration, duration.String(),
			logger.KeyClientIP, clientIP,
		}
		if lc.IdentityID != "" {
			logArgs = append(logArgs, logger.KeyIdentity, lc.IdentityID)
		}

		// Liveness probes log at debug to keep orchestrator noise down.
		if r.URL.Path == "/ping" {
			logger.Debug("request completed", logArgs...)
			return
		}
		logger.Info("request completed", logArgs...)
	})
}
