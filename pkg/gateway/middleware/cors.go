package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS builds the gateway's CORS middleware around go-chi/cors, plus the
// Private-Network-Access preflight echo the library does not implement:
// when a preflight carries Access-Control-Request-Private-Network: true,
// the response must answer Access-Control-Allow-Private-Network: true.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	base := cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
			"X-Blob-Namespace",
			"X-Blob-Key",
			"X-Blob-Public",
			"X-Blob-Visibility",
			"X-Channel-Token",
		},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	return func(next http.Handler) http.Handler {
		wrapped := base(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// The header must be present on the preflight response go-chi/cors
			// writes, so it is set before the library short-circuits OPTIONS.
			if r.Method == http.MethodOptions &&
				r.Header.Get("Access-Control-Request-Private-Network") == "true" {
				w.Header().Set("Access-Control-Allow-Private-Network", "true")
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}
