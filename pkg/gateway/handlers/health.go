package handlers

import (
	"net/http"
	"time"

	"github.com/latchhq/latch/pkg/gateway/response"
)

var startedAt = time.Now()

// Ping is the unauthenticated liveness probe. It reports process uptime
// so `latch status` can show it.
func Ping(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(startedAt).Round(time.Second)
	response.WriteJSONOK(w, map[string]any{
		"status":     "ok",
		"service":    "latch",
		"started_at": startedAt.UTC().Format(time.RFC3339),
		"uptime":     uptime.String(),
		"uptime_sec": int64(uptime.Seconds()),
	})
}
