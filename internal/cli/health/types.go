// Package health provides shared types for liveness probe responses.
package health

// Response represents the gateway /ping response structure.
type Response struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	StartedAt string `json:"started_at"`
	Uptime    string `json:"uptime"`
	UptimeSec int64  `json:"uptime_sec"`
}
