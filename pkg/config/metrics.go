package config

import (
	"github.com/latchhq/latch/internal/logger"
	"github.com/latchhq/latch/pkg/metrics"
)

// InitializeMetrics sets up the metrics registry and server when metrics
// are enabled. Returns nil when disabled; callers skip starting the server
// in that case.
func InitializeMetrics(cfg *Config) *metrics.Server {
	if !cfg.Metrics.Enabled {
		logger.Debug("metrics disabled")
		return nil
	}

	metrics.InitRegistry()
	logger.Info("metrics enabled", "port", cfg.Metrics.Port)
	return metrics.NewServer(cfg.Metrics.Port)
}
