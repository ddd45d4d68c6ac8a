package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level INFO, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format text, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output stdout, got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Gateway.Port != 8080 {
		t.Errorf("Expected default gateway port 8080, got %d", cfg.Gateway.Port)
	}
	if cfg.Gateway.BaseURL != "http://localhost:8080" {
		t.Errorf("Expected default base URL http://localhost:8080, got %q", cfg.Gateway.BaseURL)
	}
	if cfg.Stores.KV.Backend != KVBackendBadger {
		t.Errorf("Expected default kv backend badger, got %q", cfg.Stores.KV.Backend)
	}
	if cfg.Stores.Blob.Backend != BlobBackendFS {
		t.Errorf("Expected default blob backend fs, got %q", cfg.Stores.Blob.Backend)
	}
	if cfg.Stores.Presign.Mode != PresignModeLocal {
		t.Errorf("Expected default presign mode local, got %q", cfg.Stores.Presign.Mode)
	}
}

func TestApplyDefaults_NormalizesLogLevel(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "debug"
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized log level DEBUG, got %q", cfg.Logging.Level)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Format = "json"
	cfg.ShutdownTimeout = 5 * time.Second
	cfg.Gateway.Port = 9000
	cfg.Stores.KV.Backend = KVBackendMemory
	ApplyDefaults(cfg)

	if cfg.Logging.Format != "json" {
		t.Errorf("Expected explicit format json preserved, got %q", cfg.Logging.Format)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("Expected explicit shutdown timeout preserved, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Gateway.Port != 9000 {
		t.Errorf("Expected explicit port preserved, got %d", cfg.Gateway.Port)
	}
	if cfg.Gateway.BaseURL != "http://localhost:9000" {
		t.Errorf("Expected base URL to follow explicit port, got %q", cfg.Gateway.BaseURL)
	}
	if cfg.Stores.KV.Backend != KVBackendMemory {
		t.Errorf("Expected explicit kv backend preserved, got %q", cfg.Stores.KV.Backend)
	}
}

func TestApplyDefaults_TelemetryDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Telemetry.Enabled {
		t.Error("Expected telemetry disabled by default")
	}
	if cfg.Telemetry.Endpoint != "localhost:4317" {
		t.Errorf("Expected default OTLP endpoint localhost:4317, got %q", cfg.Telemetry.Endpoint)
	}
	if cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("Expected default sample rate 1.0, got %v", cfg.Telemetry.SampleRate)
	}
	if cfg.Telemetry.Profiling.Endpoint != "http://localhost:4040" {
		t.Errorf("Expected default Pyroscope endpoint, got %q", cfg.Telemetry.Profiling.Endpoint)
	}
	if len(cfg.Telemetry.Profiling.ProfileTypes) == 0 {
		t.Error("Expected default profile types to be set")
	}
}

func TestApplyDefaults_MetricsPort(t *testing.T) {
	// Port stays zero while metrics are disabled
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Metrics.Port != 0 {
		t.Errorf("Expected metrics port 0 while disabled, got %d", cfg.Metrics.Port)
	}

	// Port defaults to 9090 once enabled
	cfg = &Config{}
	cfg.Metrics.Enabled = true
	ApplyDefaults(cfg)
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg == nil {
		t.Fatal("Expected non-nil default config")
	}
	if cfg.Stores.KV.Badger.Path == "" {
		t.Error("Expected default badger path to be set")
	}
	if cfg.Stores.Blob.FS.BasePath == "" {
		t.Error("Expected default blob base path to be set")
	}

	// The default config must pass its own validation
	if err := Validate(cfg); err != nil {
		t.Errorf("Expected default config to validate, got: %v", err)
	}
}
