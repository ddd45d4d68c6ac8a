package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_InvalidGatewayPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Gateway.Port = 70000 // Out of range

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for port out of range")
	}
	if !strings.Contains(err.Error(), "max") {
		t.Errorf("Expected 'max' validation error, got: %v", err)
	}
}

func TestValidate_InvalidKVBackend(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Stores.KV.Backend = "redis"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for unknown kv backend")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidSampleRate(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.SampleRate = 1.5

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for sample rate out of range")
	}
	if !strings.Contains(err.Error(), "lte") {
		t.Errorf("Expected 'lte' validation error, got: %v", err)
	}
}

func TestValidate_BadgerRequiresPath(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Stores.KV.Backend = KVBackendBadger
	cfg.Stores.KV.Badger.Path = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for badger backend without path")
	}
	if !strings.Contains(err.Error(), "badger") {
		t.Errorf("Expected badger path error, got: %v", err)
	}
}

func TestValidate_PostgresRequiresConnection(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Stores.KV.Backend = KVBackendPostgres

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for postgres backend without host")
	}
	if !strings.Contains(err.Error(), "postgres") {
		t.Errorf("Expected postgres connection error, got: %v", err)
	}
}

func TestValidate_S3RequiresBucket(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Stores.Blob.Backend = BlobBackendS3
	cfg.Stores.Presign.Mode = PresignModeS3

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for s3 backend without bucket")
	}
	if !strings.Contains(err.Error(), "bucket") {
		t.Errorf("Expected s3 bucket error, got: %v", err)
	}
}

func TestValidate_S3PresignRequiresS3Blob(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Stores.Blob.Backend = BlobBackendFS
	cfg.Stores.Presign.Mode = PresignModeS3

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for s3 presign mode with fs blob backend")
	}
	if !strings.Contains(err.Error(), "presign") {
		t.Errorf("Expected presign mode error, got: %v", err)
	}
}
