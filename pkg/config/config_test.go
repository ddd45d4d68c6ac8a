package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
// On Windows, backslashes in double-quoted YAML strings are interpreted as
// escape sequences (e.g. \U -> Unicode escape), causing parse errors.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func TestLoad_DefaultConfig(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Write minimal config
	configContent := `
logging:
  level: "INFO"

stores:
  kv:
    backend: badger
    badger:
      path: "` + yamlSafePath(tmpDir) + `/kv"
  blob:
    backend: fs
    fs:
      base_path: "` + yamlSafePath(tmpDir) + `/blobs"

gateway:
  port: 8080
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Load config
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults were applied
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Gateway.Port != 8080 {
		t.Errorf("Expected gateway port 8080, got %d", cfg.Gateway.Port)
	}
	if cfg.Gateway.RequestTimeout != 30*time.Second {
		t.Errorf("Expected default request_timeout 30s, got %v", cfg.Gateway.RequestTimeout)
	}
	if cfg.Stores.Presign.Mode != PresignModeLocal {
		t.Errorf("Expected default presign mode 'local', got %q", cfg.Stores.Presign.Mode)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Loading with no config file returns a valid default config.
	// This allows users to run the gateway without a config file for quick testing.
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}

	// Verify default config is returned
	if cfg == nil {
		t.Fatal("Expected default config to be returned")
	}

	// Verify default gateway port
	if cfg.Gateway.Port != 8080 {
		t.Errorf("Expected default gateway port 8080, got %d", cfg.Gateway.Port)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	// Write invalid YAML
	configContent := `
logging:
  level: INFO
  invalid yaml here [[[
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Should return error
	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_DurationStrings(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
shutdown_timeout: 45s

stores:
  kv:
    backend: memory
  blob:
    backend: memory

gateway:
  request_timeout: 5s
  presign_expires_in: 2h
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.ShutdownTimeout != 45*time.Second {
		t.Errorf("Expected shutdown_timeout 45s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Gateway.RequestTimeout != 5*time.Second {
		t.Errorf("Expected request_timeout 5s, got %v", cfg.Gateway.RequestTimeout)
	}
	if cfg.Gateway.PresignExpiresIn != 2*time.Hour {
		t.Errorf("Expected presign_expires_in 2h, got %v", cfg.Gateway.PresignExpiresIn)
	}
}

func TestLoad_S3PresignMode(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
stores:
  kv:
    backend: memory
  blob:
    backend: s3
    s3:
      bucket: latch-test
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Presign mode defaults to s3 when the blob backend is s3
	if cfg.Stores.Presign.Mode != PresignModeS3 {
		t.Errorf("Expected presign mode 's3', got %q", cfg.Stores.Presign.Mode)
	}
}

func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Gateway.Port = 9999

	if err := SaveConfig(cfg, configPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	// File must be owner-only, it can hold secrets
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Failed to stat saved config: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected file mode 0600, got %v", info.Mode().Perm())
	}

	// Round-trip through Load
	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if loaded.Gateway.Port != 9999 {
		t.Errorf("Expected port 9999 after round-trip, got %d", loaded.Gateway.Port)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	tmpDir := t.TempDir()

	oldXDG := os.Getenv("XDG_CONFIG_HOME")
	_ = os.Setenv("XDG_CONFIG_HOME", tmpDir)
	defer func() {
		if oldXDG != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", oldXDG)
		} else {
			_ = os.Unsetenv("XDG_CONFIG_HOME")
		}
	}()

	path := GetDefaultConfigPath()
	expected := filepath.Join(tmpDir, "latch", "config.yaml")
	if path != expected {
		t.Errorf("Expected default config path %q, got %q", expected, path)
	}
}
