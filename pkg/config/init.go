package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// configFileHeader is prepended to generated configuration files.
const configFileHeader = `# Latch Configuration File
#
# This file was generated by 'latch init'. Every value can be overridden
# with a LATCH_* environment variable, e.g. LATCH_LOGGING_LEVEL=DEBUG or
# LATCH_GATEWAY_PORT=9000.
#
# The bootstrap key below authenticates the very first /identity/create
# call. It stops working as soon as the first identity exists, so claim
# your admin identity right after the first boot.

`

// InitConfig creates a configuration file at the default location.
// Returns the path of the created file.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath creates a configuration file at the given path with
// defaults and a freshly generated bootstrap key. Refuses to overwrite an
// existing file unless force is set.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}

	cfg := GetDefaultConfig()

	key, err := generateBootstrapKey()
	if err != nil {
		return fmt.Errorf("failed to generate bootstrap key: %w", err)
	}
	cfg.Gateway.BootstrapKey = key

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	content := append([]byte(configFileHeader), data...)
	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// generateBootstrapKey returns a 64-character hex key from 32 random bytes.
func generateBootstrapKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
