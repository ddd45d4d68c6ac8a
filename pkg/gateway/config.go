package gateway

import (
	"os"
	"strconv"
	"time"

	"github.com/latchhq/latch/internal/logger"
)

// EnvBootstrapKey is the environment variable overriding the configured
// bootstrap key.
const EnvBootstrapKey = "LATCH_BOOTSTRAP_KEY"

// EnvSigningSecret is the environment variable overriding the configured
// presign signing secret.
const EnvSigningSecret = "LATCH_SIGNING_SECRET"

// Config configures the gateway HTTP server.
type Config struct {
	// Port is the HTTP port for the gateway endpoints.
	// Default: 8080
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// BaseURL is the externally reachable gateway address, used when
	// building gateway-terminated presigned URLs.
	// Default: http://localhost:<port>
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 10s
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Zero disables it, which SSE subscriptions require.
	// Default: 0
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request when
	// keep-alives are enabled.
	// Default: 60s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// RequestTimeout bounds JSON endpoint handling. The SSE subscribe and
	// blob transfer routes are exempt.
	// Default: 30s
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`

	// BootstrapKey is the one-shot key accepted for first-identity
	// creation while the store is empty. Can also be set via
	// LATCH_BOOTSTRAP_KEY; the environment variable takes precedence.
	BootstrapKey string `mapstructure:"bootstrap_key" yaml:"bootstrap_key"`

	// AllowBootstrapAdminCheck additionally honors the bootstrap key on
	// the whoami endpoint after identities exist.
	// Default: false
	AllowBootstrapAdminCheck bool `mapstructure:"allow_bootstrap_admin_check" yaml:"allow_bootstrap_admin_check"`

	// SigningSecret keys gateway-terminated presigned URLs. When empty a
	// secret is generated on first boot and persisted in the KV store.
	// Can also be set via LATCH_SIGNING_SECRET.
	SigningSecret string `mapstructure:"signing_secret" yaml:"signing_secret"`

	// PresignExpiresIn is the default lifetime of presigned URLs.
	// Default: 1h
	PresignExpiresIn time.Duration `mapstructure:"presign_expires_in" yaml:"presign_expires_in"`

	// Bucket is the blob container name bound into presigned URLs.
	// Default: latch
	Bucket string `mapstructure:"bucket" yaml:"bucket"`

	// CORSAllowedOrigins is the browser origin allow-list. Empty allows
	// every origin.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins" yaml:"cors_allowed_origins"`
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:" + strconv.Itoa(c.Port)
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.PresignExpiresIn == 0 {
		c.PresignExpiresIn = time.Hour
	}
	if c.Bucket == "" {
		c.Bucket = "latch"
	}
}

// GetBootstrapKey returns the bootstrap key, preferring the environment
// variable over the config file value.
func (c *Config) GetBootstrapKey() string {
	if env := os.Getenv(EnvBootstrapKey); env != "" {
		if c.BootstrapKey != "" && c.BootstrapKey != env {
			logger.Warn("bootstrap key from environment variable overrides config file value",
				"env_var", EnvBootstrapKey)
		}
		return env
	}
	return c.BootstrapKey
}

// GetSigningSecret returns the configured signing secret, preferring the
// environment variable. Empty means generate-and-persist on boot.
func (c *Config) GetSigningSecret() string {
	if env := os.Getenv(EnvSigningSecret); env != "" {
		return env
	}
	return c.SigningSecret
}
