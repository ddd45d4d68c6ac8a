package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/latchhq/latch/internal/logger"
	"github.com/latchhq/latch/pkg/identity"
	"github.com/latchhq/latch/pkg/presign"
	"github.com/latchhq/latch/pkg/store/blob"
	blobfs "github.com/latchhq/latch/pkg/store/blob/fs"
	blobmemory "github.com/latchhq/latch/pkg/store/blob/memory"
	blobs3 "github.com/latchhq/latch/pkg/store/blob/s3"
	"github.com/latchhq/latch/pkg/store/channel"
	"github.com/latchhq/latch/pkg/store/kv"
	kvbadger "github.com/latchhq/latch/pkg/store/kv/badger"
	kvmemory "github.com/latchhq/latch/pkg/store/kv/memory"
	kvpostgres "github.com/latchhq/latch/pkg/store/kv/postgres"
	"github.com/latchhq/latch/pkg/store/shortlink"
	"github.com/latchhq/latch/pkg/token"
)

// Key-value store backends.
const (
	KVBackendMemory   = "memory"
	KVBackendBadger   = "badger"
	KVBackendPostgres = "postgres"
)

// Blob store backends.
const (
	BlobBackendMemory = "memory"
	BlobBackendFS     = "fs"
	BlobBackendS3     = "s3"
)

// Presigning modes. Local URLs terminate at the gateway; s3 URLs are
// signed by the SDK and hit the bucket directly.
const (
	PresignModeLocal = "local"
	PresignModeS3    = "s3"
)

// StoresConfig configures the storage backends behind the gateway.
type StoresConfig struct {
	// KV configures the key-value store holding all gateway state.
	KV KVStoreConfig `mapstructure:"kv" yaml:"kv"`

	// Blob configures the blob object store.
	Blob BlobStoreConfig `mapstructure:"blob" yaml:"blob"`

	// Presign selects how presigned URLs are produced.
	Presign PresignStoreConfig `mapstructure:"presign" yaml:"presign"`
}

// KVStoreConfig selects and configures the key-value backend.
type KVStoreConfig struct {
	// Backend selects the key-value store implementation.
	// Valid values: memory, badger, postgres
	// Default: badger
	Backend string `mapstructure:"backend" validate:"required,oneof=memory badger postgres" yaml:"backend"`

	// Badger configures the BadgerDB backend.
	Badger KVBadgerConfig `mapstructure:"badger" yaml:"badger"`

	// Postgres configures the PostgreSQL backend.
	Postgres KVPostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

// KVBadgerConfig configures the BadgerDB key-value backend.
type KVBadgerConfig struct {
	// Path is the directory for the badger database files.
	// Default: /var/lib/latch/kv
	Path string `mapstructure:"path" yaml:"path"`

	// DisableSync turns off fsync on every write. Faster, but a crash can
	// lose recent writes.
	// Default: false
	DisableSync bool `mapstructure:"disable_sync" yaml:"disable_sync"`
}

// KVPostgresConfig configures the PostgreSQL key-value backend.
type KVPostgresConfig struct {
	// Host is the postgres server hostname (required for this backend).
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the postgres server port.
	// Default: 5432
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// Database is the database name (required for this backend).
	Database string `mapstructure:"database" yaml:"database"`

	// User is the database user (required for this backend).
	User string `mapstructure:"user" yaml:"user"`

	// Password is the database password.
	Password string `mapstructure:"password" yaml:"password,omitempty"`

	// SSLMode is the postgres sslmode parameter.
	// Default: prefer
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// MaxConns bounds the connection pool size.
	// Default: 10
	MaxConns int32 `mapstructure:"max_conns" yaml:"max_conns"`

	// MinConns keeps a floor of warm connections.
	// Default: 2
	MinConns int32 `mapstructure:"min_conns" yaml:"min_conns"`
}

// BlobStoreConfig selects and configures the blob backend.
type BlobStoreConfig struct {
	// Backend selects the blob store implementation.
	// Valid values: memory, fs, s3
	// Default: fs
	Backend string `mapstructure:"backend" validate:"required,oneof=memory fs s3" yaml:"backend"`

	// FS configures the filesystem backend.
	FS BlobFSConfig `mapstructure:"fs" yaml:"fs"`

	// S3 configures the S3 backend.
	S3 BlobS3Config `mapstructure:"s3" yaml:"s3"`
}

// BlobFSConfig configures the filesystem blob backend.
type BlobFSConfig struct {
	// BasePath is the root directory for object storage.
	// Default: /var/lib/latch/blobs
	BasePath string `mapstructure:"base_path" yaml:"base_path"`
}

// BlobS3Config configures the S3 blob backend.
type BlobS3Config struct {
	// Bucket is the S3 bucket name (required for this backend).
	Bucket string `mapstructure:"bucket" yaml:"bucket"`

	// Region is the AWS region.
	Region string `mapstructure:"region" yaml:"region,omitempty"`

	// Endpoint overrides the S3 endpoint URL (MinIO, Localstack).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`

	// KeyPrefix is prepended to all object keys.
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix,omitempty"`

	// AccessKeyID and SecretAccessKey override the SDK credential chain
	// when both are set.
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`

	// ForcePathStyle forces path-style addressing (required for
	// Localstack/MinIO).
	ForcePathStyle bool `mapstructure:"force_path_style" yaml:"force_path_style,omitempty"`
}

// PresignStoreConfig selects the presigned URL strategy.
type PresignStoreConfig struct {
	// Mode selects who terminates presigned URLs.
	// Valid values: local (gateway-terminated HMAC URLs), s3 (SDK-signed
	// URLs against the bucket).
	// Default: s3 when the blob backend is s3, local otherwise.
	Mode string `mapstructure:"mode" validate:"omitempty,oneof=local s3" yaml:"mode"`
}

// applyStoresDefaults sets storage backend defaults.
func applyStoresDefaults(cfg *StoresConfig) {
	if cfg.KV.Backend == "" {
		cfg.KV.Backend = KVBackendBadger
	}
	if cfg.KV.Badger.Path == "" {
		cfg.KV.Badger.Path = "/var/lib/latch/kv"
	}

	if cfg.Blob.Backend == "" {
		cfg.Blob.Backend = BlobBackendFS
	}
	if cfg.Blob.FS.BasePath == "" {
		cfg.Blob.FS.BasePath = "/var/lib/latch/blobs"
	}

	if cfg.Presign.Mode == "" {
		if cfg.Blob.Backend == BlobBackendS3 {
			cfg.Presign.Mode = PresignModeS3
		} else {
			cfg.Presign.Mode = PresignModeLocal
		}
	}
}

// Stores bundles the initialized storage layer handed to the gateway.
type Stores struct {
	KV         kv.Store
	Blobs      blob.Store
	Channels   channel.Store
	Links      shortlink.Store
	Identities *identity.Store
	Tokens     *token.Store

	// Presigner issues presigned URLs. Local is non-nil only in local
	// presigning mode, where the gateway also verifies the URLs it mints.
	Presigner presign.Presigner
	Local     *presign.LocalPresigner
}

// Close releases the underlying store resources. Blob first, KV last,
// since the blob visibility flags live in the KV store.
func (s *Stores) Close() error {
	var errs []error
	if s.Blobs != nil {
		if err := s.Blobs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("blob store close: %w", err))
		}
	}
	if s.KV != nil {
		if err := s.KV.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kv store close: %w", err))
		}
	}
	return errors.Join(errs...)
}

// InitializeStores creates the full storage layer from configuration.
//
// This orchestrates the complete initialization process:
//  1. Opens the key-value backend (memory, badger, or postgres)
//  2. Opens the blob backend (memory, fs, or s3)
//  3. Builds the KV-backed channel, short link, identity, and token stores
//  4. Loads or generates the presign signing secret and builds the
//     presigner for the configured mode
//
// The returned bundle owns the backend handles; callers must Close it on
// shutdown.
func InitializeStores(ctx context.Context, cfg *Config) (*Stores, error) {
	kvStore, err := createKVStore(ctx, cfg.Stores.KV)
	if err != nil {
		return nil, fmt.Errorf("failed to create kv store: %w", err)
	}

	blobStore, err := createBlobStore(ctx, cfg.Stores.Blob)
	if err != nil {
		kvStore.Close()
		return nil, fmt.Errorf("failed to create blob store: %w", err)
	}

	stores := &Stores{
		KV:         kvStore,
		Blobs:      blobStore,
		Channels:   channel.NewKVStore(kvStore),
		Links:      shortlink.NewKVStore(kvStore),
		Identities: identity.NewStore(kvStore),
		Tokens:     token.NewStore(kvStore),
	}

	if err := initializePresigner(ctx, cfg, stores); err != nil {
		stores.Close()
		return nil, err
	}

	logger.Info("stores initialized",
		"kv_backend", cfg.Stores.KV.Backend,
		"blob_backend", cfg.Stores.Blob.Backend,
		"presign_mode", cfg.Stores.Presign.Mode,
	)
	return stores, nil
}

// createKVStore creates a key-value store instance from configuration.
func createKVStore(ctx context.Context, cfg KVStoreConfig) (kv.Store, error) {
	switch cfg.Backend {
	case KVBackendMemory, "":
		return kvmemory.New(), nil
	case KVBackendBadger:
		badgerCfg := kvbadger.DefaultConfig(cfg.Badger.Path)
		badgerCfg.SyncWrites = !cfg.Badger.DisableSync
		return kvbadger.New(badgerCfg)
	case KVBackendPostgres:
		return kvpostgres.New(ctx, kvpostgres.Config{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.MaxConns,
			MinConns: cfg.Postgres.MinConns,
		})
	default:
		return nil, fmt.Errorf("unknown kv backend: %q", cfg.Backend)
	}
}

// createBlobStore creates a blob store instance from configuration.
func createBlobStore(ctx context.Context, cfg BlobStoreConfig) (blob.Store, error) {
	switch cfg.Backend {
	case BlobBackendMemory, "":
		return blobmemory.New(), nil
	case BlobBackendFS:
		if cfg.FS.BasePath == "" {
			return nil, errors.New("fs blob store requires base_path to be set")
		}
		fsCfg := blobfs.DefaultConfig(cfg.FS.BasePath)
		fsCfg.DirMode = os.FileMode(0755)
		return blobfs.New(fsCfg)
	case BlobBackendS3:
		if cfg.S3.Bucket == "" {
			return nil, errors.New("s3 blob store requires bucket to be set")
		}
		return blobs3.NewFromConfig(ctx, blobs3.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			KeyPrefix:       cfg.S3.KeyPrefix,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			ForcePathStyle:  cfg.S3.ForcePathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown blob backend: %q", cfg.Backend)
	}
}

// initializePresigner wires the presigner for the configured mode into the
// store bundle.
func initializePresigner(ctx context.Context, cfg *Config, stores *Stores) error {
	switch cfg.Stores.Presign.Mode {
	case PresignModeLocal, "":
		secret, err := presign.LoadOrCreateSigningSecret(ctx, stores.KV, cfg.Gateway.GetSigningSecret())
		if err != nil {
			return fmt.Errorf("failed to load signing secret: %w", err)
		}
		local := presign.NewLocalPresigner(cfg.Gateway.BaseURL, secret)
		stores.Presigner = local
		stores.Local = local
		return nil

	case PresignModeS3:
		s3Store, ok := stores.Blobs.(*blobs3.Store)
		if !ok {
			return fmt.Errorf("presign mode %q requires the s3 blob backend", PresignModeS3)
		}
		stores.Presigner = presign.NewS3Presigner(s3Store.Client(), s3Store.Bucket())
		return nil

	default:
		return fmt.Errorf("unknown presign mode: %q", cfg.Stores.Presign.Mode)
	}
}
