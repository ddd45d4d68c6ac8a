package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration for structural and cross-field errors.
//
// Struct tags handle ranges and enumerations; the cross-field rules below
// cover constraints the tags cannot express (backend-specific required
// fields, presign mode compatibility).
func Validate(cfg *Config) error {
	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q validation (value: %v)",
					fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid configuration:\n  %s", strings.Join(msgs, "\n  "))
		}
		return err
	}

	if err := validateStores(&cfg.Stores); err != nil {
		return err
	}

	return nil
}

// validateStores enforces backend-specific required fields.
func validateStores(cfg *StoresConfig) error {
	if cfg.KV.Backend == KVBackendBadger && cfg.KV.Badger.Path == "" {
		return errors.New("kv backend \"badger\" requires stores.kv.badger.path")
	}
	if cfg.KV.Backend == KVBackendPostgres {
		pg := cfg.KV.Postgres
		if pg.Host == "" || pg.Database == "" || pg.User == "" {
			return errors.New("kv backend \"postgres\" requires stores.kv.postgres host, database and user")
		}
	}

	if cfg.Blob.Backend == BlobBackendFS && cfg.Blob.FS.BasePath == "" {
		return errors.New("blob backend \"fs\" requires stores.blob.fs.base_path")
	}
	if cfg.Blob.Backend == BlobBackendS3 && cfg.Blob.S3.Bucket == "" {
		return errors.New("blob backend \"s3\" requires stores.blob.s3.bucket")
	}

	if cfg.Presign.Mode == PresignModeS3 && cfg.Blob.Backend != BlobBackendS3 {
		return errors.New("presign mode \"s3\" requires the s3 blob backend")
	}

	return nil
}
