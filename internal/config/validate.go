package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port must be set")
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.New("server.max_upload_mb must be positive")
	}
	if c.Database.URL == "" {
		return errors.New("database.url must be set (DATABASE_URL)")
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateBlob(); err != nil {
		return err
	}
	if c.Waveform.Peaks <= 0 {
		return errors.New("waveform.peaks must be positive")
	}
	return nil
}

func (c *Config) validateAuth() error {
	switch c.Auth.Mode {
	case AuthJWT:
		if c.Auth.JWTSecret == "" {
			return errors.New("auth.jwt_secret is required in jwt mode (JWT_SECRET)")
		}
	case AuthHeader:
	default:
		return fmt.Errorf("auth.mode %q must be %q or %q", c.Auth.Mode, AuthJWT, AuthHeader)
	}
	return nil
}

func (c *Config) validateBlob() error {
	if c.Blob.SignedURLTTLMinutes <= 0 {
		return errors.New("blob.signed_url_ttl_minutes must be positive")
	}
	switch c.Blob.Backend {
	case BlobGCS:
		if c.Blob.GCSBucket == "" {
			return errors.New("blob.gcs_bucket is required for the gcs backend (GCS_BUCKET)")
		}
	case BlobLocal:
		if c.Blob.Dir == "" {
			return errors.New("blob.dir is required for the local backend (BLOB_DIR)")
		}
		if len(c.BlobSecret()) == 0 {
			return errors.New("blob.signing_secret or auth.jwt_secret is required for the local backend")
		}
	default:
		return fmt.Errorf("blob.backend %q must be %q or %q", c.Blob.Backend, BlobGCS, BlobLocal)
	}
	return nil
}
