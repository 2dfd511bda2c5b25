// Package config builds the bandhub server configuration from defaults, an
// optional TOML file and environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	AuthJWT    = "jwt"
	AuthHeader = "header"

	BlobGCS   = "gcs"
	BlobLocal = "local"
)

// Server contains the HTTP listener settings.
type Server struct {
	Port              string `toml:"port"`
	PublicBaseURL     string `toml:"public_base_url"`
	CORSAllowedOrigin string `toml:"cors_allowed_origin"`
	MaxUploadMB       int    `toml:"max_upload_mb"`
}

type Database struct {
	URL string `toml:"url"`
}

// Redis carries band events between instances. An empty URL disables
// realtime fan-out.
type Redis struct {
	URL string `toml:"url"`
}

// Auth selects how request identities are verified.
type Auth struct {
	Mode      string `toml:"mode"`
	JWTSecret string `toml:"jwt_secret"`
}

// Blob selects where uploaded bytes are kept.
type Blob struct {
	Backend             string `toml:"backend"`
	GCSBucket           string `toml:"gcs_bucket"`
	Dir                 string `toml:"dir"`
	SigningSecret       string `toml:"signing_secret"`
	SignedURLTTLMinutes int    `toml:"signed_url_ttl_minutes"`
}

type Waveform struct {
	Peaks int `toml:"peaks"`
}

type Config struct {
	Server   Server   `toml:"server"`
	Database Database `toml:"database"`
	Redis    Redis    `toml:"redis"`
	Auth     Auth     `toml:"auth"`
	Blob     Blob     `toml:"blob"`
	Waveform Waveform `toml:"waveform"`
}

// Load reads path (or $BANDHUB_CONFIG when path is empty) if one is given,
// applies environment overrides and validates the result. A named file that
// does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("BANDHUB_CONFIG")
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		dec := toml.NewDecoder(f)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

func (c *Config) SignedURLTTL() time.Duration {
	return time.Duration(c.Blob.SignedURLTTLMinutes) * time.Minute
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// BlobSecret signs local blob URLs; it falls back to the JWT secret.
func (c *Config) BlobSecret() []byte {
	if c.Blob.SigningSecret != "" {
		return []byte(c.Blob.SigningSecret)
	}
	return []byte(c.Auth.JWTSecret)
}
