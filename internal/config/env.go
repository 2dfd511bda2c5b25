package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

func (c *Config) applyEnv() {
	c.Server.Port = getenv("PORT", c.Server.Port)
	c.Server.PublicBaseURL = getenv("PUBLIC_BASE_URL", c.Server.PublicBaseURL)
	c.Server.CORSAllowedOrigin = getenv("CORS_ALLOWED_ORIGIN", c.Server.CORSAllowedOrigin)
	c.Server.MaxUploadMB = getenvInt("MAX_UPLOAD_MB", c.Server.MaxUploadMB)

	c.Database.URL = getenv("DATABASE_URL", c.Database.URL)
	c.Redis.URL = getenv("REDIS_URL", c.Redis.URL)

	c.Auth.Mode = strings.ToLower(getenv("AUTH_MODE", c.Auth.Mode))
	c.Auth.JWTSecret = getenv("JWT_SECRET", c.Auth.JWTSecret)

	c.Blob.Backend = strings.ToLower(getenv("BLOB_BACKEND", c.Blob.Backend))
	c.Blob.GCSBucket = getenv("GCS_BUCKET", c.Blob.GCSBucket)
	c.Blob.Dir = getenv("BLOB_DIR", c.Blob.Dir)
	c.Blob.SigningSecret = getenv("BLOB_SIGNING_SECRET", c.Blob.SigningSecret)
	c.Blob.SignedURLTTLMinutes = getenvInt("SIGNED_URL_TTL_MINUTES", c.Blob.SignedURLTTLMinutes)

	c.Waveform.Peaks = getenvInt("WAVEFORM_PEAKS", c.Waveform.Peaks)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", k, v, def)
		return def
	}
	return n
}
