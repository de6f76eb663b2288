// Package config reads client settings from GYMWALL_* environment variables,
// loading a .env file first when one is present.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerURL string // GYMWALL_SERVER_URL (default "http://localhost:8080")
	NATSURL   string // GYMWALL_NATS_URL (optional, empty = no events)

	// Bounded waits applied by the client.
	CommentTimeout time.Duration // GYMWALL_COMMENT_TIMEOUT (default 10s)
	UploadTimeout  time.Duration // GYMWALL_UPLOAD_TIMEOUT (default 60s)

	// Export settings
	ExportS3Bucket   string // GYMWALL_EXPORT_S3_BUCKET (enables S3 when set)
	ExportS3Endpoint string // GYMWALL_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	ExportS3Region   string // GYMWALL_EXPORT_S3_REGION (default "us-east-1")
	ExportS3Key      string // GYMWALL_EXPORT_S3_KEY (default "gymwall/wall.jsonl")
}

func Load() (*Config, error) {
	// Best effort; missing .env just means plain environment.
	_ = godotenv.Load()

	c := &Config{
		ServerURL:        envOrDefault("GYMWALL_SERVER_URL", "http://localhost:8080"),
		NATSURL:          os.Getenv("GYMWALL_NATS_URL"),
		ExportS3Bucket:   os.Getenv("GYMWALL_EXPORT_S3_BUCKET"),
		ExportS3Endpoint: os.Getenv("GYMWALL_EXPORT_S3_ENDPOINT"),
		ExportS3Region:   envOrDefault("GYMWALL_EXPORT_S3_REGION", "us-east-1"),
		ExportS3Key:      envOrDefault("GYMWALL_EXPORT_S3_KEY", "gymwall/wall.jsonl"),
	}

	var err error
	if c.CommentTimeout, err = durationOrDefault("GYMWALL_COMMENT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if c.UploadTimeout, err = durationOrDefault("GYMWALL_UPLOAD_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
