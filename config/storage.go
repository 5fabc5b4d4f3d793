package config

import "strings"

const defaultMaxPhotoBytes = 5 << 20

// StorageConfig configures the S3-compatible bucket holding complaint photos.
// Photo uploads are disabled when Bucket is empty.
type StorageConfig struct {
	// Endpoint is the S3 API base URL for S3-compatible services. Empty means AWS.
	Endpoint        string `env:"ENDPOINT"`
	Region          string `env:"REGION"            envDefault:"us-east-1"`
	Bucket          string `env:"BUCKET"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	// PublicBaseURL prefixes object keys in stored photo URLs, e.g. a CDN origin.
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
	UsePathStyle  bool   `env:"USE_PATH_STYLE"    envDefault:"false"`
	MaxBytes      int64  `env:"MAX_BYTES"         envDefault:"5242880"`
}

// Sanitize applies guardrails to storage configuration values.
func (s *StorageConfig) Sanitize() {
	s.Endpoint = strings.TrimSpace(s.Endpoint)
	s.Bucket = strings.TrimSpace(s.Bucket)
	s.PublicBaseURL = strings.TrimSpace(s.PublicBaseURL)
	if s.MaxBytes <= 0 || s.MaxBytes > defaultMaxPhotoBytes {
		s.MaxBytes = defaultMaxPhotoBytes
	}
}

// Enabled reports whether a bucket is configured.
func (s *StorageConfig) Enabled() bool {
	return s.Bucket != ""
}
