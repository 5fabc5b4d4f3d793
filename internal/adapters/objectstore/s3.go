// Package objectstore stores complaint photos in S3-compatible object storage.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/hostelhub/hostel-api/internal/ports"
)

// DefaultMaxObjectBytes caps a single upload.
const DefaultMaxObjectBytes = 5 << 20

// ErrTooLarge is returned when an upload exceeds the configured limit.
var ErrTooLarge = apperrors.Validation("object exceeds size limit")

// Config configures the S3 client.
type Config struct {
	// Endpoint is the S3 API base URL, e.g. https://fsn1.your-objectstorage.com. Empty means AWS.
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL prefixes object keys in returned URLs. Defaults to Endpoint/Bucket.
	PublicBaseURL string
	// UsePathStyle is required by most S3-compatible services.
	UsePathStyle bool
	MaxBytes     int64
}

// S3Store implements ports.ObjectStore.
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
	maxBytes  int64
}

var _ ports.ObjectStore = (*S3Store)(nil)

// NewS3Store builds an S3Store with static credentials.
func NewS3Store(cfg Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}
	if cfg.Region == "" {
		return nil, errors.New("region is required")
	}
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(strings.TrimSuffix(cfg.Endpoint, "/"))
	}

	publicURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if publicURL == "" {
		publicURL = defaultPublicURL(cfg)
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxObjectBytes
	}
	return &S3Store{
		client:    s3.New(opts),
		bucket:    cfg.Bucket,
		publicURL: publicURL,
		maxBytes:  maxBytes,
	}, nil
}

func defaultPublicURL(cfg Config) string {
	if cfg.Endpoint == "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
}

// Upload writes body under key and returns its public URL. The body is buffered so the
// request can be signed and retried.
func (s *S3Store) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", errors.New("object key is required")
	}
	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	return s.publicURL + "/" + escapeKey(key), nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
