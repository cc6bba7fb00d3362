package links

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// maxPresignExpiry is the longest validity S3 signature v4 accepts.
const maxPresignExpiry = 7 * 24 * time.Hour

// presigner is the subset of *minio.Client used for link issuance.
type presigner interface {
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// MinioIssuer returns presigned GET URLs for objects in a bucket that backs
// the CDN origin.
type MinioIssuer struct {
	client presigner
	bucket string
}

func NewMinioIssuer(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioIssuer, error) {
	endpoint, useSSL, err := normaliseEndpoint(endpoint, useSSL)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinioIssuer{client: client, bucket: bucket}, nil
}

// normaliseEndpoint accepts "host:port" or "http(s)://host:port"; a scheme
// overrides useSSL.
func normaliseEndpoint(raw string, useSSL bool) (string, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, errors.New("empty minio endpoint")
	}
	if !strings.Contains(raw, "://") {
		return raw, useSSL, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("invalid minio endpoint: %w", err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("invalid minio endpoint: %s", raw)
	}
	if u.Path != "" && u.Path != "/" {
		return "", false, errors.New("minio endpoint must not contain a path")
	}
	return u.Host, u.Scheme == "https", nil
}

func (i *MinioIssuer) GetName() string {
	return "minio"
}

func (i *MinioIssuer) IssueTimeLimitedURL(ctx context.Context, remotePath string, expiry time.Duration) (string, error) {
	object := strings.TrimPrefix(remotePath, "/")
	if object == "" {
		return "", errEmptyPath
	}
	if expiry <= 0 {
		return "", errors.New("expiry must be positive")
	}
	if expiry > maxPresignExpiry {
		expiry = maxPresignExpiry
	}

	u, err := i.client.PresignedGetObject(ctx, i.bucket, object, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", object, err)
	}
	return u.String(), nil
}
