package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"medialinks-backend/internal/config"
	"medialinks-backend/internal/models"
)

// S3Backend lists objects under "<path_prefix>/<folder>/". S3 has no
// sessions, so Connect and Close are no-ops around a shared client.
type S3Backend struct {
	config *config.S3Config
	client *s3.Client
}

type S3Connection struct{}

func NewS3Backend(cfg *config.S3Config) *S3Backend {
	awsCfg := aws.Config{
		Region: cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		),
	}

	if cfg.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	return &S3Backend{
		config: cfg,
		client: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = cfg.Endpoint != ""
		}),
	}
}

func (b *S3Backend) GetName() string {
	return "s3"
}

func (b *S3Backend) Connect(ctx context.Context) (Connection, error) {
	return &S3Connection{}, nil
}

func (b *S3Backend) ReadDir(ctx context.Context, conn Connection, folder string) ([]models.RemoteEntry, error) {
	prefix := b.folderPrefix(folder)

	result, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(b.config.Bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list S3 objects: %w", err)
	}

	entries := make([]models.RemoteEntry, 0, len(result.CommonPrefixes)+len(result.Contents))
	for _, p := range result.CommonPrefixes {
		name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(p.Prefix), prefix), "/")
		if name != "" {
			entries = append(entries, models.RemoteEntry{Name: name, IsDir: true})
		}
	}
	for _, obj := range result.Contents {
		name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
		if name == "" {
			continue
		}
		modified := aws.ToTime(obj.LastModified)
		entries = append(entries, models.RemoteEntry{
			Name:     name,
			Size:     aws.ToInt64(obj.Size),
			Created:  modified,
			Modified: modified,
		})
	}

	return entries, nil
}

func (b *S3Backend) Close(conn Connection) error {
	return nil
}

func (b *S3Backend) folderPrefix(folder string) string {
	if b.config.PathPrefix != "" {
		return b.config.PathPrefix + "/" + folder + "/"
	}
	return folder + "/"
}
