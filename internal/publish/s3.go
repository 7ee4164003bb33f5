// Package publish uploads written table files to S3.
package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// PutObjectAPI is the subset of the S3 client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader puts files under one bucket.
type Uploader struct {
	client PutObjectAPI
	bucket string
	log    zerolog.Logger
}

// NewUploader creates an S3-backed Uploader using the default credential chain.
func NewUploader(ctx context.Context, bucket, region string, log zerolog.Logger) (*Uploader, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewWithClient(s3.NewFromConfig(cfg), bucket, log), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client PutObjectAPI, bucket string, log zerolog.Logger) *Uploader {
	return &Uploader{client: client, bucket: bucket, log: log}
}

// UploadFiles uploads each file in paths to s3://bucket/prefix/<base name>,
// in the order given, and returns the keys written. Paths must name regular
// files; nothing else in their directories is touched.
func (u *Uploader) UploadFiles(ctx context.Context, paths []string, prefix string) ([]string, error) {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%s is not a regular file", p)
		}
	}

	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		key := Key(prefix, filepath.Base(p))
		if err := u.uploadFile(ctx, p, key); err != nil {
			return keys, fmt.Errorf("upload %s: %w", p, err)
		}
		u.log.Info().Str("bucket", u.bucket).Str("key", key).Msg("uploaded")
		keys = append(keys, key)
	}
	return keys, nil
}

func (u *Uploader) uploadFile(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(ContentType(path)),
	})
	return err
}

// Key joins prefix and name into an object key without a leading slash.
func Key(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// ContentType guesses the object content type from the file name.
func ContentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".csv.gz"):
		return "application/gzip"
	case strings.HasSuffix(name, ".csv"):
		return "text/csv"
	case strings.HasSuffix(name, ".parquet"):
		return "application/vnd.apache.parquet"
	case strings.HasSuffix(name, ".xlsx"):
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}
