// Package storage serves the lead magnet files, from a local directory in
// development or an S3-compatible bucket in production.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/config"
)

const (
	DriverFS = "fs"
	DriverS3 = "s3"
)

// ErrNotFound is returned when no object exists under the key.
var ErrNotFound = errors.New("storage: object not found")

// Object is an open asset. The caller must close Body.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// Store opens assets by key.
type Store interface {
	Open(ctx context.Context, key string) (*Object, error)
}

// New returns the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.AssetsConfig) (Store, error) {
	switch cfg.Driver {
	case "", DriverFS:
		return NewFSStore(cfg.Dir), nil
	case DriverS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown asset storage driver %q", cfg.Driver)
	}
}

// FSStore reads assets from a directory. Keys are slash-separated paths
// relative to it and may not escape it.
type FSStore struct {
	fsys fs.FS
}

func NewFSStore(dir string) *FSStore {
	return &FSStore{fsys: os.DirFS(dir)}
}

func (s *FSStore) Open(_ context.Context, key string) (*Object, error) {
	if !fs.ValidPath(key) {
		return nil, ErrNotFound
	}

	f, err := s.fsys.Open(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", key, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("storage: stat %s: %w", key, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, ErrNotFound
	}

	return &Object{Body: f, Size: info.Size()}, nil
}

// S3Store reads assets from one bucket. A custom endpoint switches to
// path-style addressing for MinIO and Supabase Storage's S3 gateway.
type S3Store struct {
	client *s3.Client
	bucket string
}

func NewS3Store(ctx context.Context, cfg config.AssetsConfig) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: cfg.S3Bucket}, nil
}

func (s *S3Store) Open(ctx context.Context, key string) (*Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: get s3://%s/%s: %w", s.bucket, key, err)
	}

	return &Object{
		Body:        out.Body,
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
	}, nil
}
