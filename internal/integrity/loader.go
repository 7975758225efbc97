package integrity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"pixelguard/pkg/platform/sentinel"
)

// Loader fetches the packaged whitelist resource. A missing resource is
// reported as sentinel.ErrNotFound.
type Loader interface {
	Load(ctx context.Context) ([]byte, error)
}

// BytesLoader serves a whitelist embedded in the binary.
type BytesLoader []byte

func (b BytesLoader) Load(context.Context) ([]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("embedded whitelist: %w", sentinel.ErrNotFound)
	}
	return bytes.Clone(b), nil
}

// FileLoader reads the whitelist from disk.
type FileLoader struct {
	Path string
}

func (f FileLoader) Load(context.Context) ([]byte, error) {
	if f.Path == "" {
		return nil, fmt.Errorf("whitelist path: %w", sentinel.ErrConfigurationMissing)
	}
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("whitelist %s: %w", f.Path, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read whitelist %s: %w", f.Path, err)
	}
	return data, nil
}

// S3Getter is the subset of the S3 client the loader needs.
type S3Getter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config selects the object holding the whitelist.
type S3Config struct {
	Region    string
	Bucket    string
	Key       string
	Endpoint  string // optional; set for MinIO or other S3-compatible stores
	PathStyle bool
}

// S3Loader fetches the whitelist from object storage so it can be rotated
// without shipping a new build.
type S3Loader struct {
	client S3Getter
	bucket string
	key    string
}

// NewS3Loader builds a loader with the default AWS credential chain.
func NewS3Loader(ctx context.Context, cfg S3Config) (*S3Loader, error) {
	if cfg.Bucket == "" || cfg.Key == "" {
		return nil, fmt.Errorf("whitelist s3 bucket and key: %w", sentinel.ErrConfigurationMissing)
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewS3LoaderWithClient(client, cfg.Bucket, cfg.Key)
}

// NewS3LoaderWithClient wraps an existing client.
func NewS3LoaderWithClient(client S3Getter, bucket, key string) (*S3Loader, error) {
	if client == nil {
		return nil, errors.New("s3 client is required")
	}
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("whitelist s3 bucket and key: %w", sentinel.ErrConfigurationMissing)
	}
	return &S3Loader{client: client, bucket: bucket, key: key}, nil
}

func (l *S3Loader) Load(ctx context.Context) ([]byte, error) {
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &l.bucket, Key: &l.key})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("whitelist s3://%s/%s: %w", l.bucket, l.key, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get whitelist s3://%s/%s: %w", l.bucket, l.key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read whitelist s3://%s/%s: %w", l.bucket, l.key, err)
	}
	return data, nil
}
