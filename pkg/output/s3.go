package output

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 writes reports to an S3 compatible bucket.
type S3 struct {
	client putObjectAPI
	bucket string
	prefix string
}

// S3Config configures an S3 sink.
type S3Config struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

// NewS3 loads the default AWS configuration and returns a sink for the
// configured bucket. A custom endpoint switches to path style addressing.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	var opts []func(*awscfg.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awscfg.WithRegion(cfg.Region))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Validate implements Sink.
func (s *S3) Validate() error {
	if s.bucket == "" {
		return fmt.Errorf("output-s3-bucket is required")
	}
	return nil
}

func (s *S3) objectKey(dir, name string) string {
	return strings.TrimPrefix(path.Join(s.prefix, strings.Trim(dir, "/"), name), "/")
}

// Write implements Sink and returns an s3:// URI.
func (s *S3) Write(ctx context.Context, dir, name string, data []byte) (string, error) {
	key := s.objectKey(dir, name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(ContentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report to s3: %w", err)
	}

	location := "s3://" + s.bucket + "/" + key
	slog.DebugContext(ctx, "uploaded report", slog.String("location", location), slog.Int("bytes", len(data)))
	return location, nil
}
