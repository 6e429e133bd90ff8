package output

import (
	"context"
	"fmt"

	"github.com/levenlabs/go-lflag"
)

// Configured sets up the output sink based on flags.
func Configured() Sink {
	provider := lflag.String("output-provider", "local", "Where reports are written (available: local, s3)")
	root := lflag.String("output-root", ".", "Directory relative output directories are resolved against")
	bucket := lflag.String("output-s3-bucket", "", "S3 bucket reports are uploaded to")
	prefix := lflag.String("output-s3-prefix", "", "Key prefix for uploaded reports")
	region := lflag.String("output-s3-region", "", "S3 region, defaults to the AWS environment")
	endpoint := lflag.String("output-s3-endpoint", "", "Custom S3 endpoint for S3 compatible stores")

	var s struct{ Sink }

	lflag.Do(func() {
		switch *provider {
		case "local":
			local := NewLocal(*root)
			if err := local.Validate(); err != nil {
				panic(fmt.Sprintf("local output validation failed: %v", err))
			}
			s.Sink = local
		case "s3":
			s3, err := NewS3(context.Background(), S3Config{
				Bucket:   *bucket,
				Prefix:   *prefix,
				Region:   *region,
				Endpoint: *endpoint,
			})
			if err != nil {
				panic(fmt.Sprintf("failed to configure s3 output: %v", err))
			}
			if err := s3.Validate(); err != nil {
				panic(fmt.Sprintf("s3 output validation failed: %v", err))
			}
			s.Sink = s3
		default:
			panic(fmt.Sprintf("unknown output provider: %s", *provider))
		}
	})

	return &s
}
