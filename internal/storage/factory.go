package storage

import (
	"context"
	"fmt"
	"strings"
)

const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendBolt  = "bolt"
)

type Options struct {
	Backend  string
	Root     string
	BoltPath string
	S3Bucket string
	S3Prefix string
	S3Client S3ClientConfig
}

// New builds the configured blob backend.
func New(ctx context.Context, opts Options) (BlobStorage, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendLocal:
		return NewLocalBlobStore(opts.Root)
	case BackendBolt:
		return OpenBoltBlobStore(opts.BoltPath)
	case BackendS3:
		if strings.TrimSpace(opts.S3Bucket) == "" {
			return nil, fmt.Errorf("s3 backend requires a bucket")
		}
		client, err := NewS3Client(ctx, opts.S3Client)
		if err != nil {
			return nil, err
		}
		return NewS3BlobStore(S3Options{Client: client, Bucket: opts.S3Bucket, Prefix: opts.S3Prefix}), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
