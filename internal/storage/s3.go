package storage

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync/atomic"

	"salesleads/internal/slicefile"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of *s3.Client the store needs.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3BlobStore stores documents in an S3-compatible bucket (AWS S3, MinIO, etc.).
type S3BlobStore struct {
	client S3API
	bucket string
	prefix string
}

var _ BlobStorage = (*S3BlobStore)(nil)

type S3Options struct {
	Client S3API
	Bucket string
	Prefix string // optional key prefix, e.g. "documents/"
}

func NewS3BlobStore(opts S3Options) *S3BlobStore {
	return &S3BlobStore{
		client: opts.Client,
		bucket: opts.Bucket,
		prefix: opts.Prefix,
	}
}

// S3ClientConfig configures the S3 client. Empty credentials fall back to the
// default AWS credential chain.
type S3ClientConfig struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool
}

func NewS3Client(ctx context.Context, cfg S3ClientConfig) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}), nil
}

func (s *S3BlobStore) objectKey(key string) string {
	if s.prefix != "" {
		return s.prefix + key
	}
	return key
}

func (s *S3BlobStore) PutStream(ctx context.Context, r io.Reader) (digest string, size int64, key string, err error) {
	// Write to a temp file first to compute digest and get a seekable body.
	tmpFile, err := os.CreateTemp("", "s3-blob-*")
	if err != nil {
		return "", 0, "", fmt.Errorf("create tmp file: %w", err)
	}
	tmpName := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpName)
	}()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmpFile, h), r)
	if err != nil {
		return "", 0, "", fmt.Errorf("write tmp blob: %w", err)
	}
	digest, key = contentKey(h.Sum(nil))
	size = n

	if _, err := tmpFile.Seek(0, io.SeekStart); err != nil {
		return "", 0, "", fmt.Errorf("seek tmp file: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key)),
		Body:          tmpFile,
		ContentLength: aws.Int64(n),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return "", 0, "", fmt.Errorf("s3 put: %w", err)
	}
	return digest, size, key, nil
}

func (s *S3BlobStore) Open(ctx context.Context, key string) (*BlobFile, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %q: %w", key, notExist(err))
	}
	defer resp.Body.Close()

	// Download to a temp file so callers get io.ReaderAt.
	tmpFile, err := os.CreateTemp("", "s3-read-*")
	if err != nil {
		return nil, fmt.Errorf("create tmp file: %w", err)
	}
	n, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
		return nil, fmt.Errorf("download s3 object: %w", err)
	}
	return NewBlobFile(tmpFile, removeOnClose{tmpFile}, n), nil
}

// OpenDocument does not download the object: every slice is its own ranged GET.
func (s *S3BlobStore) OpenDocument(ctx context.Context, key string, sliceSize int) (slicefile.Document, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	if err := slicefile.ValidateSliceSize(sliceSize); err != nil {
		return nil, err
	}
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 head %q: %w", key, notExist(err))
	}
	size := aws.ToInt64(head.ContentLength)
	return &S3Document{
		client:    s.client,
		bucket:    s.bucket,
		key:       s.objectKey(key),
		size:      size,
		sliceSize: sliceSize,
		count:     slicefile.SliceCountFor(size, sliceSize),
	}, nil
}

// S3Document reads an object slice by slice with HTTP range requests.
type S3Document struct {
	client    S3API
	bucket    string
	key       string
	size      int64
	sliceSize int
	count     int
	closed    atomic.Bool
}

var _ slicefile.Document = (*S3Document)(nil)

func (d *S3Document) SliceCount() int { return d.count }

func (d *S3Document) FetchSlice(ctx context.Context, index int) (slicefile.Slice, error) {
	if d.closed.Load() {
		return slicefile.Slice{}, slicefile.ErrClosed
	}
	if index < 0 || index >= d.count {
		return slicefile.Slice{}, fmt.Errorf("%w: %d of %d", slicefile.ErrSliceIndexOutOfRange, index, d.count)
	}
	start := int64(index) * int64(d.sliceSize)
	end := start + int64(d.sliceSize) - 1
	if end >= d.size {
		end = d.size - 1
	}

	resp, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", start, end)),
	})
	if err != nil {
		return slicefile.Slice{}, fmt.Errorf("s3 get slice %d: %w", index, err)
	}
	defer resp.Body.Close()

	want := end - start + 1
	data, err := io.ReadAll(io.LimitReader(resp.Body, want+1))
	if err != nil {
		return slicefile.Slice{}, fmt.Errorf("read slice %d: %w", index, err)
	}
	if int64(len(data)) != want {
		return slicefile.Slice{}, fmt.Errorf("slice %d: got %d bytes, want %d", index, len(data), want)
	}
	return slicefile.Slice{Index: index, Data: data}, nil
}

func (d *S3Document) Close() error {
	d.closed.Store(true)
	return nil
}

type removeOnClose struct{ f *os.File }

func (r removeOnClose) Close() error {
	err := r.f.Close()
	_ = os.Remove(r.f.Name())
	return err
}

// notExist marks missing-object errors so they match fs.ErrNotExist like the
// other backends.
func notExist(err error) error {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: %w", fs.ErrNotExist, err)
	}
	return err
}
