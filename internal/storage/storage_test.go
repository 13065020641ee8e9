package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"salesleads/internal/slicefile"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workbookBytes() []byte {
	return bytes.Repeat([]byte("PK\x03\x04 workbook "), 700)
}

func assertRoundTrip(t *testing.T, store BlobStorage) {
	t.Helper()
	ctx := context.Background()
	data := workbookBytes()

	digest, size, key, err := store.PutStream(ctx, bytes.NewReader(data))
	require.NoError(t, err)
	sum := sha256.Sum256(data)
	assert.Equal(t, "sha256:"+hex.EncodeToString(sum[:]), digest)
	assert.Equal(t, int64(len(data)), size)

	f, err := store.Open(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, data, got)

	doc, err := store.OpenDocument(ctx, key, 1000)
	require.NoError(t, err)
	assert.Equal(t, slicefile.SliceCountFor(int64(len(data)), 1000), doc.SliceCount())
	assembled, err := slicefile.ReadAll(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, data, assembled)

	// Storing the same content twice is a no-op.
	_, _, key2, err := store.PutStream(ctx, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, key, key2)
}

func TestLocalBlobStore(t *testing.T) {
	store, err := NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)
	assertRoundTrip(t, store)

	_, err = store.Open(context.Background(), "../etc/passwd")
	assert.Error(t, err)
}

func TestBoltBlobStore(t *testing.T) {
	store, err := OpenBoltBlobStore(filepath.Join(t.TempDir(), "blobs", "docs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	assertRoundTrip(t, store)

	_, err = store.Open(context.Background(), "sha256/00/missing")
	assert.Error(t, err)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), Options{Backend: "tape"})
	assert.Error(t, err)

	_, err = New(context.Background(), Options{Backend: BackendS3})
	assert.Error(t, err)
}

type fakeS3 struct {
	objects map[string][]byte
	ranges  []string
	failGet error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	if in.Range != nil {
		f.ranges = append(f.ranges, *in.Range)
		var start, end int
		if _, err := fmt.Sscanf(*in.Range, "bytes=%d-%d", &start, &end); err != nil {
			return nil, err
		}
		data = data[start : end+1]
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

func TestS3BlobStore(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	store := NewS3BlobStore(S3Options{Client: fake, Bucket: "docs", Prefix: "workbooks/"})
	assertRoundTrip(t, store)

	for k := range fake.objects {
		assert.Contains(t, k, "workbooks/sha256/")
	}
}

func TestS3Document_RangedSlices(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{"k/sha256/ab/x": []byte("0123456789")}}
	store := NewS3BlobStore(S3Options{Client: fake, Bucket: "docs", Prefix: "k/"})

	doc, err := store.OpenDocument(context.Background(), "sha256/ab/x", 4)
	require.NoError(t, err)
	got, err := slicefile.ReadAll(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, []byte("0123456789"), got)
	assert.Equal(t, []string{"bytes=0-3", "bytes=4-7", "bytes=8-9"}, fake.ranges)
}

func TestS3Document_FetchFailure(t *testing.T) {
	boom := errors.New("throttled")
	fake := &fakeS3{objects: map[string][]byte{"sha256/ab/x": []byte("0123456789")}}
	store := NewS3BlobStore(S3Options{Client: fake, Bucket: "docs"})

	doc, err := store.OpenDocument(context.Background(), "sha256/ab/x", 4)
	require.NoError(t, err)
	fake.failGet = boom

	_, err = slicefile.ReadAll(context.Background(), doc)
	assert.ErrorIs(t, err, boom)

	_, err = doc.FetchSlice(context.Background(), 0)
	assert.ErrorIs(t, err, slicefile.ErrClosed)
}

func TestMissingBlobMatchesErrNotExist(t *testing.T) {
	local, err := NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)
	bolt, err := OpenBoltBlobStore(filepath.Join(t.TempDir(), "blobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })
	s3Store := NewS3BlobStore(S3Options{Client: &fakeS3{objects: map[string][]byte{}}, Bucket: "docs"})

	const key = "sha256/ab/abcdef"
	for name, store := range map[string]BlobStorage{"local": local, "bolt": bolt, "s3": s3Store} {
		_, err := store.Open(context.Background(), key)
		assert.ErrorIs(t, err, fs.ErrNotExist, name+" Open")
		_, err = store.OpenDocument(context.Background(), key, 4)
		assert.ErrorIs(t, err, fs.ErrNotExist, name+" OpenDocument")
	}
}

func TestOpenBoltBlobStore_LockedFileTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobs.db")
	first, err := OpenBoltBlobStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Close() })

	start := time.Now()
	_, err = OpenBoltBlobStore(path)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
}
