package storage

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"

	"salesleads/internal/slicefile"
)

// BlobFile represents an opened blob that supports sequential read,
// random-access read, and reports its size.
type BlobFile struct {
	ra     io.ReaderAt
	closer io.Closer
	sr     *io.SectionReader
	size   int64
}

func NewBlobFile(ra io.ReaderAt, closer io.Closer, size int64) *BlobFile {
	return &BlobFile{ra: ra, closer: closer, sr: io.NewSectionReader(ra, 0, size), size: size}
}

func (b *BlobFile) Read(p []byte) (int, error)              { return b.sr.Read(p) }
func (b *BlobFile) ReadAt(p []byte, off int64) (int, error) { return b.ra.ReadAt(p, off) }
func (b *BlobFile) Size() int64                             { return b.size }

func (b *BlobFile) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// BlobStorage is the interface for blob storage backends.
// Local-disk, S3-compatible and bbolt stores implement this.
type BlobStorage interface {
	// PutStream writes data from r, returning the content-addressable digest,
	// byte count, and a backend-specific key for later retrieval.
	PutStream(ctx context.Context, r io.Reader) (digest string, size int64, key string, err error)

	// Open retrieves a previously stored blob by its key.
	// The returned BlobFile must be closed by the caller.
	Open(ctx context.Context, key string) (*BlobFile, error)

	// OpenDocument opens a stored blob as a sliced document. Ownership of the
	// document passes to the caller, which closes it (slicefile.ReadAll does).
	OpenDocument(ctx context.Context, key string, sliceSize int) (slicefile.Document, error)
}

// contentKey maps a sha256 sum to its sharded key, e.g. "sha256/ab/abcd...".
func contentKey(sum []byte) (digest string, key string) {
	hexDigest := hex.EncodeToString(sum)
	return "sha256:" + hexDigest, path.Join("sha256", hexDigest[:2], hexDigest)
}

// validKey rejects keys that would escape the storage root.
func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return fmt.Errorf("invalid blob key %q", key)
	}
	return nil
}

func openSliced(f *BlobFile, sliceSize int) (slicefile.Document, error) {
	doc, err := slicefile.NewReaderAtDocument(f, f.Size(), sliceSize, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return doc, nil
}
