package storage

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"salesleads/internal/slicefile"
)

// LocalBlobStore stores documents by sha256 digest on local disk.
type LocalBlobStore struct {
	root string
}

var _ BlobStorage = (*LocalBlobStore)(nil)

func NewLocalBlobStore(root string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalBlobStore{root: root}, nil
}

func (b *LocalBlobStore) PutStream(_ context.Context, r io.Reader) (digest string, size int64, key string, err error) {
	tmpDir := filepath.Join(b.root, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", 0, "", fmt.Errorf("create tmp dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(tmpDir, "blob-*")
	if err != nil {
		return "", 0, "", fmt.Errorf("create tmp file: %w", err)
	}
	tmpName := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmpFile, h), r)
	if err != nil {
		return "", 0, "", fmt.Errorf("write blob: %w", err)
	}
	digest, key = contentKey(h.Sum(nil))
	size = n
	absPath := b.path(key)

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", 0, "", fmt.Errorf("create blob dir: %w", err)
	}
	if _, statErr := os.Stat(absPath); statErr == nil {
		_ = os.Remove(tmpName)
		return digest, size, key, nil
	}

	if err := tmpFile.Close(); err != nil {
		return "", 0, "", fmt.Errorf("close tmp file: %w", err)
	}
	if err := os.Rename(tmpName, absPath); err != nil {
		return "", 0, "", fmt.Errorf("move blob: %w", err)
	}
	return digest, size, key, nil
}

func (b *LocalBlobStore) Open(_ context.Context, key string) (*BlobFile, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	f, err := os.Open(b.path(key))
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return NewBlobFile(f, f, info.Size()), nil
}

func (b *LocalBlobStore) OpenDocument(ctx context.Context, key string, sliceSize int) (slicefile.Document, error) {
	f, err := b.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	return openSliced(f, sliceSize)
}

func (b *LocalBlobStore) path(key string) string {
	return filepath.Join(b.root, filepath.FromSlash(key))
}
