package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"salesleads/internal/slicefile"

	"go.etcd.io/bbolt"
)

var bucketBlobs = []byte("blobs")

// boltOpenTimeout bounds the wait for another process's file lock.
const boltOpenTimeout = time.Second

// BoltBlobStore keeps documents inside a single bbolt database file. It suits
// single-node deployments that would rather not manage a blob directory.
type BoltBlobStore struct {
	db *bbolt.DB
}

var _ BlobStorage = (*BoltBlobStore)(nil)

// OpenBoltBlobStore opens or creates the database at dbPath.
func OpenBoltBlobStore(dbPath string) (*BoltBlobStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create bolt directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: boltOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketBlobs)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create blobs bucket: %w", err)
	}
	return &BoltBlobStore{db: db}, nil
}

func (b *BoltBlobStore) Close() error { return b.db.Close() }

func (b *BoltBlobStore) PutStream(_ context.Context, r io.Reader) (digest string, size int64, key string, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", fmt.Errorf("read blob: %w", err)
	}
	sum := sha256.Sum256(data)
	digest, key = contentKey(sum[:])

	err = b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketBlobs)
		if bucket.Get([]byte(key)) != nil {
			return nil
		}
		return bucket.Put([]byte(key), data)
	})
	if err != nil {
		return "", 0, "", fmt.Errorf("bolt put: %w", err)
	}
	return digest, int64(len(data)), key, nil
}

func (b *BoltBlobStore) Open(_ context.Context, key string) (*BlobFile, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketBlobs).Get([]byte(key))
		if v == nil {
			return os.ErrNotExist
		}
		// v is only valid for the life of the transaction.
		data = bytes.Clone(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewBlobFile(bytes.NewReader(data), nil, int64(len(data))), nil
}

func (b *BoltBlobStore) OpenDocument(ctx context.Context, key string, sliceSize int) (slicefile.Document, error) {
	f, err := b.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	return openSliced(f, sliceSize)
}
