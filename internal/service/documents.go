package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/google/uuid"

	"salesleads/internal/slicefile"
	"salesleads/internal/store"
)

const maxListedDocuments = 100

var ErrDigestMismatch = errors.New("assembled content does not match stored digest")

type UploadInput struct {
	Name        string
	ContentType string
	SliceSize   int
	CreatedBy   string
	Body        io.Reader
}

type DocumentView struct {
	store.Document
	SliceCount int `json:"slice_count"`
}

type SliceView struct {
	Index int
	Count int
	Data  []byte
}

type ExportView struct {
	Base64 string `json:"base64"`
	Size   int    `json:"size"`
	SHA256 string `json:"sha256"`
}

func newDocumentView(d store.Document) DocumentView {
	return DocumentView{Document: d, SliceCount: slicefile.SliceCountFor(d.SizeBytes, d.SliceSize)}
}

func (s *Service) UploadDocument(ctx context.Context, in UploadInput) (DocumentView, error) {
	name := sanitizeFileName(in.Name)
	if name == "" {
		return DocumentView{}, fmt.Errorf("%w: file name required", ErrInvalidInput)
	}
	sliceSize := in.SliceSize
	if sliceSize == 0 {
		sliceSize = s.sliceSize
	}
	if err := slicefile.ValidateSliceSize(sliceSize); err != nil {
		return DocumentView{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	body := in.Body
	if s.maxUpload > 0 {
		spooled, err := spoolUpload(in.Body, s.maxUpload)
		if err != nil {
			return DocumentView{}, err
		}
		defer spooled.Close()
		body = spooled
	}
	digest, size, key, err := s.blobs.PutStream(ctx, body)
	if err != nil {
		return DocumentView{}, err
	}

	doc, err := s.store.CreateDocument(ctx, store.Document{
		Name:        name,
		ContentType: contentType,
		Digest:      digest,
		SizeBytes:   size,
		BlobKey:     key,
		SliceSize:   sliceSize,
		CreatedBy:   in.CreatedBy,
	})
	if err != nil {
		return DocumentView{}, err
	}
	return newDocumentView(doc), nil
}

func (s *Service) GetDocument(ctx context.Context, id string) (DocumentView, error) {
	doc, err := s.lookupDocument(ctx, id)
	if err != nil {
		return DocumentView{}, err
	}
	return newDocumentView(doc), nil
}

func (s *Service) ListDocuments(ctx context.Context) ([]DocumentView, error) {
	docs, err := s.store.ListDocuments(ctx, maxListedDocuments)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentView, 0, len(docs))
	for _, d := range docs {
		out = append(out, newDocumentView(d))
	}
	return out, nil
}

// GetSlice returns one slice of a document, the way a host hands slices to an add-in.
func (s *Service) GetSlice(ctx context.Context, id string, index int) (SliceView, error) {
	meta, err := s.lookupDocument(ctx, id)
	if err != nil {
		return SliceView{}, err
	}
	doc, err := s.blobs.OpenDocument(ctx, meta.BlobKey, meta.SliceSize)
	if err != nil {
		return SliceView{}, blobError(err)
	}
	defer doc.Close()

	slice, err := doc.FetchSlice(ctx, index)
	if err != nil {
		if errors.Is(err, slicefile.ErrSliceIndexOutOfRange) {
			return SliceView{}, fmt.Errorf("%w: slice %d", ErrNotFound, index)
		}
		return SliceView{}, blobError(err)
	}
	return SliceView{Index: slice.Index, Count: doc.SliceCount(), Data: slice.Data}, nil
}

// ExportDocument assembles a stored document slice by slice and returns it
// base64 encoded. Concurrent exports of the same document share one assembly,
// which keeps running when the caller that started it goes away.
func (s *Service) ExportDocument(ctx context.Context, id string) (ExportView, error) {
	meta, err := s.lookupDocument(ctx, id)
	if err != nil {
		return ExportView{}, err
	}

	shared := context.WithoutCancel(ctx)
	ch := s.exportGroup.DoChan(meta.ID.String(), func() (any, error) {
		return s.assembleExport(shared, meta)
	})
	select {
	case <-ctx.Done():
		return ExportView{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return ExportView{}, blobError(res.Err)
		}
		return res.Val.(ExportView), nil
	}
}

func (s *Service) assembleExport(ctx context.Context, meta store.Document) (ExportView, error) {
	doc, err := s.blobs.OpenDocument(ctx, meta.BlobKey, meta.SliceSize)
	if err != nil {
		return ExportView{}, err
	}

	var (
		out       ExportView
		assembled error
	)
	slicefile.Assemble(ctx, doc, func(data []byte) {
		sum := sha256.Sum256(data)
		out = ExportView{
			Base64: base64.StdEncoding.EncodeToString(data),
			Size:   len(data),
			SHA256: hex.EncodeToString(sum[:]),
		}
	}, func(err error) {
		assembled = err
	})
	if assembled != nil {
		return ExportView{}, assembled
	}
	if meta.Digest != "" && meta.Digest != "sha256:"+out.SHA256 {
		return ExportView{}, ErrDigestMismatch
	}
	return out, nil
}

// blobError reports a blob that vanished from storage as ErrNotFound.
func blobError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: document content missing", ErrNotFound)
	}
	return err
}

// spooledUpload is an upload body copied to a temp file. Close removes it.
type spooledUpload struct {
	*os.File
}

func (f spooledUpload) Close() error {
	err := f.File.Close()
	_ = os.Remove(f.Name())
	return err
}

// spoolUpload copies at most limit bytes of r to a temp file, so an oversized
// upload is rejected before anything reaches blob storage.
func spoolUpload(r io.Reader, limit int64) (spooledUpload, error) {
	tmp, err := os.CreateTemp("", "upload-*")
	if err != nil {
		return spooledUpload{}, fmt.Errorf("create upload tmp file: %w", err)
	}
	f := spooledUpload{tmp}
	n, err := io.Copy(tmp, io.LimitReader(r, limit+1))
	if err != nil {
		_ = f.Close()
		return spooledUpload{}, fmt.Errorf("read upload: %w", err)
	}
	if n > limit {
		_ = f.Close()
		return spooledUpload{}, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, limit)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return spooledUpload{}, err
	}
	return f, nil
}

func (s *Service) lookupDocument(ctx context.Context, id string) (store.Document, error) {
	docID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return store.Document{}, fmt.Errorf("%w: invalid document id", ErrInvalidInput)
	}
	doc, err := s.store.GetDocument(ctx, docID)
	if err != nil {
		if store.IsNotFound(err) {
			return store.Document{}, ErrNotFound
		}
		return store.Document{}, err
	}
	return doc, nil
}
