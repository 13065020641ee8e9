package slicefile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
)

// ReaderAtDocument exposes any io.ReaderAt of known size as a Document.
type ReaderAtDocument struct {
	r         io.ReaderAt
	size      int64
	sliceSize int
	count     int
	closer    io.Closer
	closed    atomic.Bool
}

var _ Document = (*ReaderAtDocument)(nil)

// NewReaderAtDocument opens a sliced view of r. closer, if non-nil, is closed
// together with the document.
func NewReaderAtDocument(r io.ReaderAt, size int64, sliceSize int, closer io.Closer) (*ReaderAtDocument, error) {
	if err := ValidateSliceSize(sliceSize); err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, fmt.Errorf("slicefile: negative document size %d", size)
	}
	return &ReaderAtDocument{
		r:         r,
		size:      size,
		sliceSize: sliceSize,
		count:     SliceCountFor(size, sliceSize),
		closer:    closer,
	}, nil
}

func (d *ReaderAtDocument) SliceCount() int { return d.count }
func (d *ReaderAtDocument) Size() int64     { return d.size }
func (d *ReaderAtDocument) SliceSize() int  { return d.sliceSize }

func (d *ReaderAtDocument) FetchSlice(ctx context.Context, index int) (Slice, error) {
	if d.closed.Load() {
		return Slice{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return Slice{}, err
	}
	if index < 0 || index >= d.count {
		return Slice{}, fmt.Errorf("%w: %d of %d", ErrSliceIndexOutOfRange, index, d.count)
	}

	off := int64(index) * int64(d.sliceSize)
	n := int64(d.sliceSize)
	if rest := d.size - off; rest < n {
		n = rest
	}
	buf := make([]byte, n)
	read, err := d.r.ReadAt(buf, off)
	if err != nil && !(errors.Is(err, io.EOF) && int64(read) == n) {
		return Slice{}, fmt.Errorf("read slice %d: %w", index, err)
	}
	return Slice{Index: index, Data: buf}, nil
}

// Close is safe to call more than once; only the first call reaches the closer.
func (d *ReaderAtDocument) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}
