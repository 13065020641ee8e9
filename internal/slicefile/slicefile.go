// Package slicefile reads host documents that are exposed as a sequence of
// fixed-size byte slices and reassembles them into one contiguous buffer.
//
// A Document is opened elsewhere (a blob on disk, an S3 object, a remote
// slice API) and handed to Assemble or ReadAll, which take ownership of it:
// slices are requested one at a time in ascending index order and the
// document is closed exactly once, whatever the outcome.
package slicefile

import (
	"context"
	"errors"
)

const (
	// DefaultSliceSize matches the slice size the add-in requests from Office.
	DefaultSliceSize = 4096

	// MaxSliceSize is the largest slice Office will hand out (4 MiB).
	MaxSliceSize = 4 << 20
)

var (
	ErrInvalidSliceSize     = errors.New("slicefile: slice size must be between 1 and 4 MiB")
	ErrInvalidSliceCount    = errors.New("slicefile: slice count must not be negative")
	ErrSliceIndexOutOfRange = errors.New("slicefile: slice index out of range")
	ErrSliceOutOfOrder      = errors.New("slicefile: slice returned for a different index")
	ErrClosed               = errors.New("slicefile: document is closed")
)

// Slice is one page of a document's content.
// All slices but the last have the document's configured slice size.
type Slice struct {
	Index int
	Data  []byte
}

// Document is a host-owned handle to a file whose content can only be read
// slice by slice. The slice count is fixed when the handle is opened.
type Document interface {
	SliceCount() int
	FetchSlice(ctx context.Context, index int) (Slice, error)
	Close() error
}

// ValidateSliceSize reports whether sliceSize is usable for opening a document.
func ValidateSliceSize(sliceSize int) error {
	if sliceSize <= 0 || sliceSize > MaxSliceSize {
		return ErrInvalidSliceSize
	}
	return nil
}

// SliceCountFor returns how many slices of sliceSize are needed to cover size bytes.
func SliceCountFor(size int64, sliceSize int) int {
	if size <= 0 || sliceSize <= 0 {
		return 0
	}
	n := size / int64(sliceSize)
	if size%int64(sliceSize) != 0 {
		n++
	}
	return int(n)
}
