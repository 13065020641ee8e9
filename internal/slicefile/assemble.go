package slicefile

import (
	"context"
	"fmt"
)

// Assemble reads every slice of doc and delivers the concatenated content to
// onSuccess, or the first fetch error to onFailure. Exactly one of the two is
// called, and only after doc has been closed.
//
// The error passed to onFailure is the one returned by FetchSlice, unwrapped.
// Slices read before a failure are discarded.
func Assemble(ctx context.Context, doc Document, onSuccess func([]byte), onFailure func(error)) {
	data, err := ReadAll(ctx, doc)
	if err != nil {
		onFailure(err)
		return
	}
	onSuccess(data)
}

// ReadAll is Assemble for callers that prefer a return value over continuations.
func ReadAll(ctx context.Context, doc Document) ([]byte, error) {
	a := assembly{doc: doc, want: doc.SliceCount()}
	if a.want < 0 {
		a.close()
		return nil, fmt.Errorf("%w: %d", ErrInvalidSliceCount, a.want)
	}
	a.parts = make([][]byte, 0, a.want)

	for len(a.parts) < a.want {
		if err := ctx.Err(); err != nil {
			a.close()
			return nil, err
		}

		next := len(a.parts)
		slice, err := doc.FetchSlice(ctx, next)
		if err != nil {
			a.close()
			return nil, err
		}
		if slice.Index != next {
			a.close()
			return nil, fmt.Errorf("%w: requested %d, got %d", ErrSliceOutOfOrder, next, slice.Index)
		}
		a.parts = append(a.parts, slice.Data)
		a.size += len(slice.Data)
	}

	a.close()
	return a.concat(), nil
}

// assembly is the accumulator of a single ReadAll call.
type assembly struct {
	doc    Document
	want   int
	parts  [][]byte
	size   int
	closed bool
}

// close releases the document. Close errors are dropped: by the time the
// document is closed the outcome of the read is already decided.
func (a *assembly) close() {
	if a.closed {
		return
	}
	a.closed = true
	_ = a.doc.Close()
}

func (a *assembly) concat() []byte {
	buf := make([]byte, 0, a.size)
	for _, p := range a.parts {
		buf = append(buf, p...)
	}
	a.parts = nil
	return buf
}
