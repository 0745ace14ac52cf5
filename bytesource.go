// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package virtualtiff

import (
	"context"
	"io"
)

// ByteSource is the injected capability the parser reads file bytes through.
// Implementations may be backed by memory, a local file, or a remote object
// store performing range requests.
//
// ReadRange must be idempotent and safe to call concurrently and out of
// order: the tag value decoder fetches overflow value arrays while the
// directory that references them is still being read. The returned slice
// must stay valid until the parse completes; the parser never mutates it.
//
// Size reports the total length of the underlying file and is used for
// bounds checking every decoded offset.
type ByteSource interface {
	ReadRange(ctx context.Context, offset, length uint64) ([]byte, error)
	Size() uint64
}

// BytesSource adapts an in-memory byte slice to the ByteSource interface.
type BytesSource []byte

// ReadRange returns a sub-slice of the backing array without copying.
func (b BytesSource) ReadRange(_ context.Context, offset, length uint64) ([]byte, error) {
	if offset+length < offset || offset+length > uint64(len(b)) {
		return nil, rangeErr("read", offset, length, uint64(len(b)))
	}
	return b[offset : offset+length], nil
}

// Size returns the length of the backing slice.
func (b BytesSource) Size() uint64 { return uint64(len(b)) }

// readerAtSource adapts an io.ReaderAt of known size.
type readerAtSource struct {
	r    io.ReaderAt
	size uint64
}

// NewReaderAtSource wraps an io.ReaderAt and its total size as a ByteSource.
// Read failures surface as ErrIO; requests past size fail with ErrRange
// without touching the reader.
func NewReaderAtSource(r io.ReaderAt, size int64) ByteSource {
	return &readerAtSource{r: r, size: uint64(size)}
}

func (s *readerAtSource) ReadRange(ctx context.Context, offset, length uint64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, ioErr(offset, length, err)
	}
	if offset+length < offset || offset+length > s.size {
		return nil, rangeErr("read", offset, length, s.size)
	}
	buf := make([]byte, length)
	if _, err := s.r.ReadAt(buf, int64(offset)); err != nil {
		return nil, ioErr(offset, length, err)
	}
	return buf, nil
}

func (s *readerAtSource) Size() uint64 { return s.size }
