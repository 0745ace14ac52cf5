// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package virtualtiff

import (
	"context"
	"fmt"
	"os"
)

// FileSource is a ByteSource over a local file. On unix platforms the file
// is mapped read-only so range reads are plain slicing; elsewhere, and when
// mapping fails, reads fall back to positioned reads on the descriptor.
type FileSource struct {
	f        *os.File
	size     uint64
	data     []byte // non-nil when the file is memory mapped
	identity string
}

// OpenFile opens path as a byte source. The source must be closed when the
// manifests built from it are no longer being constructed; already-built
// manifests stay valid after Close.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tiff: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("tiff: %w", err)
	}
	s := &FileSource{
		f:    f,
		size: uint64(st.Size()),
		// Size and mtime stand in for an object-store etag on local
		// files.
		identity: fmt.Sprintf("%x-%x", st.Size(), st.ModTime().UnixNano()),
	}
	if st.Size() > 0 {
		// Mapping is an optimization; positioned reads cover failure.
		s.data, _ = mmapFile(f, st.Size())
	}
	return s, nil
}

// ReadRange returns length bytes starting at offset.
func (s *FileSource) ReadRange(ctx context.Context, offset, length uint64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, ioErr(offset, length, err)
	}
	if offset+length < offset || offset+length > s.size {
		return nil, rangeErr("read", offset, length, s.size)
	}
	if s.data != nil {
		return s.data[offset : offset+length], nil
	}
	buf := make([]byte, length)
	if _, err := s.f.ReadAt(buf, int64(offset)); err != nil {
		return nil, ioErr(offset, length, err)
	}
	return buf, nil
}

// Size returns the file's length at open time.
func (s *FileSource) Size() uint64 { return s.size }

// Identity returns an etag-like token derived from the file's size and
// modification time, suitable for Parser's WithFileIdentity.
func (s *FileSource) Identity() string { return s.identity }

// Close unmaps and closes the file.
func (s *FileSource) Close() error {
	if s.data != nil {
		munmapFile(s.data)
		s.data = nil
	}
	return s.f.Close()
}
