// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package virtualtiff

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"
)

const (
	classicVersion = 42
	bigVersion     = 43
)

// fileHeader is the decoded TIFF file header. Byte order and format variant
// are fixed here, once, for every subsequent multi-byte read in the file.
type fileHeader struct {
	order    binary.ByteOrder
	big      bool
	firstIFD uint64
}

// headerSize is the byte length of the header itself: 8 for classic TIFF,
// 16 for BigTIFF.
func (h fileHeader) headerSize() uint64 {
	if h.big {
		return 16
	}
	return 8
}

// offsetSize is the width of file offsets and of the next-IFD pointer.
func (h fileHeader) offsetSize() int {
	if h.big {
		return 8
	}
	return 4
}

// recordSize is the fixed size of one directory entry record.
func (h fileHeader) recordSize() uint64 {
	if h.big {
		return 20
	}
	return 12
}

// inlineSize is the threshold below which a tag value is stored inside the
// entry record instead of behind an offset.
func (h fileHeader) inlineSize() uint64 {
	if h.big {
		return 8
	}
	return 4
}

// parseFileHeader reads and validates the 8 byte (classic) or 16 byte
// (BigTIFF) header at the start of the source.
func parseFileHeader(ctx context.Context, src ByteSource) (fileHeader, error) {
	if src.Size() < 8 {
		return fileHeader{}, formatErr(-1, 0, "file of %d bytes is too small for a TIFF header", src.Size())
	}
	buf, err := src.ReadRange(ctx, 0, 8)
	if err != nil {
		return fileHeader{}, err
	}

	var hdr fileHeader
	switch {
	case buf[0] == 'I' && buf[1] == 'I':
		hdr.order = binary.LittleEndian
	case buf[0] == 'M' && buf[1] == 'M':
		hdr.order = binary.BigEndian
	default:
		return fileHeader{}, formatErr(-1, 0, "invalid byte order mark %#02x %#02x", buf[0], buf[1])
	}

	switch version := hdr.order.Uint16(buf[2:4]); version {
	case classicVersion:
		hdr.firstIFD = uint64(hdr.order.Uint32(buf[4:8]))
	case bigVersion:
		hdr.big = true
		if src.Size() < 16 {
			return fileHeader{}, formatErr(-1, 0, "file of %d bytes is too small for a BigTIFF header", src.Size())
		}
		rest, err := src.ReadRange(ctx, 8, 8)
		if err != nil {
			return fileHeader{}, err
		}
		// BigTIFF fixes the offset width at 8 and reserves the next
		// two bytes as zero.
		if offsetSize := hdr.order.Uint16(buf[4:6]); offsetSize != 8 {
			return fileHeader{}, formatErr(-1, 0, "BigTIFF offset size %d, want 8", offsetSize)
		}
		if reserved := hdr.order.Uint16(buf[6:8]); reserved != 0 {
			return fileHeader{}, formatErr(-1, 0, "BigTIFF reserved field %d, want 0", reserved)
		}
		hdr.firstIFD = hdr.order.Uint64(rest)
	default:
		return fileHeader{}, formatErr(-1, 0, "unknown TIFF version %d", version)
	}

	if hdr.firstIFD < hdr.headerSize() || hdr.firstIFD >= src.Size() {
		return fileHeader{}, formatErr(-1, 0, "first IFD offset %d outside file of %d bytes", hdr.firstIFD, src.Size())
	}
	return hdr, nil
}

// Document is the ordered sequence of top-level IFDs of one file, in chain
// order: the main image first, overviews after it. Sub-IFD offsets announced
// by tag 330 are recorded but never addressable as document entries.
type Document struct {
	hdr    fileHeader
	ifds   []*IFD
	subIFD map[uint64]bool
}

// ParseDocument walks the IFD chain from the file header, parsing each
// directory and following next-IFD pointers until one is zero. Offsets must
// stay inside the file and strictly past the header, and an offset that
// repeats is a cycle and fails with ErrFormat.
func ParseDocument(ctx context.Context, src ByteSource) (*Document, error) {
	hdr, err := parseFileHeader(ctx, src)
	if err != nil {
		return nil, err
	}

	doc := &Document{hdr: hdr, subIFD: make(map[uint64]bool)}
	visited := make(map[uint64]bool)
	for offset := hdr.firstIFD; offset != 0; {
		if visited[offset] {
			return nil, &FormatError{IFD: len(doc.ifds), Offset: offset,
				Reason: "IFD chain cycles back to a visited offset"}
		}
		visited[offset] = true
		if offset < hdr.headerSize() || offset >= src.Size() {
			return nil, &FormatError{IFD: len(doc.ifds), Offset: offset,
				Reason: "next IFD offset outside file"}
		}

		d, err := parseIFD(ctx, src, hdr, offset, len(doc.ifds))
		if err != nil {
			return nil, err
		}
		doc.ifds = append(doc.ifds, d)

		// Tag 330 announces nested page trees. The offsets are
		// recorded so callers can see they exist, but the nested
		// directories themselves stay out of the document.
		if subs, err := d.uintsTag(TagSubIFDs); err == nil {
			for _, s := range subs {
				doc.subIFD[s] = true
			}
		}
		offset = d.next
	}
	return doc, nil
}

// Len returns the number of top-level directories in the chain.
func (doc *Document) Len() int { return len(doc.ifds) }

// IFD returns the directory at position i, failing with ErrRange when i is
// outside the chain.
func (doc *Document) IFD(i int) (*IFD, error) {
	if i < 0 || i >= len(doc.ifds) {
		return nil, &RangeError{
			What: fmt.Sprintf("IFD index %d outside chain of %d directories", i, len(doc.ifds)),
			Size: uint64(len(doc.ifds)),
		}
	}
	return doc.ifds[i], nil
}

// BigTIFF reports whether the file uses 64-bit offsets and counts.
func (doc *Document) BigTIFF() bool { return doc.hdr.big }

// ByteOrder returns the byte order fixed by the file header.
func (doc *Document) ByteOrder() binary.ByteOrder { return doc.hdr.order }

// SubIFDOffsets returns the offsets of nested sub-IFDs announced anywhere in
// the chain. They are not parseable through this package.
func (doc *Document) SubIFDOffsets() []uint64 {
	out := make([]uint64, 0, len(doc.subIFD))
	for off := range doc.subIFD {
		out = append(out, off)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
