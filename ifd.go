// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package virtualtiff

import (
	"context"
	"sort"
)

// maxIFDEntries bounds the entry count of a single directory. Counts above
// it indicate corruption, not a real file.
const maxIFDEntries = 65535

// IFD is one parsed Image File Directory: a typed tag mapping plus its own
// byte offset (its identity within the file) and the offset of the next
// directory in the chain (0 for the last one).
//
// Parsing an IFD validates only its wire structure. Raster requirements
// (dimensions, offsets, byte counts) are checked when a manifest is built,
// so a directory can be inspected for metadata without being a valid image.
type IFD struct {
	index  int
	offset uint64
	next   uint64
	tags   map[TagID]TagValue
}

// Index is the directory's position in the file's IFD chain.
func (d *IFD) Index() int { return d.index }

// Offset is the byte offset the directory was parsed from.
func (d *IFD) Offset() uint64 { return d.offset }

// NextOffset is the file offset of the following directory, 0 if none.
func (d *IFD) NextOffset() uint64 { return d.next }

// Has reports whether the directory contains the tag.
func (d *IFD) Has(tag TagID) bool {
	_, ok := d.tags[tag]
	return ok
}

// Value returns the decoded value of a tag and whether it is present.
func (d *IFD) Value(tag TagID) (TagValue, bool) {
	v, ok := d.tags[tag]
	return v, ok
}

// Tags returns the directory's tag ids in ascending order.
func (d *IFD) Tags() []TagID {
	out := make([]TagID, 0, len(d.tags))
	for id := range d.tags {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// uintTag returns the first element of a tag as an unsigned integer.
// Present but non-integer typed tags fail with ErrUnsupported.
func (d *IFD) uintTag(tag TagID) (uint64, bool, error) {
	v, ok := d.tags[tag]
	if !ok {
		return 0, false, nil
	}
	seq, err := v.uintSeq(d.index, tag)
	if err != nil {
		return 0, true, err
	}
	if len(seq) == 0 {
		return 0, true, formatErr(d.index, tag, "tag %d has zero count", tag)
	}
	return seq[0], true, nil
}

// uintsTag returns the full unsigned sequence of a tag, nil when absent.
func (d *IFD) uintsTag(tag TagID) ([]uint64, error) {
	v, ok := d.tags[tag]
	if !ok {
		return nil, nil
	}
	return v.uintSeq(d.index, tag)
}

// parseIFD reads the directory at offset: entry count, fixed-size tag
// records, trailing next-IFD pointer. Overflow value arrays are fetched
// through the byte source as they are encountered; those reads are
// independent range reads and need no ordering relative to the record scan.
func parseIFD(ctx context.Context, src ByteSource, hdr fileHeader, offset uint64, index int) (*IFD, error) {
	countWidth := uint64(2)
	if hdr.big {
		countWidth = 8
	}
	if offset+countWidth < offset || offset+countWidth > src.Size() {
		return nil, rangeErr("IFD entry count", offset, countWidth, src.Size())
	}
	countBytes, err := src.ReadRange(ctx, offset, countWidth)
	if err != nil {
		return nil, err
	}
	entryCount, err := cursor{countBytes, hdr.order}.uint(0, int(countWidth))
	if err != nil {
		return nil, err
	}
	if entryCount > maxIFDEntries {
		return nil, formatErr(index, 0, "entry count %d exceeds limit %d", entryCount, maxIFDEntries)
	}

	recSize := hdr.recordSize()
	offWidth := uint64(hdr.offsetSize())
	bodyLen := entryCount*recSize + offWidth
	bodyOff := offset + countWidth
	if bodyOff+bodyLen < bodyOff || bodyOff+bodyLen > src.Size() {
		return nil, rangeErr("IFD body", bodyOff, bodyLen, src.Size())
	}
	// One range read covers all records and the next-IFD pointer.
	body, err := src.ReadRange(ctx, bodyOff, bodyLen)
	if err != nil {
		return nil, err
	}
	c := cursor{body, hdr.order}

	d := &IFD{
		index:  index,
		offset: offset,
		tags:   make(map[TagID]TagValue, entryCount),
	}
	for i := uint64(0); i < entryCount; i++ {
		recBytes, err := c.bytes(i*recSize, recSize)
		if err != nil {
			return nil, err
		}
		rec := decodeTagRecord(cursor{recBytes, hdr.order}, hdr.big)
		if _, dup := d.tags[rec.tag]; dup {
			return nil, formatErr(index, rec.tag, "duplicate tag %d", rec.tag)
		}
		val, err := decodeTagValue(ctx, src, hdr, rec, index)
		if err != nil {
			return nil, err
		}
		d.tags[rec.tag] = val
	}

	d.next, err = c.uint(entryCount*recSize, hdr.offsetSize())
	if err != nil {
		return nil, err
	}
	return d, nil
}
