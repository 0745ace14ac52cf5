// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package virtualtiff

import (
	"encoding/binary"
	"math"
	"sort"
)

// tiffBuilder assembles synthetic TIFF and BigTIFF files in memory for
// tests, in either byte order. Directories are appended in call order and
// chained automatically; nextPos and ifdOffsets are exposed so tests can
// re-point chain links at already-written directories.
type tiffBuilder struct {
	order binary.ByteOrder
	big   bool
	buf   []byte

	// patch targets: the header's first-IFD field, then each written
	// directory's next-IFD field.
	nextPatch  uint64
	ifdOffsets []uint64
	nextPos    []uint64
}

type testEntry struct {
	tag     TagID
	typ     DataType
	count   uint64
	payload []byte
}

func newBuilder(order binary.ByteOrder, big bool) *tiffBuilder {
	b := &tiffBuilder{order: order, big: big}
	if order == binary.LittleEndian {
		b.buf = append(b.buf, 'I', 'I')
	} else {
		b.buf = append(b.buf, 'M', 'M')
	}
	if big {
		b.appendUint(2, bigVersion)
		b.appendUint(2, 8)
		b.appendUint(2, 0)
		b.nextPatch = uint64(len(b.buf))
		b.appendUint(8, 0) // first IFD offset, patched by addIFD
	} else {
		b.appendUint(2, classicVersion)
		b.nextPatch = uint64(len(b.buf))
		b.appendUint(4, 0)
	}
	return b
}

func (b *tiffBuilder) offsetWidth() int {
	if b.big {
		return 8
	}
	return 4
}

func (b *tiffBuilder) inlineSize() uint64 {
	if b.big {
		return 8
	}
	return 4
}

func (b *tiffBuilder) appendUint(width int, v uint64) {
	pos := len(b.buf)
	b.buf = append(b.buf, make([]byte, width)...)
	b.putUint(uint64(pos), width, v)
}

func (b *tiffBuilder) putUint(pos uint64, width int, v uint64) {
	switch width {
	case 1:
		b.buf[pos] = byte(v)
	case 2:
		b.order.PutUint16(b.buf[pos:], uint16(v))
	case 4:
		b.order.PutUint32(b.buf[pos:], uint32(v))
	case 8:
		b.order.PutUint64(b.buf[pos:], v)
	}
}

// appendData places raw bytes (chunk payloads, overflow arrays) at the end
// of the file and returns their offset.
func (b *tiffBuilder) appendData(data []byte) uint64 {
	off := uint64(len(b.buf))
	b.buf = append(b.buf, data...)
	return off
}

// addIFD writes a directory at the current end of the file, links the
// previous directory (or the header) to it, and returns its offset.
// Oversized values are placed after the directory body with their offsets
// patched in.
func (b *tiffBuilder) addIFD(entries ...testEntry) uint64 {
	sorted := append([]testEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].tag < sorted[j].tag })

	off := uint64(len(b.buf))
	b.putUint(b.nextPatch, b.offsetWidth(), off)
	b.ifdOffsets = append(b.ifdOffsets, off)

	if b.big {
		b.appendUint(8, uint64(len(sorted)))
	} else {
		b.appendUint(2, uint64(len(sorted)))
	}

	type patch struct {
		pos     uint64
		payload []byte
	}
	var overflow []patch
	for _, e := range sorted {
		b.appendUint(2, uint64(e.tag))
		b.appendUint(2, uint64(e.typ))
		if b.big {
			b.appendUint(8, e.count)
		} else {
			b.appendUint(4, e.count)
		}
		fieldPos := uint64(len(b.buf))
		b.buf = append(b.buf, make([]byte, b.inlineSize())...)
		if uint64(len(e.payload)) <= b.inlineSize() {
			copy(b.buf[fieldPos:], e.payload)
		} else {
			overflow = append(overflow, patch{pos: fieldPos, payload: e.payload})
		}
	}

	nextPos := uint64(len(b.buf))
	b.appendUint(b.offsetWidth(), 0)
	b.nextPos = append(b.nextPos, nextPos)
	b.nextPatch = nextPos

	for _, p := range overflow {
		b.putUint(p.pos, b.offsetWidth(), b.appendData(p.payload))
	}
	return off
}

func (b *tiffBuilder) bytes() []byte { return b.buf }

func (b *tiffBuilder) source() BytesSource { return BytesSource(b.buf) }

// Entry constructors. Each encodes the payload in the builder's byte order.

func (b *tiffBuilder) shorts(tag TagID, vals ...uint16) testEntry {
	payload := make([]byte, 2*len(vals))
	for i, v := range vals {
		b.order.PutUint16(payload[2*i:], v)
	}
	return testEntry{tag: tag, typ: TypeShort, count: uint64(len(vals)), payload: payload}
}

func (b *tiffBuilder) longs(tag TagID, vals ...uint32) testEntry {
	payload := make([]byte, 4*len(vals))
	for i, v := range vals {
		b.order.PutUint32(payload[4*i:], v)
	}
	return testEntry{tag: tag, typ: TypeLong, count: uint64(len(vals)), payload: payload}
}

func (b *tiffBuilder) long8s(tag TagID, vals ...uint64) testEntry {
	payload := make([]byte, 8*len(vals))
	for i, v := range vals {
		b.order.PutUint64(payload[8*i:], v)
	}
	return testEntry{tag: tag, typ: TypeLong8, count: uint64(len(vals)), payload: payload}
}

func (b *tiffBuilder) ascii(tag TagID, s string) testEntry {
	payload := append([]byte(s), 0)
	return testEntry{tag: tag, typ: TypeASCII, count: uint64(len(payload)), payload: payload}
}

func (b *tiffBuilder) rationals(tag TagID, pairs ...uint32) testEntry {
	payload := make([]byte, 4*len(pairs))
	for i, v := range pairs {
		b.order.PutUint32(payload[4*i:], v)
	}
	return testEntry{tag: tag, typ: TypeRational, count: uint64(len(pairs) / 2), payload: payload}
}

func (b *tiffBuilder) srationals(tag TagID, pairs ...int32) testEntry {
	payload := make([]byte, 4*len(pairs))
	for i, v := range pairs {
		b.order.PutUint32(payload[4*i:], uint32(v))
	}
	return testEntry{tag: tag, typ: TypeSRational, count: uint64(len(pairs) / 2), payload: payload}
}

func (b *tiffBuilder) sbytes(tag TagID, vals ...int8) testEntry {
	payload := make([]byte, len(vals))
	for i, v := range vals {
		payload[i] = byte(v)
	}
	return testEntry{tag: tag, typ: TypeSByte, count: uint64(len(vals)), payload: payload}
}

func (b *tiffBuilder) slongs(tag TagID, vals ...int32) testEntry {
	payload := make([]byte, 4*len(vals))
	for i, v := range vals {
		b.order.PutUint32(payload[4*i:], uint32(v))
	}
	return testEntry{tag: tag, typ: TypeSLong, count: uint64(len(vals)), payload: payload}
}

func (b *tiffBuilder) floats(tag TagID, vals ...float32) testEntry {
	payload := make([]byte, 4*len(vals))
	for i, v := range vals {
		b.order.PutUint32(payload[4*i:], math.Float32bits(v))
	}
	return testEntry{tag: tag, typ: TypeFloat, count: uint64(len(vals)), payload: payload}
}

func (b *tiffBuilder) doubles(tag TagID, vals ...float64) testEntry {
	payload := make([]byte, 8*len(vals))
	for i, v := range vals {
		b.order.PutUint64(payload[8*i:], math.Float64bits(v))
	}
	return testEntry{tag: tag, typ: TypeDouble, count: uint64(len(vals)), payload: payload}
}

func (b *tiffBuilder) undefined(tag TagID, payload []byte) testEntry {
	return testEntry{tag: tag, typ: TypeUndefined, count: uint64(len(payload)), payload: payload}
}

func (b *tiffBuilder) rawEntry(tag TagID, typ DataType, count uint64, payload []byte) testEntry {
	return testEntry{tag: tag, typ: typ, count: count, payload: payload}
}

// baselineGray returns the entries of a minimal single-band 8-bit grayscale
// directory, without any chunk layout tags.
func (b *tiffBuilder) baselineGray(width, height uint32) []testEntry {
	return []testEntry{
		b.longs(TagImageWidth, width),
		b.longs(TagImageLength, height),
		b.shorts(TagBitsPerSample, 8),
		b.shorts(TagCompression, CompressionNone),
		b.shorts(TagPhotometricInterpretation, 1),
		b.shorts(TagSamplesPerPixel, 1),
	}
}
