// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package virtualtiff

import (
	"context"
	"strings"
)

// maxValueBytes bounds the size of a single tag value array. A count field
// implying more than this is treated as corruption rather than honored with
// an allocation.
const maxValueBytes = 64 << 20

// Rational is an unsigned TIFF rational (two LONGs).
type Rational struct {
	Num uint64
	Den uint64
}

// SRational is a signed TIFF rational (two SLONGs).
type SRational struct {
	Num int64
	Den int64
}

// TagValue is the decoded value of one directory entry: an ordered sequence
// of scalars of the entry's wire type. Accessors return a view of the data
// as the requested Go type and a zero value when no such view exists, so
// directories can be traversed without error checking; the parser itself
// uses the strict variants that report an UnsupportedError instead.
type TagValue struct {
	typ    DataType
	count  uint64
	uints  []uint64
	ints   []int64
	floats []float64
	rats   []Rational
	srats  []SRational
	text   string
	raw    []byte
}

// Type returns the entry's wire type code.
func (v TagValue) Type() DataType { return v.typ }

// Count returns the number of elements in the value.
func (v TagValue) Count() uint64 { return v.count }

// Uint returns element i viewed as an unsigned integer, or 0 when the value
// is empty, non-numeric, or i is out of range.
func (v TagValue) Uint(i int) uint64 {
	switch {
	case i < 0:
		return 0
	case i < len(v.uints):
		return v.uints[i]
	case i < len(v.ints) && v.ints[i] >= 0:
		return uint64(v.ints[i])
	}
	return 0
}

// Uints returns a copy of the value as unsigned integers, or nil when the
// wire type has no unsigned view.
func (v TagValue) Uints() []uint64 {
	if v.uints == nil {
		return nil
	}
	out := make([]uint64, len(v.uints))
	copy(out, v.uints)
	return out
}

// Int returns element i viewed as a signed integer.
func (v TagValue) Int(i int) int64 {
	switch {
	case i < 0:
		return 0
	case i < len(v.ints):
		return v.ints[i]
	case i < len(v.uints):
		return int64(v.uints[i])
	}
	return 0
}

// Float returns element i viewed as a floating point number, converting
// integer and rational values where needed.
func (v TagValue) Float(i int) float64 {
	switch {
	case i < 0:
		return 0
	case i < len(v.floats):
		return v.floats[i]
	case i < len(v.uints):
		return float64(v.uints[i])
	case i < len(v.ints):
		return float64(v.ints[i])
	case i < len(v.rats):
		if v.rats[i].Den == 0 {
			return 0
		}
		return float64(v.rats[i].Num) / float64(v.rats[i].Den)
	case i < len(v.srats):
		if v.srats[i].Den == 0 {
			return 0
		}
		return float64(v.srats[i].Num) / float64(v.srats[i].Den)
	}
	return 0
}

// Floats returns a copy of the value as float64, or nil when the wire type
// has no floating point view.
func (v TagValue) Floats() []float64 {
	if v.floats == nil {
		return nil
	}
	out := make([]float64, len(v.floats))
	copy(out, v.floats)
	return out
}

// Rational returns element i of a RATIONAL value.
func (v TagValue) Rational(i int) Rational {
	if i < 0 || i >= len(v.rats) {
		return Rational{}
	}
	return v.rats[i]
}

// SRational returns element i of an SRATIONAL value.
func (v TagValue) SRational(i int) SRational {
	if i < 0 || i >= len(v.srats) {
		return SRational{}
	}
	return v.srats[i]
}

// Text returns an ASCII value with trailing NULs stripped, or "" for any
// other wire type.
func (v TagValue) Text() string { return v.text }

// Bytes returns a copy of the raw payload of UNDEFINED and unknown-typed
// values. It is nil for the decoded types.
func (v TagValue) Bytes() []byte {
	if v.raw == nil {
		return nil
	}
	out := make([]byte, len(v.raw))
	copy(out, v.raw)
	return out
}

// unknown reports whether the wire type was outside the TIFF type codes and
// the payload is therefore an opaque byte sequence.
func (v TagValue) unknown() bool { return v.typ.Size() == 0 }

// uintSeq is the strict unsigned view used for layout computations. Unknown
// or non-integer wire types cannot participate and fail with ErrUnsupported.
func (v TagValue) uintSeq(ifd int, tag TagID) ([]uint64, error) {
	if v.uints == nil {
		return nil, unsupportedErr(ifd, tag,
			"tag %d has type %s (code %d), expected an unsigned integer type",
			tag, v.typ, uint16(v.typ))
	}
	return v.uints, nil
}

// tagRecord is the fixed-size wire form of one directory entry before value
// resolution: 12 bytes in classic files, 20 in BigTIFF.
type tagRecord struct {
	tag   TagID
	typ   DataType
	count uint64
	// inline holds the reserved value field; field is its interpretation
	// as an offset when the value does not fit inline.
	inline []byte
	field  uint64
}

func decodeTagRecord(c cursor, big bool) tagRecord {
	var rec tagRecord
	t, _ := c.uint16At(0)
	dt, _ := c.uint16At(2)
	rec.tag = TagID(t)
	rec.typ = DataType(dt)
	if big {
		rec.count, _ = c.uint64At(4)
		rec.inline, _ = c.bytes(12, 8)
		rec.field, _ = c.uint64At(12)
	} else {
		n, _ := c.uint32At(4)
		rec.count = uint64(n)
		rec.inline, _ = c.bytes(8, 4)
		f, _ := c.uint32At(8)
		rec.field = uint64(f)
	}
	return rec
}

// decodeTagValue materializes one entry's value, fetching the overflow array
// through the byte source when the value does not fit in the reserved field.
func decodeTagValue(ctx context.Context, src ByteSource, hdr fileHeader, rec tagRecord, ifdIndex int) (TagValue, error) {
	elemSize := rec.typ.Size()
	if elemSize == 0 {
		// Unknown wire type: preserve the reserved field verbatim. The
		// element size is unknowable, so the overflow array (if any)
		// cannot be located; the inline bytes are all we can keep.
		raw := make([]byte, len(rec.inline))
		copy(raw, rec.inline)
		return TagValue{typ: rec.typ, count: rec.count, raw: raw}, nil
	}

	size := rec.count * elemSize
	if rec.count > maxValueBytes/elemSize {
		return TagValue{}, formatErr(ifdIndex, rec.tag,
			"value of %d %s elements exceeds %d byte limit", rec.count, rec.typ, maxValueBytes)
	}

	var data []byte
	if size <= hdr.inlineSize() {
		data = rec.inline[:size]
	} else {
		if rec.field+size < rec.field || rec.field+size > src.Size() {
			return TagValue{}, rangeErr("tag value", rec.field, size, src.Size())
		}
		var err error
		data, err = src.ReadRange(ctx, rec.field, size)
		if err != nil {
			return TagValue{}, err
		}
	}
	return decodeScalars(cursor{data, hdr.order}, rec.typ, rec.count), nil
}

// decodeScalars turns a value payload into the typed sequence for its wire
// type. The cursor is already sized to count*elemSize bytes.
func decodeScalars(c cursor, typ DataType, count uint64) TagValue {
	v := TagValue{typ: typ, count: count}
	n := int(count)
	switch typ {
	case TypeByte:
		v.uints = make([]uint64, n)
		for i := range v.uints {
			v.uints[i] = uint64(c.buf[i])
		}
	case TypeASCII:
		v.text = strings.TrimRight(string(c.buf), "\x00")
	case TypeShort:
		v.uints = make([]uint64, n)
		for i := range v.uints {
			v.uints[i], _ = c.uint(uint64(i)*2, 2)
		}
	case TypeLong, TypeIFD:
		v.uints = make([]uint64, n)
		for i := range v.uints {
			v.uints[i], _ = c.uint(uint64(i)*4, 4)
		}
	case TypeLong8, TypeIFD8:
		v.uints = make([]uint64, n)
		for i := range v.uints {
			v.uints[i], _ = c.uint(uint64(i)*8, 8)
		}
	case TypeRational:
		v.rats = make([]Rational, n)
		for i := range v.rats {
			num, _ := c.uint32At(uint64(i) * 8)
			den, _ := c.uint32At(uint64(i)*8 + 4)
			v.rats[i] = Rational{Num: uint64(num), Den: uint64(den)}
		}
	case TypeSByte:
		v.ints = make([]int64, n)
		for i := range v.ints {
			v.ints[i] = int64(int8(c.buf[i]))
		}
	case TypeSShort:
		v.ints = make([]int64, n)
		for i := range v.ints {
			u, _ := c.uint16At(uint64(i) * 2)
			v.ints[i] = int64(int16(u))
		}
	case TypeSLong:
		v.ints = make([]int64, n)
		for i := range v.ints {
			u, _ := c.uint32At(uint64(i) * 4)
			v.ints[i] = int64(int32(u))
		}
	case TypeSLong8:
		v.ints = make([]int64, n)
		for i := range v.ints {
			u, _ := c.uint64At(uint64(i) * 8)
			v.ints[i] = int64(u)
		}
	case TypeSRational:
		v.srats = make([]SRational, n)
		for i := range v.srats {
			num, _ := c.uint32At(uint64(i) * 8)
			den, _ := c.uint32At(uint64(i)*8 + 4)
			v.srats[i] = SRational{Num: int64(int32(num)), Den: int64(int32(den))}
		}
	case TypeFloat:
		v.floats = make([]float64, n)
		for i := range v.floats {
			f, _ := c.float32At(uint64(i) * 4)
			v.floats[i] = float64(f)
		}
	case TypeDouble:
		v.floats = make([]float64, n)
		for i := range v.floats {
			v.floats[i], _ = c.float64At(uint64(i) * 8)
		}
	case TypeUndefined:
		v.raw = make([]byte, n)
		copy(v.raw, c.buf)
	}
	return v
}
