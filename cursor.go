// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package virtualtiff

import (
	"encoding/binary"
	"math"
)

// cursor wraps a bounded byte window with the file's byte order. Every read
// is addressed by absolute offset within the window; there is no mutable
// position, so callers may read out of order.
type cursor struct {
	buf   []byte
	order binary.ByteOrder
}

func (c cursor) bytes(offset, length uint64) ([]byte, error) {
	if offset+length < offset || offset+length > uint64(len(c.buf)) {
		return nil, rangeErr("cursor read", offset, length, uint64(len(c.buf)))
	}
	return c.buf[offset : offset+length], nil
}

// uint reads one unsigned integer of the given byte width (1, 2, 4 or 8).
func (c cursor) uint(offset uint64, width int) (uint64, error) {
	b, err := c.bytes(offset, uint64(width))
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(c.order.Uint16(b)), nil
	case 4:
		return uint64(c.order.Uint32(b)), nil
	case 8:
		return c.order.Uint64(b), nil
	}
	return 0, rangeErr("cursor read width", offset, uint64(width), uint64(len(c.buf)))
}

func (c cursor) uint16At(offset uint64) (uint16, error) {
	v, err := c.uint(offset, 2)
	return uint16(v), err
}

func (c cursor) uint32At(offset uint64) (uint32, error) {
	v, err := c.uint(offset, 4)
	return uint32(v), err
}

func (c cursor) uint64At(offset uint64) (uint64, error) {
	return c.uint(offset, 8)
}

func (c cursor) float32At(offset uint64) (float32, error) {
	v, err := c.uint32At(offset)
	return math.Float32frombits(v), err
}

func (c cursor) float64At(offset uint64) (float64, error) {
	v, err := c.uint64At(offset)
	return math.Float64frombits(v), err
}
