// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package virtualtiff

import (
	"encoding/binary"
	"fmt"
)

// GridIndex addresses one chunk within the grid: plane, then row, then
// column. Plane is always 0 for chunky files.
type GridIndex struct {
	Plane int
	Row   int
	Col   int
}

func (g GridIndex) String() string {
	return fmt.Sprintf("(%d,%d,%d)", g.Plane, g.Row, g.Col)
}

// ChunkRef locates one chunk's bytes in the source file.
type ChunkRef struct {
	Index  GridIndex
	Offset uint64
	Length uint64
}

// Manifest is the complete byte-range map of one IFD: dimensions, chunk
// grid, decode pipeline, one ChunkRef per grid position, and the
// pass-through attributes. It is a pure function of (file bytes, IFD index)
// and never mutates after construction; slice- and map-typed accessors
// return copies.
type Manifest struct {
	ifdIndex int
	identity string
	little   bool
	dims     Dimensions
	layout   ChunkLayout
	chain    CodecChain
	dataType string
	chunks   []ChunkRef
	attrs    map[string]interface{}
}

// IFDIndex is the position in the file's IFD chain this manifest describes.
func (m *Manifest) IFDIndex() int { return m.ifdIndex }

// FileIdentity is the caller-supplied provenance token (typically an etag).
func (m *Manifest) FileIdentity() string { return m.identity }

// LittleEndian reports the byte order the file header fixed for sample data.
func (m *Manifest) LittleEndian() bool { return m.little }

// Dimensions returns the pixel geometry of the IFD.
func (m *Manifest) Dimensions() Dimensions {
	d := m.dims
	d.BitsPerSample = append([]uint64(nil), m.dims.BitsPerSample...)
	d.SampleFormat = append([]uint64(nil), m.dims.SampleFormat...)
	return d
}

// Layout returns the chunk addressing grid.
func (m *Manifest) Layout() ChunkLayout { return m.layout }

// DataType is the scalar type name shared by every sample.
func (m *Manifest) DataType() string { return m.dataType }

// Codecs returns the decode pipeline shared by all chunks, in execution
// order.
func (m *Manifest) Codecs() CodecChain {
	return append(CodecChain(nil), m.chain...)
}

// Len returns the number of chunks in the manifest.
func (m *Manifest) Len() int { return len(m.chunks) }

// Chunks returns every chunk reference in grid order: plane-major, then
// row-major, then column. That order matches the storage order of the
// offset and byte-count arrays in the file.
func (m *Manifest) Chunks() []ChunkRef {
	return append([]ChunkRef(nil), m.chunks...)
}

// Chunk returns the reference at a grid index.
func (m *Manifest) Chunk(idx GridIndex) (ChunkRef, bool) {
	if idx.Plane < 0 || idx.Plane >= m.layout.Planes ||
		idx.Row < 0 || uint64(idx.Row) >= m.layout.AcrossY ||
		idx.Col < 0 || uint64(idx.Col) >= m.layout.AcrossX {
		return ChunkRef{}, false
	}
	i := (idx.Plane*int(m.layout.AcrossY)+idx.Row)*int(m.layout.AcrossX) + idx.Col
	return m.chunks[i], true
}

// Attributes returns the pass-through tag attributes, including the file
// identity under "etag" when one was supplied.
func (m *Manifest) Attributes() map[string]interface{} {
	out := make(map[string]interface{}, len(m.attrs))
	for k, v := range m.attrs {
		out[k] = v
	}
	return out
}

// buildManifest assembles the manifest for one parsed directory. Everything
// here is pure assembly over values the earlier stages already decoded; the
// only remaining I/O concern is bounds-checking chunk ranges against the
// source's reported size.
func buildManifest(d *IFD, src ByteSource, hdr fileHeader, table CodecTable, identity string) (*Manifest, error) {
	if d.Has(TagSubIFDs) {
		return nil, unsupportedErr(d.index, TagSubIFDs,
			"directory announces nested sub-IFDs")
	}

	dims, err := resolveDimensions(d)
	if err != nil {
		return nil, err
	}
	layout, err := resolveLayout(d, dims)
	if err != nil {
		return nil, err
	}
	dataType, err := resolveDataType(d.index, dims)
	if err != nil {
		return nil, err
	}
	chain, err := resolveCodecChain(d, dims, layout, table)
	if err != nil {
		return nil, err
	}

	offsetTag, countTag := TagStripOffsets, TagStripByteCounts
	if layout.Mode == TileLayout {
		offsetTag, countTag = TagTileOffsets, TagTileByteCounts
	}
	offsets, err := d.uintsTag(offsetTag)
	if err != nil {
		return nil, err
	}
	counts, err := d.uintsTag(countTag)
	if err != nil {
		return nil, err
	}
	want := layout.chunkCount()
	if uint64(len(offsets)) != want {
		return nil, formatErr(d.index, offsetTag,
			"%d chunk offsets for a %dx%dx%d grid of %d chunks",
			len(offsets), layout.Planes, layout.AcrossY, layout.AcrossX, want)
	}
	if len(counts) != len(offsets) {
		return nil, formatErr(d.index, countTag,
			"%d byte counts for %d chunk offsets", len(counts), len(offsets))
	}
	if allZero(offsets) || allZero(counts) {
		return nil, unsupportedErr(d.index, offsetTag,
			"directory has no stored chunk data (all offsets or byte counts are zero)")
	}

	chunks := make([]ChunkRef, 0, want)
	size := src.Size()
	i := 0
	for p := 0; p < layout.Planes; p++ {
		for r := uint64(0); r < layout.AcrossY; r++ {
			for c := uint64(0); c < layout.AcrossX; c++ {
				ref := ChunkRef{
					Index:  GridIndex{Plane: p, Row: int(r), Col: int(c)},
					Offset: offsets[i],
					Length: counts[i],
				}
				if ref.Offset+ref.Length < ref.Offset || ref.Offset+ref.Length > size {
					return nil, rangeErr("chunk "+ref.Index.String(), ref.Offset, ref.Length, size)
				}
				chunks = append(chunks, ref)
				i++
			}
		}
	}

	attrs := extractAttributes(d)
	// GDAL records nested grid structures (geolocation arrays) in its
	// metadata; their chunks are not addressable through this directory's
	// grid.
	if _, ok := attrs["number_of_nested_grids"]; ok {
		return nil, unsupportedErr(d.index, TagGDALMetadata,
			"GDAL metadata announces nested grids")
	}
	if identity != "" {
		attrs["etag"] = identity
	}
	return &Manifest{
		ifdIndex: d.index,
		identity: identity,
		little:   hdr.order == binary.LittleEndian,
		dims:     dims,
		layout:   layout,
		chain:    chain,
		dataType: dataType,
		chunks:   chunks,
		attrs:    attrs,
	}, nil
}

func allZero(vs []uint64) bool {
	for _, v := range vs {
		if v != 0 {
			return false
		}
	}
	return true
}
