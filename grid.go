// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package virtualtiff

// Dimensions describes the pixel geometry and sample layout of one IFD.
type Dimensions struct {
	Width           uint64
	Height          uint64
	SamplesPerPixel int
	BitsPerSample   []uint64 // per sample
	SampleFormat    []uint64 // per sample, SampleFormat* values
	Photometric     uint64
	Planar          uint64 // PlanarChunky or PlanarSeparate
}

// LayoutMode distinguishes the two TIFF chunking schemes.
type LayoutMode int

const (
	// StripLayout chunks the image into full-width horizontal bands.
	StripLayout LayoutMode = iota
	// TileLayout chunks the image into fixed-size rectangles.
	TileLayout
)

func (m LayoutMode) String() string {
	if m == TileLayout {
		return "tile"
	}
	return "strip"
}

// ChunkLayout is the chunk addressing grid derived from an IFD's layout
// tags: the fixed chunk geometry, the chunk counts per axis, and the number
// of planes (1 for chunky interleave, samplesPerPixel for planar).
//
// Edge chunks are full-size: a tile overhanging the right or bottom image
// edge still occupies ChunkWidth x ChunkHeight samples on disk, and
// cropping is the decoder's business, not the manifest's.
type ChunkLayout struct {
	Mode        LayoutMode
	ChunkWidth  uint64
	ChunkHeight uint64
	AcrossX     uint64
	AcrossY     uint64
	Planes      int
}

// chunkCount is the expected length of the offset and byte-count arrays.
func (l ChunkLayout) chunkCount() uint64 {
	return l.AcrossX * l.AcrossY * uint64(l.Planes)
}

// resolveDimensions reads the dimension and sample-layout tags of an IFD,
// applying the TIFF defaults for absent optional tags. Presence of the tags
// required for raster interpretation is enforced here, not at IFD parse
// time, so metadata-only directories can still be inspected.
func resolveDimensions(d *IFD) (Dimensions, error) {
	var dims Dimensions

	width, ok, err := d.uintTag(TagImageWidth)
	if err != nil {
		return dims, err
	}
	if !ok || width == 0 {
		return dims, formatErr(d.index, TagImageWidth, "missing or zero ImageWidth")
	}
	height, ok, err := d.uintTag(TagImageLength)
	if err != nil {
		return dims, err
	}
	if !ok || height == 0 {
		return dims, formatErr(d.index, TagImageLength, "missing or zero ImageLength")
	}
	dims.Width, dims.Height = width, height

	if dims.Photometric, ok, err = d.uintTag(TagPhotometricInterpretation); err != nil {
		return dims, err
	} else if !ok {
		return dims, formatErr(d.index, TagPhotometricInterpretation, "missing PhotometricInterpretation")
	}
	switch dims.Photometric {
	case PhotometricYCbCr, PhotometricCIELab:
		return dims, unsupportedErr(d.index, TagPhotometricInterpretation,
			"photometric interpretation %d", dims.Photometric)
	}

	spp, ok, err := d.uintTag(TagSamplesPerPixel)
	if err != nil {
		return dims, err
	}
	if !ok {
		spp = 1
	}
	if spp == 0 || spp > 1024 {
		return dims, formatErr(d.index, TagSamplesPerPixel, "implausible SamplesPerPixel %d", spp)
	}
	dims.SamplesPerPixel = int(spp)

	if dims.BitsPerSample, err = d.uintsTag(TagBitsPerSample); err != nil {
		return dims, err
	}
	if len(dims.BitsPerSample) == 0 {
		dims.BitsPerSample = repeatUint(1, dims.SamplesPerPixel)
	}
	if dims.SampleFormat, err = d.uintsTag(TagSampleFormat); err != nil {
		return dims, err
	}
	if len(dims.SampleFormat) == 0 {
		dims.SampleFormat = repeatUint(SampleFormatUint, dims.SamplesPerPixel)
	}

	if dims.Planar, ok, err = d.uintTag(TagPlanarConfiguration); err != nil {
		return dims, err
	} else if !ok {
		dims.Planar = PlanarChunky
	}
	if dims.Planar != PlanarChunky && dims.Planar != PlanarSeparate {
		return dims, unsupportedErr(d.index, TagPlanarConfiguration,
			"planar configuration %d", dims.Planar)
	}
	return dims, nil
}

// resolveLayout computes the chunk addressing grid. The tile tags take
// precedence when both tile and strip tags are present; the standard leaves
// that file undefined, and honoring the tile grid at least never misreads a
// conforming file of either kind.
func resolveLayout(d *IFD, dims Dimensions) (ChunkLayout, error) {
	layout := ChunkLayout{Planes: 1}
	if dims.Planar == PlanarSeparate {
		layout.Planes = dims.SamplesPerPixel
	}

	if d.Has(TagTileWidth) || d.Has(TagTileOffsets) {
		tw, ok, err := d.uintTag(TagTileWidth)
		if err != nil {
			return layout, err
		}
		if !ok || tw == 0 {
			return layout, formatErr(d.index, TagTileWidth, "missing or zero TileWidth")
		}
		th, ok, err := d.uintTag(TagTileLength)
		if err != nil {
			return layout, err
		}
		if !ok || th == 0 {
			return layout, formatErr(d.index, TagTileLength, "missing or zero TileLength")
		}
		layout.Mode = TileLayout
		layout.ChunkWidth = tw
		layout.ChunkHeight = th
		layout.AcrossX = ceilDiv(dims.Width, tw)
		layout.AcrossY = ceilDiv(dims.Height, th)
		return layout, nil
	}

	if !d.Has(TagStripOffsets) {
		return layout, formatErr(d.index, TagStripOffsets,
			"directory has neither tile nor strip offsets")
	}
	rows, ok, err := d.uintTag(TagRowsPerStrip)
	if err != nil {
		return layout, err
	}
	// RowsPerStrip defaults to "all rows in one strip"; a declared value
	// larger than the image is clamped the same way.
	if !ok || rows > dims.Height {
		rows = dims.Height
	}
	if rows == 0 {
		return layout, formatErr(d.index, TagRowsPerStrip, "zero RowsPerStrip")
	}
	if dims.Height%rows != 0 {
		return layout, unsupportedErr(d.index, TagRowsPerStrip,
			"image height %d is not divisible by RowsPerStrip %d; partial strips cannot be addressed as a regular chunk grid",
			dims.Height, rows)
	}
	layout.Mode = StripLayout
	layout.ChunkWidth = dims.Width
	layout.ChunkHeight = rows
	layout.AcrossX = 1
	layout.AcrossY = dims.Height / rows
	return layout, nil
}

func ceilDiv(a, b uint64) uint64 { return (a + b - 1) / b }

func repeatUint(v uint64, n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
