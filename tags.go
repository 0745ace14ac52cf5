// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package virtualtiff

// TagID identifies a TIFF directory entry.
type TagID uint16

// Baseline and extension tags the parser interprets. Everything else is
// carried through untouched and, where recognized below, surfaced in the
// manifest attributes.
const (
	TagNewSubfileType            TagID = 254
	TagImageWidth                TagID = 256
	TagImageLength               TagID = 257
	TagBitsPerSample             TagID = 258
	TagCompression               TagID = 259
	TagPhotometricInterpretation TagID = 262
	TagImageDescription          TagID = 270
	TagStripOffsets              TagID = 273
	TagSamplesPerPixel           TagID = 277
	TagRowsPerStrip              TagID = 278
	TagStripByteCounts           TagID = 279
	TagXResolution               TagID = 282
	TagYResolution               TagID = 283
	TagPlanarConfiguration       TagID = 284
	TagResolutionUnit            TagID = 296
	TagSoftware                  TagID = 305
	TagDateTime                  TagID = 306
	TagPredictor                 TagID = 317
	TagTileWidth                 TagID = 322
	TagTileLength                TagID = 323
	TagTileOffsets               TagID = 324
	TagTileByteCounts            TagID = 325
	TagSubIFDs                   TagID = 330
	TagSampleFormat              TagID = 339
	TagJPEGTables                TagID = 347

	// GeoTIFF tags, extracted verbatim into attributes. No CRS
	// interpretation happens here.
	TagModelPixelScale     TagID = 33550
	TagModelTiepoint       TagID = 33922
	TagModelTransformation TagID = 34264
	TagGeoKeyDirectory     TagID = 34735
	TagGeoDoubleParams     TagID = 34736
	TagGeoAsciiParams      TagID = 34737

	// GDAL private tags.
	TagGDALMetadata TagID = 42112
	TagGDALNoData   TagID = 42113
)

// DataType is the wire type of a directory entry value.
type DataType uint16

const (
	TypeByte      DataType = 1
	TypeASCII     DataType = 2
	TypeShort     DataType = 3
	TypeLong      DataType = 4
	TypeRational  DataType = 5
	TypeSByte     DataType = 6
	TypeUndefined DataType = 7
	TypeSShort    DataType = 8
	TypeSLong     DataType = 9
	TypeSRational DataType = 10
	TypeFloat     DataType = 11
	TypeDouble    DataType = 12
	TypeIFD       DataType = 13
	TypeLong8     DataType = 16
	TypeSLong8    DataType = 17
	TypeIFD8      DataType = 18
)

var typeSizes = map[DataType]uint64{
	TypeByte:      1,
	TypeASCII:     1,
	TypeShort:     2,
	TypeLong:      4,
	TypeRational:  8,
	TypeSByte:     1,
	TypeUndefined: 1,
	TypeSShort:    2,
	TypeSLong:     4,
	TypeSRational: 8,
	TypeFloat:     4,
	TypeDouble:    8,
	TypeIFD:       4,
	TypeLong8:     8,
	TypeSLong8:    8,
	TypeIFD8:      8,
}

// Size returns the byte width of one element of the type, or 0 when the
// type code is not one the TIFF specifications define.
func (t DataType) Size() uint64 { return typeSizes[t] }

func (t DataType) String() string {
	switch t {
	case TypeByte:
		return "BYTE"
	case TypeASCII:
		return "ASCII"
	case TypeShort:
		return "SHORT"
	case TypeLong:
		return "LONG"
	case TypeRational:
		return "RATIONAL"
	case TypeSByte:
		return "SBYTE"
	case TypeUndefined:
		return "UNDEFINED"
	case TypeSShort:
		return "SSHORT"
	case TypeSLong:
		return "SLONG"
	case TypeSRational:
		return "SRATIONAL"
	case TypeFloat:
		return "FLOAT"
	case TypeDouble:
		return "DOUBLE"
	case TypeIFD:
		return "IFD"
	case TypeLong8:
		return "LONG8"
	case TypeSLong8:
		return "SLONG8"
	case TypeIFD8:
		return "IFD8"
	}
	return "UNKNOWN"
}

// Compression tag values the default codec table knows about.
const (
	CompressionNone          = 1
	CompressionLZW           = 5
	CompressionJPEG          = 7
	CompressionDeflate       = 8
	CompressionPackBits      = 32773
	CompressionDeflateLegacy = 32946
	CompressionLERC          = 34887
	CompressionZstd          = 50000
	CompressionWebP          = 50001
)

// Predictor tag values.
const (
	PredictorNone       = 1
	PredictorHorizontal = 2
	PredictorFloat      = 3
)

// PlanarConfiguration tag values.
const (
	PlanarChunky   = 1
	PlanarSeparate = 2
)

// SampleFormat tag values.
const (
	SampleFormatUint         = 1
	SampleFormatInt          = 2
	SampleFormatFloat        = 3
	SampleFormatComplexInt   = 5
	SampleFormatComplexFloat = 6
)

// PhotometricInterpretation values that matter to the parser: subsampled or
// lab color spaces change the byte layout in ways a byte-range manifest
// cannot express, so they are rejected.
const (
	PhotometricYCbCr  = 6
	PhotometricCIELab = 8
)
