// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package virtualtiff

// StageKind classifies a decode stage. The parser only ever names stages;
// executing them is the codec plugin's job.
type StageKind string

const (
	// StageInflate reverses the compression applied to raw chunk bytes.
	StageInflate StageKind = "compression-inflate"
	// StagePredictor reverses the predictor transform. It always runs on
	// already-inflated bytes; the format fixes that order.
	StagePredictor StageKind = "predictor-reversal"
)

// Stage is one step of a chunk's decode pipeline: a kind, the concrete
// algorithm name, and whatever parameters the external executor needs.
type Stage struct {
	Kind   StageKind
	Name   string
	Params map[string]interface{}
}

// CodecChain is the ordered decode pipeline shared by every chunk of one
// IFD, in execution order: raw chunk bytes through the inflate stage, then
// through the predictor stage, then typed samples. An uncompressed,
// unpredicted image has an empty chain.
type CodecChain []Stage

// CodecTable maps Compression tag ids to inflate stage names. It is an
// explicit capability handed to the parser, not a global registry, so
// callers can extend or restrict the recognized set per parse.
type CodecTable map[uint64]string

// DefaultCodecTable returns the compression ids the package knows stage
// names for. The table maps ids only; whether a downstream executor can
// actually run a stage is its own concern.
func DefaultCodecTable() CodecTable {
	return CodecTable{
		CompressionNone:          "",
		CompressionLZW:           "lzw",
		CompressionJPEG:          "jpeg",
		CompressionDeflate:       "deflate",
		CompressionDeflateLegacy: "deflate",
		CompressionPackBits:      "packbits",
		CompressionLERC:          "lerc",
		CompressionZstd:          "zstd",
		CompressionWebP:          "webp",
	}
}

// resolveCodecChain maps the Compression, Predictor and sample layout tags
// of an IFD to its decode pipeline.
func resolveCodecChain(d *IFD, dims Dimensions, layout ChunkLayout, table CodecTable) (CodecChain, error) {
	compression, ok, err := d.uintTag(TagCompression)
	if err != nil {
		return nil, err
	}
	if !ok {
		compression = CompressionNone
	}
	name, known := table[compression]
	if !known {
		return nil, unsupportedErr(d.index, TagCompression,
			"compression id %d is not in the codec table", compression)
	}

	var chain CodecChain
	if compression != CompressionNone {
		params := map[string]interface{}{}
		switch compression {
		case CompressionJPEG:
			// Abbreviated JPEG streams share quantization tables
			// stored once in the directory; a per-chunk byte range
			// cannot be decoded without splicing them back in.
			if d.Has(TagJPEGTables) {
				return nil, unsupportedErr(d.index, TagJPEGTables,
					"JPEG compression with shared JPEGTables")
			}
		case CompressionZstd:
			// GDAL exposes the zstd level only through a libtiff
			// pseudo-tag (65564), which lies outside the 16-bit tag
			// space and is never written to file bytes. The stage
			// carries GDAL's default.
			params["level"] = uint64(9)
		}
		chain = append(chain, Stage{Kind: StageInflate, Name: name, Params: params})
	}

	predictor, ok, err := d.uintTag(TagPredictor)
	if err != nil {
		return nil, err
	}
	if !ok {
		predictor = PredictorNone
	}
	switch predictor {
	case PredictorNone:
	case PredictorHorizontal:
		chain = append(chain, Stage{
			Kind: StagePredictor,
			Name: "horizontal-delta",
			Params: map[string]interface{}{
				"bitsPerSample":   dims.BitsPerSample[0],
				"sampleFormat":    dims.SampleFormat[0],
				"samplesPerPixel": dims.SamplesPerPixel,
			},
		})
	case PredictorFloat:
		chain = append(chain, Stage{
			Kind: StagePredictor,
			Name: "float-delta",
			Params: map[string]interface{}{
				"bitsPerSample": dims.BitsPerSample[0],
				"chunkWidth":    layout.ChunkWidth,
				"chunkHeight":   layout.ChunkHeight,
			},
		})
	default:
		return nil, unsupportedErr(d.index, TagPredictor, "predictor %d", predictor)
	}
	return chain, nil
}
