// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package virtualtiff

import (
	"encoding/json"
	"fmt"
)

// CodecDescriptor is one codec in the array-store vocabulary: a name plus a
// free-form configuration, serialized the way zarr v3 spells codecs.
type CodecDescriptor struct {
	Name          string                 `json:"name"`
	Configuration map[string]interface{} `json:"configuration,omitempty"`
}

// ArrayMetadata is the manifest expressed as chunked-array metadata: the
// logical shape (a leading band dimension when samplesPerPixel > 1), the
// chunk shape, the scalar type, and the codec list in encode order, with
// array-to-array stages first and compression last. A decoder runs the list
// backwards.
type ArrayMetadata struct {
	Shape          []uint64
	DataType       string
	ChunkShape     []uint64
	DimensionNames []string
	FillValue      interface{}
	Codecs         []CodecDescriptor
	Attributes     map[string]interface{}
}

// ArrayMetadata projects the manifest into the array-store vocabulary.
func (m *Manifest) ArrayMetadata() ArrayMetadata {
	dims := m.dims
	layout := m.layout

	shape := []uint64{dims.Height, dims.Width}
	chunkShape := []uint64{layout.ChunkHeight, layout.ChunkWidth}
	names := []string{"y", "x"}
	if dims.SamplesPerPixel > 1 {
		shape = append([]uint64{uint64(dims.SamplesPerPixel)}, shape...)
		names = append([]string{"band"}, names...)
		if dims.Planar == PlanarSeparate {
			// Planar files store one band per chunk.
			chunkShape = append([]uint64{1}, chunkShape...)
		} else {
			chunkShape = append([]uint64{uint64(dims.SamplesPerPixel)}, chunkShape...)
		}
	}

	endian := "big"
	if m.little {
		endian = "little"
	}
	var codecs []CodecDescriptor
	for _, stage := range m.chain {
		if stage.Kind == StagePredictor {
			codecs = append(codecs, CodecDescriptor{
				Name:          stage.Name,
				Configuration: copyParams(stage.Params),
			})
		}
	}
	if dims.SamplesPerPixel > 1 && dims.Planar == PlanarChunky {
		// Chunky interleave stores samples pixel by pixel; the store
		// layer needs a transpose to band-major on top of the byte
		// decode.
		order := make([]int, len(shape))
		order[0] = 0
		for i := 1; i < len(order); i++ {
			order[i] = len(order) - i
		}
		codecs = append(codecs,
			CodecDescriptor{Name: "transpose", Configuration: map[string]interface{}{"order": order}},
			CodecDescriptor{Name: "chunky", Configuration: map[string]interface{}{"endian": endian}},
		)
	} else {
		codecs = append(codecs, CodecDescriptor{
			Name:          "bytes",
			Configuration: map[string]interface{}{"endian": endian},
		})
	}
	for _, stage := range m.chain {
		if stage.Kind == StageInflate {
			codecs = append(codecs, CodecDescriptor{
				Name:          stage.Name,
				Configuration: copyParams(stage.Params),
			})
		}
	}

	return ArrayMetadata{
		Shape:          shape,
		DataType:       m.dataType,
		ChunkShape:     chunkShape,
		DimensionNames: names,
		FillValue:      0,
		Codecs:         codecs,
		Attributes:     m.Attributes(),
	}
}

// MarshalJSON renders the metadata as a zarr-v3-flavoured array document.
func (a ArrayMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"zarr_format": 3,
		"node_type":   "array",
		"shape":       a.Shape,
		"data_type":   a.DataType,
		"chunk_grid": map[string]interface{}{
			"name":          "regular",
			"configuration": map[string]interface{}{"chunk_shape": a.ChunkShape},
		},
		"chunk_key_encoding": map[string]interface{}{
			"name":          "default",
			"configuration": map[string]interface{}{"separator": "."},
		},
		"fill_value":      a.FillValue,
		"codecs":          a.Codecs,
		"dimension_names": a.DimensionNames,
		"attributes":      a.Attributes,
	})
}

// ChunkKey returns the store key of a chunk: dot-separated grid coordinates
// matching the array metadata's dimension order. Files with a band
// dimension use three coordinates, single-band files two.
func (m *Manifest) ChunkKey(ref ChunkRef) string {
	if m.dims.SamplesPerPixel > 1 {
		return fmt.Sprintf("%d.%d.%d", ref.Index.Plane, ref.Index.Row, ref.Index.Col)
	}
	return fmt.Sprintf("%d.%d", ref.Index.Row, ref.Index.Col)
}

type chunkEntry struct {
	Offset uint64 `json:"offset"`
	Length uint64 `json:"length"`
}

// MarshalJSON renders the whole manifest: the array metadata document plus
// the chunk-key to byte-range table and the provenance token.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	chunks := make(map[string]chunkEntry, len(m.chunks))
	for _, ref := range m.chunks {
		chunks[m.ChunkKey(ref)] = chunkEntry{Offset: ref.Offset, Length: ref.Length}
	}
	doc := map[string]interface{}{
		"metadata": m.ArrayMetadata(),
		"chunks":   chunks,
	}
	if m.identity != "" {
		doc["etag"] = m.identity
	}
	return json.Marshal(doc)
}

func copyParams(params map[string]interface{}) map[string]interface{} {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
