// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package virtualtiff

// sampleTypeNames maps (SampleFormat, BitsPerSample) to the scalar type name
// used in the manifest's array metadata.
var sampleTypeNames = map[[2]uint64]string{
	{SampleFormatUint, 8}:   "uint8",
	{SampleFormatUint, 16}:  "uint16",
	{SampleFormatUint, 32}:  "uint32",
	{SampleFormatUint, 64}:  "uint64",
	{SampleFormatInt, 8}:    "int8",
	{SampleFormatInt, 16}:   "int16",
	{SampleFormatInt, 32}:   "int32",
	{SampleFormatInt, 64}:   "int64",
	{SampleFormatFloat, 16}: "float16",
	{SampleFormatFloat, 32}: "float32",
	{SampleFormatFloat, 64}: "float64",
}

// resolveDataType derives the single scalar type shared by every sample of
// an IFD. A chunked array has exactly one element type, so per-sample
// variation in format or depth cannot be represented and is rejected.
func resolveDataType(ifdIndex int, dims Dimensions) (string, error) {
	for _, f := range dims.SampleFormat {
		if f != dims.SampleFormat[0] {
			return "", unsupportedErr(ifdIndex, TagSampleFormat,
				"mixed sample formats %v in one directory", dims.SampleFormat)
		}
	}
	for _, b := range dims.BitsPerSample {
		if b != dims.BitsPerSample[0] {
			return "", unsupportedErr(ifdIndex, TagBitsPerSample,
				"mixed bit depths %v in one directory", dims.BitsPerSample)
		}
	}
	name, ok := sampleTypeNames[[2]uint64{dims.SampleFormat[0], dims.BitsPerSample[0]}]
	if !ok {
		return "", unsupportedErr(ifdIndex, TagSampleFormat,
			"no scalar type for sample format %d with %d bits per sample",
			dims.SampleFormat[0], dims.BitsPerSample[0])
	}
	return name, nil
}
