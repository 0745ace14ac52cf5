// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package virtualtiff

import (
	"errors"
	"testing"
)

func TestResolveDataType(t *testing.T) {
	tests := []struct {
		name   string
		format []uint64
		bits   []uint64
		want   string
	}{
		{"uint8", []uint64{SampleFormatUint}, []uint64{8}, "uint8"},
		{"uint16", []uint64{SampleFormatUint}, []uint64{16}, "uint16"},
		{"int32", []uint64{SampleFormatInt}, []uint64{32}, "int32"},
		{"float16", []uint64{SampleFormatFloat}, []uint64{16}, "float16"},
		{"float32", []uint64{SampleFormatFloat}, []uint64{32}, "float32"},
		{"float64", []uint64{SampleFormatFloat}, []uint64{64}, "float64"},
		{"rgb uint8", []uint64{1, 1, 1}, []uint64{8, 8, 8}, "uint8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dims := Dimensions{SampleFormat: tt.format, BitsPerSample: tt.bits}
			got, err := resolveDataType(0, dims)
			if err != nil {
				t.Fatalf("resolveDataType: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveDataTypeRejects(t *testing.T) {
	tests := []struct {
		name   string
		format []uint64
		bits   []uint64
	}{
		{"mixed formats", []uint64{SampleFormatUint, SampleFormatFloat}, []uint64{32, 32}},
		{"mixed depths", []uint64{1, 1}, []uint64{8, 16}},
		{"1-bit bilevel", []uint64{SampleFormatUint}, []uint64{1}},
		{"12-bit packed", []uint64{SampleFormatUint}, []uint64{12}},
		{"float8", []uint64{SampleFormatFloat}, []uint64{8}},
		{"complex", []uint64{SampleFormatComplexFloat}, []uint64{64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dims := Dimensions{SampleFormat: tt.format, BitsPerSample: tt.bits}
			_, err := resolveDataType(0, dims)
			if !errors.Is(err, ErrUnsupported) {
				t.Fatalf("got %v, want ErrUnsupported", err)
			}
		})
	}
}
