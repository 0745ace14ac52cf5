// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package virtualtiff

import (
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func TestParseHeaderRejectsGarbage(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte{'I', 'I', 42}},
		{"bad order mark", []byte{'X', 'X', 42, 0, 8, 0, 0, 0}},
		{"bad version", []byte{'I', 'I', 41, 0, 8, 0, 0, 0}},
		{"first IFD inside header", []byte{'I', 'I', 42, 0, 4, 0, 0, 0}},
		{"first IFD past EOF", []byte{'I', 'I', 42, 0, 0xff, 0, 0, 0}},
		{"bigtiff bad offset size", []byte{'I', 'I', 43, 0, 4, 0, 0, 0, 16, 0, 0, 0, 0, 0, 0, 0}},
		{"bigtiff bad reserved", []byte{'I', 'I', 43, 0, 8, 0, 1, 0, 16, 0, 0, 0, 0, 0, 0, 0}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseDocument(context.Background(), BytesSource(c.data))
			if !errors.Is(err, ErrFormat) {
				t.Errorf("got %v, want ErrFormat", err)
			}
		})
	}
}

func TestChainWalkThreeIFDs(t *testing.T) {
	b := newBuilder(binary.LittleEndian, false)
	offA := b.addIFD(b.longs(TagImageWidth, 100))
	offB := b.addIFD(b.longs(TagImageWidth, 50))
	offC := b.addIFD(b.longs(TagImageWidth, 25))

	doc, err := ParseDocument(context.Background(), b.source())
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if doc.Len() != 3 {
		t.Fatalf("Len = %d, want 3", doc.Len())
	}
	for i, want := range []struct {
		offset uint64
		width  uint64
	}{{offA, 100}, {offB, 50}, {offC, 25}} {
		d, err := doc.IFD(i)
		if err != nil {
			t.Fatalf("IFD(%d): %v", i, err)
		}
		if d.Offset() != want.offset {
			t.Errorf("IFD %d offset = %d, want %d", i, d.Offset(), want.offset)
		}
		if w, _, _ := d.uintTag(TagImageWidth); w != want.width {
			t.Errorf("IFD %d width = %d, want %d", i, w, want.width)
		}
		if d.Index() != i {
			t.Errorf("IFD %d Index() = %d", i, d.Index())
		}
	}
}

func TestChainCycleDetected(t *testing.T) {
	b := newBuilder(binary.BigEndian, false)
	b.addIFD(b.longs(TagImageWidth, 100))
	b.addIFD(b.longs(TagImageWidth, 50))
	// Point the second directory's next-IFD field back at the first.
	b.putUint(b.nextPos[1], b.offsetWidth(), b.ifdOffsets[0])

	_, err := ParseDocument(context.Background(), b.source())
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("cycle: got %v, want ErrFormat", err)
	}
	var ferr *FormatError
	if !errors.As(err, &ferr) || ferr.Offset != b.ifdOffsets[0] {
		t.Errorf("cycle error should name the revisited offset: %v", err)
	}
}

func TestChainNextOffsetOutOfBounds(t *testing.T) {
	b := newBuilder(binary.LittleEndian, false)
	b.addIFD(b.longs(TagImageWidth, 100))
	b.putUint(b.nextPos[0], b.offsetWidth(), uint64(len(b.bytes()))+100)

	_, err := ParseDocument(context.Background(), b.source())
	if err == nil || (!errors.Is(err, ErrFormat) && !errors.Is(err, ErrRange)) {
		t.Fatalf("next offset past EOF: got %v", err)
	}
}

func TestDuplicateTagRejected(t *testing.T) {
	b := newBuilder(binary.LittleEndian, false)
	b.addIFD(
		b.longs(TagImageWidth, 100),
		b.longs(TagImageWidth, 200),
	)
	_, err := ParseDocument(context.Background(), b.source())
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("duplicate tag: got %v, want ErrFormat", err)
	}
}

func TestIFDIndexOutOfRange(t *testing.T) {
	b := newBuilder(binary.LittleEndian, false)
	b.addIFD(b.longs(TagImageWidth, 100))
	doc, err := ParseDocument(context.Background(), b.source())
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if _, err := doc.IFD(1); !errors.Is(err, ErrRange) {
		t.Errorf("IFD(1): got %v, want ErrRange", err)
	}
	if _, err := doc.IFD(-1); !errors.Is(err, ErrRange) {
		t.Errorf("IFD(-1): got %v, want ErrRange", err)
	}

	// The message must cite the signed index, not its uint64 bit pattern.
	_, err = doc.IFD(-1)
	if !strings.Contains(err.Error(), "-1") || strings.Contains(err.Error(), "18446744073709551615") {
		t.Errorf("IFD(-1) message = %q, want the signed index", err.Error())
	}
}

func TestSubIFDOffsetsRecorded(t *testing.T) {
	b := newBuilder(binary.LittleEndian, false)
	b.addIFD(append(b.baselineGray(4, 4), b.longs(TagSubIFDs, 4096, 8192))...)

	doc, err := ParseDocument(context.Background(), b.source())
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if doc.Len() != 1 {
		t.Fatalf("sub-IFDs must not join the document: Len = %d", doc.Len())
	}
	subs := doc.SubIFDOffsets()
	if len(subs) != 2 || subs[0] != 4096 || subs[1] != 8192 {
		t.Errorf("SubIFDOffsets = %v, want [4096 8192]", subs)
	}
}

func TestEntryCountCircuitBreaker(t *testing.T) {
	// A BigTIFF directory claiming 2^40 entries must fail fast instead of
	// attempting a giant read.
	data := []byte{'I', 'I', 43, 0, 8, 0, 0, 0, 16, 0, 0, 0, 0, 0, 0, 0}
	count := make([]byte, 8)
	binary.LittleEndian.PutUint64(count, 1<<40)
	data = append(data, count...)

	_, err := ParseDocument(context.Background(), BytesSource(data))
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("huge entry count: got %v, want ErrFormat", err)
	}
}
