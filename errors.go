// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package virtualtiff

import (
	"errors"
	"fmt"
)

// Sentinel errors for the four failure classes. Every error returned by this
// package matches exactly one of them under errors.Is, so callers can branch
// on the class without inspecting messages.
var (
	// ErrFormat indicates the file violates the TIFF structure rules:
	// bad magic or version, duplicate tag ids, mismatched offset and
	// byte-count arrays, or a cyclic directory chain.
	ErrFormat = errors.New("malformed TIFF structure")

	// ErrUnsupported indicates a recognized but unimplemented structure,
	// such as an unknown compression id or a strip height that does not
	// divide the image height. Other directories of the same file remain
	// usable.
	ErrUnsupported = errors.New("unsupported TIFF feature")

	// ErrRange indicates offset or length arithmetic that leaves the file
	// or buffer bounds, or a directory index past the end of the chain.
	ErrRange = errors.New("out of range")

	// ErrIO wraps a byte source read failure. The parser never retries;
	// the underlying error is available through errors.Unwrap.
	ErrIO = errors.New("byte source read failed")
)

// FormatError reports a structural violation. IFD is the index of the
// affected directory, or -1 when the failure precedes directory parsing.
// Tag is the offending tag id when one is known, 0 otherwise.
type FormatError struct {
	IFD    int
	Tag    TagID
	Offset uint64
	Reason string
}

func (e *FormatError) Error() string {
	switch {
	case e.Tag != 0 && e.IFD >= 0:
		return fmt.Sprintf("tiff: IFD %d tag %d: %s", e.IFD, e.Tag, e.Reason)
	case e.IFD >= 0:
		return fmt.Sprintf("tiff: IFD %d: %s", e.IFD, e.Reason)
	case e.Offset != 0:
		return fmt.Sprintf("tiff: at offset %d: %s", e.Offset, e.Reason)
	}
	return "tiff: " + e.Reason
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// UnsupportedError reports a structure the parser recognizes but does not
// implement. The message always names the feature (compression id, tag,
// photometric value) so the failure is diagnosable without re-parsing.
type UnsupportedError struct {
	IFD    int
	Tag    TagID
	Reason string
}

func (e *UnsupportedError) Error() string {
	if e.IFD >= 0 {
		return fmt.Sprintf("tiff: IFD %d: unsupported: %s", e.IFD, e.Reason)
	}
	return "tiff: unsupported: " + e.Reason
}

func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }

// RangeError reports offset arithmetic that escapes the addressable bounds.
type RangeError struct {
	Offset uint64
	Length uint64
	Size   uint64
	What   string
}

func (e *RangeError) Error() string {
	// Length 0 marks errors with no byte range to cite, such as a bad
	// directory index; What already carries the full description.
	if e.Length == 0 {
		return "tiff: " + e.What
	}
	return fmt.Sprintf("tiff: %s: range [%d, %d) exceeds size %d",
		e.What, e.Offset, e.Offset+e.Length, e.Size)
}

func (e *RangeError) Is(target error) bool { return target == ErrRange }

func formatErr(ifd int, tag TagID, format string, args ...interface{}) error {
	return &FormatError{IFD: ifd, Tag: tag, Reason: fmt.Sprintf(format, args...)}
}

func unsupportedErr(ifd int, tag TagID, format string, args ...interface{}) error {
	return &UnsupportedError{IFD: ifd, Tag: tag, Reason: fmt.Sprintf(format, args...)}
}

func rangeErr(what string, offset, length, size uint64) error {
	return &RangeError{What: what, Offset: offset, Length: length, Size: size}
}

func ioErr(offset, length uint64, err error) error {
	return fmt.Errorf("tiff: read [%d, %d): %w (%w)", offset, offset+length, ErrIO, err)
}
