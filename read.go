// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package virtualtiff turns the internal metadata of a TIFF, BigTIFF or
// GeoTIFF file into a manifest of byte ranges, so the file can be addressed
// as a native chunked array store without copying or decoding pixel data.
//
// # Overview
//
// A TIFF file is a chain of Image File Directories (IFDs), each describing
// one image plane or resolution level through tagged metadata entries. This
// package parses that structure (either byte order, classic 32-bit or
// BigTIFF 64-bit offsets, strip or tile chunking, chunky or planar
// interleave) and produces, per IFD, an immutable Manifest: the chunk
// addressing grid, one byte range per chunk, and the decode pipeline
// (compression, then predictor) each chunk requires.
//
// The package deliberately ends at naming. It never decompresses chunk
// bytes, never interprets georeferencing beyond raw tag extraction, and
// performs no I/O beyond range reads through the injected ByteSource.
// Executing the named codec stages is an external capability's job, as is
// fetching and caching the chunk bytes themselves.
//
// Parsing is a pure computation: a Manifest is a function of (file bytes,
// IFD index), byte source reads are idempotent range reads that may be
// issued out of order, and any number of IFDs or files may be parsed
// concurrently without coordination.
package virtualtiff

import (
	"context"
	"sync"
)

// Parser builds chunk manifests for the IFDs of one byte source. The IFD
// chain is walked once and cached, as is each built manifest; repeated
// Manifest calls for the same directory return the same immutable value.
// A Parser is safe for concurrent use.
type Parser struct {
	src      ByteSource
	table    CodecTable
	identity string

	mu        sync.Mutex
	doc       *Document
	manifests map[int]*Manifest
}

// Option configures a Parser.
type Option func(*Parser)

// WithCodecTable replaces the default compression-id table. Handing in a
// restricted table makes the parser reject manifests whose chunks the
// caller's executor could not decode anyway.
func WithCodecTable(table CodecTable) Option {
	return func(p *Parser) { p.table = table }
}

// WithFileIdentity attaches a provenance token (typically an object-store
// etag) that every manifest carries in its attributes, so a consumer can
// detect that its byte ranges refer to a stale generation of the file.
func WithFileIdentity(identity string) Option {
	return func(p *Parser) { p.identity = identity }
}

// NewParser returns a Parser over src.
func NewParser(src ByteSource, opts ...Option) *Parser {
	p := &Parser{src: src, table: DefaultCodecTable()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Document returns the file's parsed IFD chain, walking it on first use.
func (p *Parser) Document(ctx context.Context) (*Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc == nil {
		doc, err := ParseDocument(ctx, p.src)
		if err != nil {
			return nil, err
		}
		p.doc = doc
	}
	return p.doc, nil
}

// Manifest builds the chunk manifest for the IFD at ifdIndex. An index past
// the end of the chain fails with ErrRange; a directory the parser
// recognizes but cannot address as a regular chunk grid fails with
// ErrUnsupported and leaves other directories unaffected.
func (p *Parser) Manifest(ctx context.Context, ifdIndex int) (*Manifest, error) {
	doc, err := p.Document(ctx)
	if err != nil {
		return nil, err
	}
	d, err := doc.IFD(ifdIndex)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	m, ok := p.manifests[ifdIndex]
	p.mu.Unlock()
	if ok {
		return m, nil
	}

	m, err = buildManifest(d, p.src, doc.hdr, p.table, p.identity)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	if p.manifests == nil {
		p.manifests = make(map[int]*Manifest)
	}
	p.manifests[ifdIndex] = m
	p.mu.Unlock()
	return m, nil
}

// Manifests builds one manifest per IFD in chain order. Unlike Manifest it
// fails on the first directory that cannot be manifested; parse selectively
// when a file mixes supported and unsupported directories.
func (p *Parser) Manifests(ctx context.Context) ([]*Manifest, error) {
	doc, err := p.Document(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Manifest, doc.Len())
	for i := range out {
		if out[i], err = p.Manifest(ctx, i); err != nil {
			return nil, err
		}
	}
	return out, nil
}
