// Command tiffmanifest prints the chunk manifest of a TIFF/BigTIFF file:
// per-IFD dimensions, chunk layout, decode pipeline, and optionally the
// full chunk table or the JSON projection consumed by array stores.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	virtualtiff "github.com/virtual-zarr/virtual-tiff"
)

func main() {
	ifd := flag.Int("ifd", -1, "IFD index to manifest (default: all)")
	chunks := flag.Bool("chunks", false, "print the per-chunk byte ranges")
	asJSON := flag.Bool("json", false, "emit the JSON manifest document instead of text")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: tiffmanifest [options] file.tif")
		flag.PrintDefaults()
		os.Exit(2)
	}

	src, err := virtualtiff.OpenFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("open %s: %v", flag.Arg(0), err)
	}
	defer src.Close()

	ctx := context.Background()
	parser := virtualtiff.NewParser(src, virtualtiff.WithFileIdentity(src.Identity()))

	doc, err := parser.Document(ctx)
	if err != nil {
		log.Fatalf("parse %s: %v", flag.Arg(0), err)
	}

	var manifests []*virtualtiff.Manifest
	if *ifd >= 0 {
		m, err := parser.Manifest(ctx, *ifd)
		if err != nil {
			log.Fatalf("IFD %d: %v", *ifd, err)
		}
		manifests = append(manifests, m)
	} else {
		for i := 0; i < doc.Len(); i++ {
			m, err := parser.Manifest(ctx, i)
			if err != nil {
				log.Printf("IFD %d: skipped: %v", i, err)
				continue
			}
			manifests = append(manifests, m)
		}
	}

	if *asJSON {
		out := make(map[string]*virtualtiff.Manifest, len(manifests))
		for _, m := range manifests {
			out[fmt.Sprint(m.IFDIndex())] = m
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			log.Fatalf("encode: %v", err)
		}
		return
	}

	variant := "classic"
	if doc.BigTIFF() {
		variant = "BigTIFF"
	}
	fmt.Printf("%s: %s, %v, %d IFDs\n", flag.Arg(0), variant, doc.ByteOrder(), doc.Len())
	for _, m := range manifests {
		printManifest(m, *chunks)
	}
}

func printManifest(m *virtualtiff.Manifest, chunks bool) {
	dims := m.Dimensions()
	layout := m.Layout()
	fmt.Printf("IFD %d: %dx%d px, %d sample(s), %s\n",
		m.IFDIndex(), dims.Width, dims.Height, dims.SamplesPerPixel, m.DataType())
	fmt.Printf("  layout: %s %dx%d, grid %dx%d, %d plane(s), %d chunks\n",
		layout.Mode, layout.ChunkWidth, layout.ChunkHeight,
		layout.AcrossX, layout.AcrossY, layout.Planes, m.Len())
	if chain := m.Codecs(); len(chain) > 0 {
		fmt.Print("  decode:")
		for _, stage := range chain {
			fmt.Printf(" %s", stage.Name)
		}
		fmt.Println()
	}
	if chunks {
		for _, ref := range m.Chunks() {
			fmt.Printf("  %-12s %12d + %d\n", m.ChunkKey(ref), ref.Offset, ref.Length)
		}
	}
}
