// Command glyphrom converts an 8x8-per-cell bitmap font sheet into the flat
// 256x64-byte grayscale glyph ROM the text-mode blitter reads: 256 glyphs in
// character-code order, 64 grayscale intensity bytes (an 8x8 cell) each.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"

	"github.com/vm32/vm32/vm"
)

const (
	glyphDim   = 8
	sheetCols  = 16
	sheetRows  = 16
	glyphCount = sheetCols * sheetRows
)

func main() {
	var (
		inPath  = flag.String("in", "", "bitmap font sheet (PNG or BMP, 16x16 grid of 8x8 glyphs)")
		outPath = flag.String("out", "glyphrom.bin", "output ROM path")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -in font.png -out glyphrom.bin\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	rom, err := build(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "glyphrom: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outPath, rom, 0o644); err != nil { // #nosec G306 -- ROM output is not sensitive
		fmt.Fprintf(os.Stderr, "glyphrom: writing %s: %v\n", *outPath, err)
		os.Exit(1)
	}
	fmt.Printf("glyphrom: wrote %d bytes to %s\n", len(rom), *outPath)
}

func build(inPath string) ([]byte, error) {
	f, err := os.Open(inPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", inPath, err)
	}

	bounds := img.Bounds()
	wantW := sheetCols * glyphDim
	wantH := sheetRows * glyphDim
	if bounds.Dx() != wantW || bounds.Dy() != wantH {
		return nil, fmt.Errorf("font sheet (%s) is %dx%d, expected %dx%d (16x16 grid of 8x8 glyphs)",
			format, bounds.Dx(), bounds.Dy(), wantW, wantH)
	}

	rom := make([]byte, vm.GlyphROMSize)
	if len(rom) != glyphCount*glyphDim*glyphDim {
		return nil, fmt.Errorf("vm.GlyphROMSize %d does not match %d glyphs of %d bytes",
			vm.GlyphROMSize, glyphCount, glyphDim*glyphDim)
	}

	for code := 0; code < glyphCount; code++ {
		cellX := (code % sheetCols) * glyphDim
		cellY := (code / sheetCols) * glyphDim
		base := code * glyphDim * glyphDim

		for row := 0; row < glyphDim; row++ {
			for col := 0; col < glyphDim; col++ {
				px := bounds.Min.X + cellX + col
				py := bounds.Min.Y + cellY + row
				rom[base+row*glyphDim+col] = grayscale(img.At(px, py))
			}
		}
	}

	return rom, nil
}

func grayscale(c color.Color) byte {
	r, g, b, _ := c.RGBA()
	// c.RGBA returns 16-bit premultiplied channels; reduce to 8-bit luma.
	lum := (299*r + 587*g + 114*b) / 1000
	return byte(lum >> 8)
}
