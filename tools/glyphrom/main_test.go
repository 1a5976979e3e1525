package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/vm32/vm32/vm"
)

func writeTestSheet(t *testing.T) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, sheetCols*glyphDim, sheetRows*glyphDim))
	for code := 0; code < glyphCount; code++ {
		cellX := (code % sheetCols) * glyphDim
		cellY := (code / sheetCols) * glyphDim
		shade := byte(code % 256)
		for row := 0; row < glyphDim; row++ {
			for col := 0; col < glyphDim; col++ {
				img.SetGray(cellX+col, cellY+row, color.Gray{Y: shade})
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test sheet: %v", err)
	}

	path := filepath.Join(t.TempDir(), "font.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing test sheet: %v", err)
	}
	return path
}

func TestBuild_Size(t *testing.T) {
	path := writeTestSheet(t)

	rom, err := build(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rom) != vm.GlyphROMSize {
		t.Errorf("expected %d bytes, got %d", vm.GlyphROMSize, len(rom))
	}
}

func TestBuild_GlyphValues(t *testing.T) {
	path := writeTestSheet(t)

	rom, err := build(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, code := range []int{0, 1, 65, 255} {
		base := code * glyphDim * glyphDim
		want := byte(code % 256)
		for i := 0; i < glyphDim*glyphDim; i++ {
			if rom[base+i] != want {
				t.Fatalf("glyph %d byte %d: expected %d, got %d", code, i, want, rom[base+i])
			}
		}
	}
}

func TestBuild_WrongSize(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test sheet: %v", err)
	}
	path := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing test sheet: %v", err)
	}

	if _, err := build(path); err == nil {
		t.Error("expected error for mis-sized font sheet")
	}
}

func TestBuild_MissingFile(t *testing.T) {
	if _, err := build(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}
