package gifenc

import (
	"image/color"
	"testing"

	"github.com/nvlled/screencage/raster"
)

func TestBuildPaletteReducesLargeColorSets(t *testing.T) {
	frames := noiseFrames(2, 50, 50, 3)
	for _, q := range []Quantizer{QuantizerMedianCut, QuantizerPalgen} {
		pal, err := BuildPalette(frames, q)
		if err != nil {
			t.Fatalf("%v: %v", q, err)
		}
		if len(pal) == 0 || len(pal) > 256 {
			t.Errorf("%v: palette size out of range: %v", q, len(pal))
		}
	}
}

func TestBuildPaletteSortsExactColors(t *testing.T) {
	frames := []raster.Frame{
		raster.Filled(2, 2, color.RGBA{9, 9, 9, 255}),
		raster.Filled(2, 2, color.RGBA{1, 1, 1, 255}),
	}
	pal, err := BuildPalette(frames, QuantizerMedianCut)
	if err != nil {
		t.Fatal(err)
	}
	expected := color.Palette{color.RGBA{1, 1, 1, 255}, color.RGBA{9, 9, 9, 255}}
	if len(pal) != len(expected) {
		t.Fatalf("expected=%v, got=%v", expected, pal)
	}
	for i := range pal {
		if pal[i] != expected[i] {
			t.Errorf("entry %v: expected=%v, got=%v", i, expected[i], pal[i])
		}
	}
}

func TestIndexerNearest(t *testing.T) {
	ix := newIndexer(color.Palette{
		color.RGBA{0, 0, 0, 255},
		color.RGBA{255, 255, 255, 255},
	})
	if i := ix.index(10, 20, 30); i != 0 {
		t.Errorf("expected dark pixel to map to black, got %v", i)
	}
	if i := ix.index(200, 220, 240); i != 1 {
		t.Errorf("expected light pixel to map to white, got %v", i)
	}
}

func TestSamplePixelsStride(t *testing.T) {
	frames := noiseFrames(1, 1024, 512, 1)
	img := samplePixels(frames)
	if img.Bounds().Dx() > maxQuantizeSamples {
		t.Errorf("too many samples: %v", img.Bounds().Dx())
	}
	if img.Pix[0] != frames[0].Pix[0] || img.Pix[1] != frames[0].Pix[1] {
		t.Error("first sample must be the first pixel")
	}
}

func TestParseQuantizer(t *testing.T) {
	for _, entry := range []struct {
		in       string
		expected Quantizer
	}{
		{"median-cut", QuantizerMedianCut},
		{"", QuantizerMedianCut},
		{"PALGEN", QuantizerPalgen},
	} {
		q, err := ParseQuantizer(entry.in)
		if err != nil || q != entry.expected {
			t.Errorf("ParseQuantizer(%q): expected=%v, got=%v (%v)", entry.in, entry.expected, q, err)
		}
	}
	if _, err := ParseQuantizer("octree"); err == nil {
		t.Error("expected error")
	}
}
