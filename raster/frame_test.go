package raster

import (
	"image"
	"image/color"
	"testing"
)

func TestNewFrameChecksLength(t *testing.T) {
	if _, err := NewFrame(2, 2, make([]byte, 16)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := NewFrame(2, 2, make([]byte, 15)); err == nil {
		t.Error("expected error for short buffer")
	}
}

func TestFromImageMovesOrigin(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 14, 13))
	img.Set(10, 10, color.RGBA{1, 2, 3, 255})
	img.Set(13, 12, color.RGBA{4, 5, 6, 255})

	f := FromImage(img.SubImage(image.Rect(10, 10, 14, 13)))
	if f.Width != 4 || f.Height != 3 {
		t.Fatalf("wrong size %vx%v", f.Width, f.Height)
	}
	if c := f.RGBAt(0, 0); c != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("wrong pixel at origin: %v", c)
	}
	if c := f.RGBAt(3, 2); c != (color.RGBA{4, 5, 6, 255}) {
		t.Errorf("wrong pixel at corner: %v", c)
	}
}

func TestScale(t *testing.T) {
	src := Filled(10, 10, color.RGBA{200, 100, 50, 255})
	for _, filter := range []Filter{FilterNearest, FilterBilinear} {
		dst := Scale(src, 5, 4, filter)
		if dst.Width != 5 || dst.Height != 4 || len(dst.Pix) != 5*4*4 {
			t.Errorf("%v: wrong size %v", filter, dst)
		}
		if c := dst.RGBAt(2, 2); c != (color.RGBA{200, 100, 50, 255}) {
			t.Errorf("%v: uniform color changed: %v", filter, c)
		}
	}

	zero := Scale(src, 0, 0, FilterBilinear)
	if !zero.Empty() || len(zero.Pix) != 0 {
		t.Errorf("expected empty frame, got %v", zero)
	}
}

func TestScaledSize(t *testing.T) {
	for _, entry := range []struct {
		w, h   int
		loss   float64
		ew, eh int
	}{
		{100, 50, 0.05, 95, 47},
		{100, 50, 0.5, 50, 25},
		{10, 10, 0.95, 0, 0},
		{10, 10, 0, 10, 10},
	} {
		w, h := ScaledSize(entry.w, entry.h, entry.loss)
		if w != entry.ew || h != entry.eh {
			t.Errorf("ScaledSize(%v, %v, %v): expected=%vx%v, got=%vx%v",
				entry.w, entry.h, entry.loss, entry.ew, entry.eh, w, h)
		}
	}
}

func TestParseFilter(t *testing.T) {
	for _, entry := range []struct {
		in       string
		expected Filter
	}{
		{"nearest", FilterNearest},
		{"Bilinear", FilterBilinear},
		{"", FilterBilinear},
	} {
		f, err := ParseFilter(entry.in)
		if err != nil || f != entry.expected {
			t.Errorf("ParseFilter(%q): expected=%v, got=%v (%v)", entry.in, entry.expected, f, err)
		}
	}
	if _, err := ParseFilter("lanczos"); err == nil {
		t.Error("expected error for unknown filter")
	}
}

func TestRegionValid(t *testing.T) {
	if (Region{Width: 0, Height: 10}).Valid() {
		t.Error("zero width must be invalid")
	}
	if !(Region{Left: -5, Top: 3, Width: 1, Height: 1}).Valid() {
		t.Error("positive area must be valid")
	}
	r := RegionFromRect(image.Rect(1, 2, 11, 22))
	if r != (Region{Left: 1, Top: 2, Width: 10, Height: 20}) {
		t.Errorf("wrong region %v", r)
	}
}

func TestParseRegion(t *testing.T) {
	for _, entry := range []struct {
		in       string
		expected Region
	}{
		{"640x480", Region{Width: 640, Height: 480}},
		{"640x480+10+20", Region{Left: 10, Top: 20, Width: 640, Height: 480}},
		{"300x200-1920+0", Region{Left: -1920, Top: 0, Width: 300, Height: 200}},
	} {
		got, err := ParseRegion(entry.in)
		if err != nil || got != entry.expected {
			t.Errorf("ParseRegion(%q): expected=%v, got=%v (%v)", entry.in, entry.expected, got, err)
		}
		if err == nil {
			if again, _ := ParseRegion(got.String()); again != got {
				t.Errorf("String does not parse back: %v", got)
			}
		}
	}
	for _, bad := range []string{"", "640", "640x", "axb", "640x480+10"} {
		if _, err := ParseRegion(bad); err == nil {
			t.Errorf("ParseRegion(%q): expected error", bad)
		}
	}
}
