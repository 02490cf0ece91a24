package raster

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Region is a capture area in surface coordinates.
type Region struct {
	Left   int `json:"left" toml:"left"`
	Top    int `json:"top" toml:"top"`
	Width  int `json:"width" toml:"width"`
	Height int `json:"height" toml:"height"`
}

func RegionFromRect(r image.Rectangle) Region {
	return Region{Left: r.Min.X, Top: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

// Valid reports whether the region has a positive area.
func (r Region) Valid() bool { return r.Width > 0 && r.Height > 0 }

func (r Region) String() string {
	return fmt.Sprintf("%vx%v%+d%+d", r.Width, r.Height, r.Left, r.Top)
}

// ParseRegion reads the form written by String: "WxH+L+T", or just "WxH"
// for a region at the origin. Offsets may be negative ("640x480-1920+0").
func ParseRegion(s string) (Region, error) {
	var r Region
	size, offsets := s, ""
	if i := strings.IndexAny(s, "+-"); i >= 0 {
		size, offsets = s[:i], s[i:]
	}
	w, h, ok := strings.Cut(size, "x")
	if !ok {
		return r, fmt.Errorf("invalid region %q", s)
	}
	var err error
	if r.Width, err = strconv.Atoi(w); err != nil {
		return Region{}, fmt.Errorf("invalid region %q", s)
	}
	if r.Height, err = strconv.Atoi(h); err != nil {
		return Region{}, fmt.Errorf("invalid region %q", s)
	}
	if offsets == "" {
		return r, nil
	}
	j := strings.IndexAny(offsets[1:], "+-")
	if j < 0 {
		return Region{}, fmt.Errorf("invalid region %q", s)
	}
	if r.Left, err = strconv.Atoi(offsets[:j+1]); err != nil {
		return Region{}, fmt.Errorf("invalid region %q", s)
	}
	if r.Top, err = strconv.Atoi(offsets[j+1:]); err != nil {
		return Region{}, fmt.Errorf("invalid region %q", s)
	}
	return r, nil
}
