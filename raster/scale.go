package raster

import (
	"fmt"
	"image"
	"math"
	"strings"

	"golang.org/x/image/draw"
)

type Filter int

const (
	FilterNearest Filter = iota
	FilterBilinear

	Filter_Size
)

func (filter Filter) String() string {
	switch filter {
	case FilterNearest:
		return "nearest"
	case FilterBilinear:
		return "bilinear"
	}
	return "invalid-filter"
}

func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest":
		return FilterNearest, nil
	case "bilinear", "":
		return FilterBilinear, nil
	}
	return 0, fmt.Errorf("unknown filter %q", s)
}

func (filter Filter) MarshalText() ([]byte, error) {
	if filter < 0 || filter >= Filter_Size {
		return nil, fmt.Errorf("unknown filter %d", int(filter))
	}
	return []byte(filter.String()), nil
}

func (filter *Filter) UnmarshalText(text []byte) error {
	f, err := ParseFilter(string(text))
	if err != nil {
		return err
	}
	*filter = f
	return nil
}

func (filter Filter) scaler() draw.Scaler {
	if filter == FilterNearest {
		return draw.NearestNeighbor
	}
	return draw.BiLinear
}

// Scale resamples f to width x height.
func Scale(f Frame, width, height int, filter Filter) Frame {
	if width == f.Width && height == f.Height {
		return f
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if width > 0 && height > 0 && !f.Empty() {
		filter.scaler().Scale(dst, dst.Bounds(), f.Image(), f.Bounds(), draw.Src, nil)
	}
	return Frame{Width: width, Height: height, Pix: dst.Pix}
}

// ScaledSize returns the dimensions of f after removing loss from both axes.
func ScaledSize(width, height int, loss float64) (int, int) {
	const epsilon = 1e-9
	keep := 1 - loss
	return int(math.Floor(float64(width)*keep + epsilon)), int(math.Floor(float64(height)*keep + epsilon))
}
