// Package raster holds the pixel buffers passed between the sampler, the
// encoder and the size fitter.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

var ErrInvalidFrame = errors.New("raster: pixel buffer does not match dimensions")

// Frame is an immutable width x height buffer of packed RGBA8 pixels.
// Callers must not modify Pix after the frame is built.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

func NewFrame(width, height int, pix []byte) (Frame, error) {
	if width < 0 || height < 0 || len(pix) != width*height*4 {
		return Frame{}, fmt.Errorf("%w: %vx%v with %v bytes", ErrInvalidFrame, width, height, len(pix))
	}
	return Frame{Width: width, Height: height, Pix: pix}, nil
}

// Filled returns a frame where every pixel is c.
func Filled(width, height int, c color.RGBA) Frame {
	pix := make([]byte, width*height*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = c.A
	}
	return Frame{Width: width, Height: height, Pix: pix}
}

// FromImage copies img into a new frame. The image origin is moved to (0,0).
func FromImage(img image.Image) Frame {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == b.Dx()*4 {
		pix := make([]byte, len(rgba.Pix[:b.Dx()*b.Dy()*4]))
		copy(pix, rgba.Pix)
		return Frame{Width: b.Dx(), Height: b.Dy(), Pix: pix}
	}

	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return Frame{Width: b.Dx(), Height: b.Dy(), Pix: dst.Pix}
}

// Image returns a view of the frame as an *image.RGBA sharing Pix.
func (f Frame) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pix,
		Stride: f.Width * 4,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

func (f Frame) Bounds() image.Rectangle { return image.Rect(0, 0, f.Width, f.Height) }

func (f Frame) Empty() bool { return f.Width <= 0 || f.Height <= 0 }

// RGBAt returns the pixel at (x, y) without bounds checking beyond the slice.
func (f Frame) RGBAt(x, y int) color.RGBA {
	i := (y*f.Width + x) * 4
	return color.RGBA{f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]}
}

func (f Frame) SameSize(other Frame) bool {
	return f.Width == other.Width && f.Height == other.Height
}

func (f Frame) String() string {
	return fmt.Sprintf("frame %vx%v", f.Width, f.Height)
}
