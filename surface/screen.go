// Package surface provides capture surfaces for the sampler.
package surface

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
	"github.com/nvlled/screencage/raster"
)

// Screen reads regions of the desktop synchronously.
type Screen struct{}

func (Screen) Available() bool {
	return screenshot.NumActiveDisplays() > 0
}

func (Screen) ReadFrame(region raster.Region) (raster.Frame, error) {
	img, err := screenshot.CaptureRect(region.Rect())
	if err != nil {
		return raster.Frame{}, err
	}
	return raster.FromImage(img), nil
}

// DisplayRegion returns the bounds of display i, inset by border pixels on
// every side.
func DisplayRegion(i, border int) (raster.Region, error) {
	n := screenshot.NumActiveDisplays()
	if i < 0 || i >= n {
		return raster.Region{}, fmt.Errorf("display %v not found (%v active)", i, n)
	}
	b := screenshot.GetDisplayBounds(i)
	return raster.RegionFromRect(image.Rect(b.Min.X+border, b.Min.Y+border, b.Max.X-border, b.Max.Y-border)), nil
}
