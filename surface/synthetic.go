package surface

import (
	"image/color"
	"sync"

	"github.com/nvlled/screencage/raster"
)

// Synthetic renders a moving test pattern instead of reading a screen. Each
// read advances the animation by one step.
type Synthetic struct {
	Width  int
	Height int

	mu   sync.Mutex
	tick int
}

var patternColors = []color.RGBA{
	{0, 255, 255, 255},
	{0, 90, 90, 255},
	{0, 0, 255, 255},
	{0, 255, 0, 255},
	{255, 0, 0, 255},
	{90, 90, 90, 255},
}

func (s *Synthetic) ReadFrame(region raster.Region) (raster.Frame, error) {
	s.mu.Lock()
	tick := s.tick
	s.tick++
	s.mu.Unlock()

	w, h := region.Width, region.Height
	pix := make([]byte, w*h*4)
	const band = 8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := region.Left+x, region.Top+y
			k := ((sx+tick*2)/band + sy/band) % len(patternColors)
			if k < 0 {
				k += len(patternColors)
			}
			c := patternColors[k]
			if s.Width > 0 && s.Height > 0 && (sx >= s.Width || sy >= s.Height) {
				c = color.RGBA{0, 0, 0, 255}
			}
			i := (y*w + x) * 4
			pix[i+0] = c.R
			pix[i+1] = c.G
			pix[i+2] = c.B
			pix[i+3] = c.A
		}
	}
	return raster.Frame{Width: w, Height: h, Pix: pix}, nil
}
