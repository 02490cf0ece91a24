package gifenc

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"strings"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/nvlled/screencage/raster"
	"github.com/xyproto/palgen"
)

const (
	maxColors = 256

	// Upper bound on pixels handed to the quantizer; larger frame sets are
	// sampled at a fixed stride.
	maxQuantizeSamples = 1 << 18
)

type Quantizer int

const (
	QuantizerMedianCut Quantizer = iota
	QuantizerPalgen

	Quantizer_Size
)

func (q Quantizer) String() string {
	switch q {
	case QuantizerMedianCut:
		return "median-cut"
	case QuantizerPalgen:
		return "palgen"
	}
	return "invalid-quantizer"
}

func ParseQuantizer(s string) (Quantizer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "median-cut", "mediancut", "":
		return QuantizerMedianCut, nil
	case "palgen":
		return QuantizerPalgen, nil
	}
	return 0, fmt.Errorf("unknown quantizer %q", s)
}

func (q Quantizer) MarshalText() ([]byte, error) {
	if q < 0 || q >= Quantizer_Size {
		return nil, fmt.Errorf("unknown quantizer %d", int(q))
	}
	return []byte(q.String()), nil
}

func (q *Quantizer) UnmarshalText(text []byte) error {
	v, err := ParseQuantizer(string(text))
	if err != nil {
		return err
	}
	*q = v
	return nil
}

func packRGB(r, g, b uint8) uint32 { return uint32(r)<<16 | uint32(g)<<8 | uint32(b) }

// distinctColors returns the sorted set of colors used by frames, or
// ok=false as soon as more than maxColors are seen.
func distinctColors(frames []raster.Frame) (colors []uint32, ok bool) {
	seen := make(map[uint32]struct{}, maxColors)
	for _, f := range frames {
		pix := f.Pix
		for i := 0; i+3 < len(pix); i += 4 {
			key := packRGB(pix[i], pix[i+1], pix[i+2])
			if _, found := seen[key]; found {
				continue
			}
			if len(seen) == maxColors {
				return nil, false
			}
			seen[key] = struct{}{}
		}
	}

	colors = make([]uint32, 0, len(seen))
	for c := range seen {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool { return colors[i] < colors[j] })
	return colors, true
}

// samplePixels lays a strided sample of every frame's pixels out as a single
// row so the quantizer sees the union of colors across frames.
func samplePixels(frames []raster.Frame) *image.RGBA {
	total := 0
	for _, f := range frames {
		total += f.Width * f.Height
	}
	step := 1
	if total > maxQuantizeSamples {
		step = (total + maxQuantizeSamples - 1) / maxQuantizeSamples
	}

	n := (total + step - 1) / step
	img := image.NewRGBA(image.Rect(0, 0, n, 1))
	j, offset := 0, 0
	for _, f := range frames {
		if j >= len(img.Pix) {
			break
		}
		count := f.Width * f.Height
		for ; offset < count && j < len(img.Pix); offset += step {
			copy(img.Pix[j:j+4], f.Pix[offset*4:offset*4+4])
			img.Pix[j+3] = 0xFF
			j += 4
		}
		offset -= count
	}
	return img
}

// BuildPalette builds the global color table shared by every frame. When
// the frames use at most 256 colors the table holds exactly those colors,
// otherwise it is reduced by q.
func BuildPalette(frames []raster.Frame, q Quantizer) (color.Palette, error) {
	if colors, ok := distinctColors(frames); ok {
		pal := make(color.Palette, len(colors))
		for i, c := range colors {
			pal[i] = color.RGBA{uint8(c >> 16), uint8(c >> 8), uint8(c), 0xFF}
		}
		if len(pal) == 0 {
			pal = append(pal, color.RGBA{0, 0, 0, 0xFF})
		}
		return pal, nil
	}

	img := samplePixels(frames)

	var reduced color.Palette
	switch q {
	case QuantizerPalgen:
		pal, err := palgen.Generate(img, maxColors)
		if err != nil {
			return nil, fmt.Errorf("palgen: %w", err)
		}
		reduced = pal
	default:
		quantizer := quantize.MedianCutQuantizer{}
		reduced = quantizer.Quantize(make(color.Palette, 0, maxColors), img)
	}

	pal := make(color.Palette, 0, maxColors)
	for _, c := range reduced {
		if len(pal) == maxColors {
			break
		}
		r, g, b, _ := c.RGBA()
		pal = append(pal, color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 0xFF})
	}
	if len(pal) == 0 {
		pal = append(pal, color.RGBA{0, 0, 0, 0xFF})
	}
	return pal, nil
}

// indexer maps pixels to their nearest palette entry, memoizing lookups.
type indexer struct {
	pal   []color.RGBA
	cache map[uint32]uint8
}

func newIndexer(pal color.Palette) *indexer {
	ix := &indexer{
		pal:   make([]color.RGBA, len(pal)),
		cache: make(map[uint32]uint8, len(pal)),
	}
	for i, c := range pal {
		rgba := color.RGBAModel.Convert(c).(color.RGBA)
		ix.pal[i] = rgba
		key := packRGB(rgba.R, rgba.G, rgba.B)
		if _, found := ix.cache[key]; !found {
			ix.cache[key] = uint8(i)
		}
	}
	return ix
}

func (ix *indexer) index(r, g, b uint8) uint8 {
	key := packRGB(r, g, b)
	if i, ok := ix.cache[key]; ok {
		return i
	}

	best, bestDist := 0, -1
	for i, c := range ix.pal {
		dr := int(c.R) - int(r)
		dg := int(c.G) - int(g)
		db := int(c.B) - int(b)
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	ix.cache[key] = uint8(best)
	return uint8(best)
}

// indices converts f to a palette index stream in row-major order.
func (ix *indexer) indices(f raster.Frame, dst []byte) []byte {
	dst = dst[:0]
	pix := f.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		dst = append(dst, ix.index(pix[i], pix[i+1], pix[i+2]))
	}
	return dst
}
