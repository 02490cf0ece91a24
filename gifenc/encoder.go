// Package gifenc serializes raster frames into an animated GIF89a stream
// with a single global color table.
package gifenc

import (
	"compress/lzw"
	"errors"
	"fmt"
	"math/bits"
	"time"

	"github.com/nvlled/screencage/raster"
	"github.com/rs/zerolog"
)

var (
	ErrNoFramesToEncode      = errors.New("gifenc: no frames to encode")
	ErrInconsistentFrameSize = errors.New("gifenc: frames have inconsistent sizes")
	ErrFrameTooLarge         = errors.New("gifenc: frame dimensions exceed 65535")
)

const (
	DefaultDelay = 100 * time.Millisecond

	// Viewers replace delays below 2cs with their own default.
	minDelayCs = 2
	maxDelayCs = 0xFFFF
)

// Document is an encoded GIF. ByteSize always equals len(Bytes).
type Document struct {
	Bytes      []byte
	ByteSize   int
	FrameCount int
	Width      int
	Height     int
}

type Options struct {
	// Delay between frames. Zero means DefaultDelay.
	Delay time.Duration
	// LoopCount written to the NETSCAPE extension; 0 loops forever.
	LoopCount int
	Quantizer Quantizer
	Logger    zerolog.Logger
}

type Encoder struct {
	opts Options
}

func New(opts Options) *Encoder {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	return &Encoder{opts: opts}
}

// Encode is a shorthand for New(Options{}).Encode(frames).
func Encode(frames []raster.Frame) (Document, error) {
	return New(Options{}).Encode(frames)
}

func (e *Encoder) delayCs() uint16 {
	cs := int((e.opts.Delay + 5*time.Millisecond) / (10 * time.Millisecond))
	if cs < minDelayCs {
		cs = minDelayCs
	}
	if cs > maxDelayCs {
		cs = maxDelayCs
	}
	return uint16(cs)
}

func validate(frames []raster.Frame) error {
	if len(frames) == 0 {
		return ErrNoFramesToEncode
	}
	first := frames[0]
	if first.Width > 0xFFFF || first.Height > 0xFFFF {
		return fmt.Errorf("%w: %vx%v", ErrFrameTooLarge, first.Width, first.Height)
	}
	for i, f := range frames {
		if !f.SameSize(first) {
			return fmt.Errorf("%w: frame %v is %vx%v, expected %vx%v",
				ErrInconsistentFrameSize, i, f.Width, f.Height, first.Width, first.Height)
		}
		if len(f.Pix) != f.Width*f.Height*4 {
			return fmt.Errorf("frame %v: %w", i, raster.ErrInvalidFrame)
		}
	}
	return nil
}

// paletteBits returns the number of bits needed to index n colors, at least 1.
func paletteBits(n int) int {
	if n <= 2 {
		return 1
	}
	return bits.Len(uint(n - 1))
}

// Encode writes frames, in order, as one GIF89a document.
func (e *Encoder) Encode(frames []raster.Frame) (Document, error) {
	start := time.Now()
	if err := validate(frames); err != nil {
		return Document{}, err
	}

	pal, err := BuildPalette(frames, e.opts.Quantizer)
	if err != nil {
		return Document{}, err
	}
	tableBits := paletteBits(len(pal))

	width, height := frames[0].Width, frames[0].Height
	w := &writer{}

	// header + logical screen descriptor
	w.bytes(signature)
	w.uint16(uint16(width))
	w.uint16(uint16(height))
	w.byte(flagGlobalColorTable | colorResolution8Bit | byte(tableBits-1))
	w.byte(0x00) // background color index
	w.byte(0x00) // pixel aspect ratio

	// global color table, zero padded to a power of two
	for i := 0; i < 1<<tableBits; i++ {
		if i < len(pal) {
			r, g, b, _ := pal[i].RGBA()
			w.bytes([]byte{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)})
		} else {
			w.bytes([]byte{0, 0, 0})
		}
	}

	// NETSCAPE2.0 looping extension
	w.byte(blockExtension)
	w.byte(labelApplication)
	w.byte(applicationSize)
	w.bytes(netscapeAppID)
	w.byte(netscapeSubLen)
	w.byte(netscapeLoopID)
	w.uint16(uint16(e.opts.LoopCount))
	w.byte(0x00)

	litWidth := tableBits
	if litWidth < 2 {
		litWidth = 2
	}

	ix := newIndexer(pal)
	delay := e.delayCs()
	indices := make([]byte, 0, width*height)

	for _, f := range frames {
		// graphic control extension
		w.byte(blockExtension)
		w.byte(labelGraphicControl)
		w.byte(graphicControlSize)
		w.byte(disposalNone)
		w.uint16(delay)
		w.byte(0x00) // transparent color index, unused
		w.byte(0x00)

		// image descriptor
		w.byte(blockImage)
		w.uint16(0)
		w.uint16(0)
		w.uint16(uint16(width))
		w.uint16(uint16(height))
		w.byte(0x00) // no local color table, not interlaced

		indices = ix.indices(f, indices)
		if err := writeImageData(w, litWidth, indices); err != nil {
			return Document{}, err
		}
	}

	w.byte(blockTrailer)

	out := w.buf.Bytes()
	doc := Document{
		Bytes:      out,
		ByteSize:   len(out),
		FrameCount: len(frames),
		Width:      width,
		Height:     height,
	}

	e.opts.Logger.Debug().
		Int("frames", doc.FrameCount).
		Int("width", width).
		Int("height", height).
		Int("colors", len(pal)).
		Int("bytes", doc.ByteSize).
		Dur("elapsed", time.Since(start)).
		Msg("encoded gif")

	return doc, nil
}

// writeImageData writes the LZW minimum code size followed by the
// compressed index stream as data sub-blocks.
func writeImageData(w *writer, litWidth int, indices []byte) error {
	w.byte(byte(litWidth))
	bw := &blockWriter{out: w}
	lw := lzw.NewWriter(bw, lzw.LSB, litWidth)
	if _, err := lw.Write(indices); err != nil {
		lw.Close()
		return fmt.Errorf("lzw: %w", err)
	}
	if err := lw.Close(); err != nil {
		return fmt.Errorf("lzw: %w", err)
	}
	bw.close()
	return nil
}
