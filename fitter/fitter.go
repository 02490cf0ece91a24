// Package fitter shrinks a frame set until its encoded GIF fits a byte
// budget.
package fitter

import (
	"context"
	"errors"
	"fmt"

	"github.com/nvlled/screencage/gifenc"
	"github.com/nvlled/screencage/raster"
	"github.com/rs/zerolog"
)

var (
	ErrResizeFailed      = errors.New("fitter: resize failed")
	ErrTargetUnreachable = errors.New("fitter: target size is unreachable by downsampling")
	ErrInvalidLossStep   = errors.New("fitter: loss step must be between 0 and 1")
)

const (
	DefaultLossStep      = 0.05
	DefaultMaxIterations = 100
	DefaultMinDimension  = 1
)

type Encoder interface {
	Encode(frames []raster.Frame) (gifenc.Document, error)
}

// Cache holds the document of the live attempt. Discard must release it;
// a failed discard aborts the fit.
type Cache interface {
	Store(doc gifenc.Document) (string, error)
	Discard(handle string) error
}

type Options struct {
	LossStep      float64
	Filter        raster.Filter
	MaxIterations int
	MinDimension  int
	Logger        zerolog.Logger
}

// Attempt is one downsample + encode cycle.
type Attempt struct {
	Iteration    int
	LossFraction float64
	Width        int
	Height       int
	Document     gifenc.Document
	Handle       string
}

// Progress is reported after every attempt. Value is not clamped: it is
// negative while the attempts are still larger than the original and can
// exceed 1 when one step overshoots the target.
type Progress struct {
	Iteration    int
	LossFraction float64
	ByteSize     int
	Value        float64
}

type Fitter struct {
	opts    Options
	encoder Encoder
	cache   Cache
}

func New(encoder Encoder, cache Cache, opts Options) *Fitter {
	if opts.LossStep == 0 {
		opts.LossStep = DefaultLossStep
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.MinDimension <= 0 {
		opts.MinDimension = DefaultMinDimension
	}
	if cache == nil {
		cache = nopCache{}
	}
	return &Fitter{opts: opts, encoder: encoder, cache: cache}
}

// ProgressValue is (original - size) / (original - target). A budget that
// is not below the original counts as reached.
func ProgressValue(originalSize, targetSize, size int) float64 {
	span := originalSize - targetSize
	if span <= 0 {
		return 1
	}
	return float64(originalSize-size) / float64(span)
}

// Fit scales frames by growing loss fractions and re-encodes them until the
// document is at most targetSize bytes. frames is never modified. Each
// superseded attempt is discarded from the cache before the next one
// starts, so at most one attempt document is live at any time; on error
// none is.
func (f *Fitter) Fit(ctx context.Context, frames []raster.Frame, originalSize, targetSize int, emit func(Progress)) (Attempt, error) {
	if emit == nil {
		emit = func(Progress) {}
	}
	if len(frames) == 0 {
		return Attempt{}, gifenc.ErrNoFramesToEncode
	}
	step := f.opts.LossStep
	if step <= 0 || step >= 1 {
		return Attempt{}, fmt.Errorf("%w: %v", ErrInvalidLossStep, step)
	}

	log := f.opts.Logger
	width, height := frames[0].Width, frames[0].Height

	var previous *Attempt
	release := func() error {
		if previous == nil {
			return nil
		}
		handle := previous.Handle
		previous = nil
		if err := f.cache.Discard(handle); err != nil {
			log.Error().Err(err).Str("handle", handle).Msg("discarding resize attempt failed")
			return fmt.Errorf("%w: %w", ErrResizeFailed, err)
		}
		log.Debug().Str("handle", handle).Msg("discarded resize attempt")
		return nil
	}

	for i := 1; ; i++ {
		if err := release(); err != nil {
			return Attempt{}, err
		}
		if err := ctx.Err(); err != nil {
			return Attempt{}, err
		}
		if i > f.opts.MaxIterations {
			return Attempt{}, fmt.Errorf("%w: no fit after %v attempts", ErrTargetUnreachable, f.opts.MaxIterations)
		}

		loss := step * float64(i)
		w, h := raster.ScaledSize(width, height, loss)
		if w < f.opts.MinDimension || h < f.opts.MinDimension {
			return Attempt{}, fmt.Errorf("%w: %v bytes needs frames smaller than %vx%v",
				ErrTargetUnreachable, targetSize, f.opts.MinDimension, f.opts.MinDimension)
		}

		scaled := make([]raster.Frame, len(frames))
		for j, frame := range frames {
			scaled[j] = raster.Scale(frame, w, h, f.opts.Filter)
		}

		doc, err := f.encoder.Encode(scaled)
		if err != nil {
			return Attempt{}, fmt.Errorf("%w: %w", ErrResizeFailed, err)
		}
		handle, err := f.cache.Store(doc)
		if err != nil {
			return Attempt{}, fmt.Errorf("%w: %w", ErrResizeFailed, err)
		}

		attempt := Attempt{
			Iteration:    i,
			LossFraction: loss,
			Width:        w,
			Height:       h,
			Document:     doc,
			Handle:       handle,
		}
		progress := ProgressValue(originalSize, targetSize, doc.ByteSize)
		emit(Progress{
			Iteration:    i,
			LossFraction: loss,
			ByteSize:     doc.ByteSize,
			Value:        progress,
		})

		log.Info().
			Int("iteration", i).
			Float64("loss", loss).
			Int("width", w).
			Int("height", h).
			Int("bytes", doc.ByteSize).
			Int("target", targetSize).
			Float64("progress", progress).
			Msg("resize attempt")

		if doc.ByteSize <= targetSize {
			return attempt, nil
		}
		previous = &attempt
	}
}

type nopCache struct{}

func (nopCache) Store(gifenc.Document) (string, error) { return "", nil }
func (nopCache) Discard(string) error                  { return nil }
