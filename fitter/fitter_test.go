package fitter

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math/rand"
	"testing"

	"github.com/nvlled/screencage/gifenc"
	"github.com/nvlled/screencage/raster"
)

// areaEncoder reports a size proportional to the total pixel count.
type areaEncoder struct {
	bytesPerPixel int
	calls         int
}

func (e *areaEncoder) Encode(frames []raster.Frame) (gifenc.Document, error) {
	e.calls++
	size := 0
	for _, f := range frames {
		size += f.Width * f.Height * e.bytesPerPixel
	}
	return gifenc.Document{
		Bytes:      make([]byte, size),
		ByteSize:   size,
		FrameCount: len(frames),
		Width:      frames[0].Width,
		Height:     frames[0].Height,
	}, nil
}

type trackingCache struct {
	live     map[string]bool
	maxLive  int
	next     int
	failNext bool
}

func newTrackingCache() *trackingCache {
	return &trackingCache{live: map[string]bool{}}
}

func (c *trackingCache) Store(doc gifenc.Document) (string, error) {
	c.next++
	handle := fmt.Sprintf("doc-%v", c.next)
	c.live[handle] = true
	if len(c.live) > c.maxLive {
		c.maxLive = len(c.live)
	}
	return handle, nil
}

func (c *trackingCache) Discard(handle string) error {
	if c.failNext {
		return errors.New("cache entry is locked")
	}
	if !c.live[handle] {
		return fmt.Errorf("unknown handle %v", handle)
	}
	delete(c.live, handle)
	return nil
}

func uniformFrames(n, w, h int) []raster.Frame {
	frames := make([]raster.Frame, n)
	for i := range frames {
		frames[i] = raster.Filled(w, h, color.RGBA{10, 200, 30, 255})
	}
	return frames
}

func TestProgressValue(t *testing.T) {
	for _, entry := range []struct {
		original, target, size int
		expected               float64
	}{
		{100, 50, 75, 0.5},
		{100, 50, 50, 1},
		{100, 50, 120, -0.4},
		{100, 50, 0, 2},
		{100, 100, 100, 1},
	} {
		got := ProgressValue(entry.original, entry.target, entry.size)
		if diff := got - entry.expected; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("ProgressValue(%v, %v, %v): expected=%v, got=%v",
				entry.original, entry.target, entry.size, entry.expected, got)
		}
	}
}

func TestFitConverges(t *testing.T) {
	frames := uniformFrames(10, 100, 100)
	encoder := &areaEncoder{bytesPerPixel: 100}
	cache := newTrackingCache()
	f := New(encoder, cache, Options{LossStep: 0.05})

	var progress []Progress
	attempt, err := f.Fit(context.Background(), frames, 1_000_000, 500_000, func(p Progress) {
		progress = append(progress, p)
	})
	if err != nil {
		t.Fatal(err)
	}

	if attempt.Document.ByteSize > 500_000 {
		t.Errorf("final attempt is over budget: %v", attempt.Document.ByteSize)
	}
	if attempt.Width != 70 || attempt.Height != 70 || attempt.Iteration != 6 {
		t.Errorf("unexpected final attempt %vx%v at %v", attempt.Width, attempt.Height, attempt.Iteration)
	}
	if len(progress) != 6 {
		t.Fatalf("expected one progress event per attempt, got %v", len(progress))
	}
	for i := 1; i < len(progress); i++ {
		if progress[i].ByteSize > progress[i-1].ByteSize {
			t.Errorf("attempt %v grew: %v > %v", i, progress[i].ByteSize, progress[i-1].ByteSize)
		}
		if progress[i].LossFraction <= progress[i-1].LossFraction {
			t.Errorf("loss fraction must increase")
		}
	}
	if last := progress[len(progress)-1].Value; last <= 1 {
		t.Errorf("overshooting attempt must report progress above 1, got %v", last)
	}

	if cache.maxLive != 1 {
		t.Errorf("expected at most one live document, got %v", cache.maxLive)
	}
	if len(cache.live) != 1 || !cache.live[attempt.Handle] {
		t.Errorf("only the final attempt must stay cached: %v", cache.live)
	}

	for _, frame := range frames {
		if frame.Width != 100 || frame.Height != 100 {
			t.Fatal("input frames must not be modified")
		}
	}
}

func TestFitNegativeProgress(t *testing.T) {
	frames := uniformFrames(1, 100, 100)
	f := New(&areaEncoder{bytesPerPixel: 1}, nil, Options{})

	var first *Progress
	_, err := f.Fit(context.Background(), frames, 5000, 4000, func(p Progress) {
		if first == nil {
			first = &p
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if first == nil || first.Value >= 0 {
		t.Errorf("expected negative progress for an attempt larger than the original, got %+v", first)
	}
}

func TestFitUnreachableTarget(t *testing.T) {
	frames := uniformFrames(5, 10, 10)
	cache := newTrackingCache()
	f := New(gifenc.New(gifenc.Options{}), cache, Options{LossStep: 0.05})

	_, err := f.Fit(context.Background(), frames, 1000, 0, nil)
	if !errors.Is(err, ErrTargetUnreachable) {
		t.Fatalf("expected ErrTargetUnreachable, got %v", err)
	}
	if len(cache.live) != 0 {
		t.Errorf("no document may stay cached after a failed fit: %v", cache.live)
	}
	if cache.maxLive > 1 {
		t.Errorf("expected at most one live document, got %v", cache.maxLive)
	}
}

func TestFitIterationCap(t *testing.T) {
	frames := uniformFrames(1, 200, 200)
	encoder := &areaEncoder{bytesPerPixel: 1}
	cache := newTrackingCache()
	f := New(encoder, cache, Options{LossStep: 0.01, MaxIterations: 3})

	_, err := f.Fit(context.Background(), frames, 40_000, 1, nil)
	if !errors.Is(err, ErrTargetUnreachable) {
		t.Fatalf("expected ErrTargetUnreachable, got %v", err)
	}
	if encoder.calls != 3 {
		t.Errorf("expected=3 encodes, got=%v", encoder.calls)
	}
	if len(cache.live) != 0 {
		t.Errorf("expected no live documents, got %v", cache.live)
	}
}

func TestFitDiscardFailureIsFatal(t *testing.T) {
	frames := uniformFrames(1, 100, 100)
	cache := newTrackingCache()
	f := New(&areaEncoder{bytesPerPixel: 1}, cache, Options{})

	_, err := f.Fit(context.Background(), frames, 10_000, 100, func(p Progress) {
		if p.Iteration == 2 {
			cache.failNext = true
		}
	})
	if !errors.Is(err, ErrResizeFailed) {
		t.Fatalf("expected ErrResizeFailed, got %v", err)
	}
}

func TestFitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frames := uniformFrames(1, 100, 100)
	cache := newTrackingCache()
	f := New(&areaEncoder{bytesPerPixel: 1}, cache, Options{})

	_, err := f.Fit(ctx, frames, 10_000, 100, func(p Progress) {
		if p.Iteration == 2 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(cache.live) != 0 {
		t.Errorf("cancelled fit must release its attempt, got %v", cache.live)
	}
}

func TestFitInvalidInput(t *testing.T) {
	f := New(&areaEncoder{bytesPerPixel: 1}, nil, Options{})
	if _, err := f.Fit(context.Background(), nil, 10, 5, nil); !errors.Is(err, gifenc.ErrNoFramesToEncode) {
		t.Errorf("expected ErrNoFramesToEncode, got %v", err)
	}

	f = New(&areaEncoder{bytesPerPixel: 1}, nil, Options{LossStep: 1.5})
	if _, err := f.Fit(context.Background(), uniformFrames(1, 4, 4), 10, 5, nil); !errors.Is(err, ErrInvalidLossStep) {
		t.Errorf("expected ErrInvalidLossStep, got %v", err)
	}
}

func TestFitRealEncoder(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	frames := make([]raster.Frame, 3)
	for i := range frames {
		pix := make([]byte, 64*64*4)
		rng.Read(pix)
		for j := 3; j < len(pix); j += 4 {
			pix[j] = 0xFF
		}
		frames[i] = raster.Frame{Width: 64, Height: 64, Pix: pix}
	}

	encoder := gifenc.New(gifenc.Options{})
	original, err := encoder.Encode(frames)
	if err != nil {
		t.Fatal(err)
	}

	target := original.ByteSize / 2
	for _, filter := range []raster.Filter{raster.FilterNearest, raster.FilterBilinear} {
		cache := newTrackingCache()
		f := New(encoder, cache, Options{Filter: filter})
		attempt, err := f.Fit(context.Background(), frames, original.ByteSize, target, nil)
		if err != nil {
			t.Fatalf("%v: %v", filter, err)
		}
		if attempt.Document.ByteSize > target {
			t.Errorf("%v: %v bytes is over the %v budget", filter, attempt.Document.ByteSize, target)
		}
		if attempt.Document.FrameCount != 3 {
			t.Errorf("%v: frame count changed to %v", filter, attempt.Document.FrameCount)
		}
		if cache.maxLive != 1 {
			t.Errorf("%v: expected at most one live document, got %v", filter, cache.maxLive)
		}
	}
}
