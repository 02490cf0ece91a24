package sampler

import (
	"context"

	"github.com/nvlled/screencage/raster"
	"github.com/nvlled/screencage/task"
)

// DirectSurface reads a cropped frame synchronously.
type DirectSurface interface {
	ReadFrame(region raster.Region) (raster.Frame, error)
}

// CallbackSurface starts a capture and reports the result through done,
// possibly from another goroutine. done must be called exactly once.
type CallbackSurface interface {
	RequestFrame(region raster.Region, done func(raster.Frame, error))
}

// Surfaces that can tell whether they are currently usable implement
// Availability.
type Availability interface {
	Available() bool
}

// Target names the capture surface. Direct is used when both are set.
type Target struct {
	Direct   DirectSurface
	Callback CallbackSurface
}

type strategy interface {
	capture(ctx context.Context, region raster.Region) (raster.Frame, error)
}

type directStrategy struct {
	surface DirectSurface
}

func (d directStrategy) capture(_ context.Context, region raster.Region) (raster.Frame, error) {
	return d.surface.ReadFrame(region)
}

// callbackStrategy turns each callback into a single awaitable task. busy
// holds a token while a request is in flight, so a new request waits for
// the previous one to resolve even if its caller has gone away.
type callbackStrategy struct {
	surface CallbackSurface
	busy    chan struct{}
}

func (c callbackStrategy) capture(ctx context.Context, region raster.Region) (raster.Frame, error) {
	select {
	case c.busy <- struct{}{}:
	case <-ctx.Done():
		return raster.Frame{}, ctx.Err()
	}

	t := task.New[raster.Frame]()
	c.surface.RequestFrame(region, func(f raster.Frame, err error) {
		if t.Finish(f, err) {
			<-c.busy
		}
	})
	return t.Wait(ctx)
}

func available(surface any) bool {
	if a, ok := surface.(Availability); ok {
		return a.Available()
	}
	return true
}
