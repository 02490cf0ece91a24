package surface

import (
	"github.com/nvlled/screencage/raster"
	"github.com/nvlled/screencage/sampler"
)

// Deferred serves each request from Source on its own goroutine and reports
// through the callback, like platforms whose capture API is asynchronous.
type Deferred struct {
	Source sampler.DirectSurface
}

func (d Deferred) Available() bool {
	if a, ok := d.Source.(sampler.Availability); ok {
		return a.Available()
	}
	return d.Source != nil
}

func (d Deferred) RequestFrame(region raster.Region, done func(raster.Frame, error)) {
	go func() {
		done(d.Source.ReadFrame(region))
	}()
}
