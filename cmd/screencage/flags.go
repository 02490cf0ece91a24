package main

import (
	"fmt"
	"time"

	"github.com/nvlled/screencage/framerate"
	"github.com/nvlled/screencage/gifenc"
	"github.com/nvlled/screencage/raster"
	"github.com/nvlled/screencage/settings"
	"github.com/nvlled/screencage/store"
	pflag "github.com/spf13/pflag"
)

// settingsFlags holds the command line overrides for settings.Settings.
// Only flags the user actually set are applied.
type settingsFlags struct {
	output       string
	outputMethod string

	fps      int
	duration time.Duration
	region   string
	display  int

	targetSize    settings.ByteSize
	lossStep      float64
	filter        string
	maxIterations int
	minDimension  int

	quantizer string
	loopCount int
}

func (f *settingsFlags) register(fs *pflag.FlagSet, d settings.Settings, capture bool) {
	fs.StringVarP(&f.output, "output", "o", d.OutputFilename, "output GIF filename")
	fs.StringVar(&f.outputMethod, "output-method", d.OutputMethod.String(), "new-file (capture-2.gif, capture-3.gif, ...) or overwrite")

	if capture {
		fs.IntVar(&f.fps, "fps", d.FrameRate.Value, "frames captured per second")
		fs.DurationVarP(&f.duration, "duration", "d", d.TotalDuration(), "length of the recording")
		fs.StringVar(&f.region, "region", "", "capture area as WxH+LEFT+TOP (default: the whole display)")
		fs.IntVar(&f.display, "display", d.Display, "display index used when no region is given")
		fs.IntVar(&f.loopCount, "loop", d.LoopCount, "times the animation repeats, 0 for forever")
	}

	f.targetSize = d.TargetSize
	fs.Var(&f.targetSize, "target-size", "shrink the GIF until it fits, e.g. 2MB or 500KB (0 keeps the original)")
	fs.Float64Var(&f.lossStep, "loss-step", d.LossStep, "dimension loss added per shrink attempt")
	fs.StringVar(&f.filter, "filter", d.Filter.String(), "scaling filter: nearest or bilinear")
	fs.IntVar(&f.maxIterations, "max-iterations", d.MaxIterations, "give up shrinking after this many attempts")
	fs.IntVar(&f.minDimension, "min-dimension", d.MinDimension, "give up shrinking before width or height drops below this")
	fs.StringVar(&f.quantizer, "quantizer", d.Quantizer.String(), "palette builder: median-cut or palgen")
}

func (f *settingsFlags) apply(s *settings.Settings, changed map[string]bool) error {
	if changed["output"] {
		s.OutputFilename = f.output
	}
	if changed["output-method"] {
		m, err := store.ParseOutputMethod(f.outputMethod)
		if err != nil {
			return flagError("output-method", err)
		}
		s.OutputMethod = m
	}
	if changed["fps"] {
		s.FrameRate = framerate.PerSecond(f.fps)
	}
	if changed["duration"] {
		s.Duration = settings.Duration(f.duration)
	}
	if changed["region"] {
		r, err := raster.ParseRegion(f.region)
		if err != nil {
			return flagError("region", err)
		}
		s.Region = r
	}
	if changed["display"] {
		s.Display = f.display
	}
	if changed["loop"] {
		s.LoopCount = f.loopCount
	}
	if changed["target-size"] {
		s.TargetSize = f.targetSize
	}
	if changed["loss-step"] {
		s.LossStep = f.lossStep
	}
	if changed["filter"] {
		filter, err := raster.ParseFilter(f.filter)
		if err != nil {
			return flagError("filter", err)
		}
		s.Filter = filter
	}
	if changed["max-iterations"] {
		s.MaxIterations = f.maxIterations
	}
	if changed["min-dimension"] {
		s.MinDimension = f.minDimension
	}
	if changed["quantizer"] {
		q, err := gifenc.ParseQuantizer(f.quantizer)
		if err != nil {
			return flagError("quantizer", err)
		}
		s.Quantizer = q
	}
	return nil
}

func flagError(name string, err error) error {
	return fmt.Errorf("%w: --%v: %v", settings.ErrInvalidSettings, name, err)
}

func changedFlags(fs *pflag.FlagSet) map[string]bool {
	changed := map[string]bool{}
	fs.Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	return changed
}
