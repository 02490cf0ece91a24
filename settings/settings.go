// Package settings loads and saves recorder configuration. Values are
// layered: defaults, then the settings file, then SCREENCAGE_* environment
// variables, then command line flags.
package settings

import (
	"errors"
	"fmt"
	"time"

	"github.com/nvlled/screencage/framerate"
	"github.com/nvlled/screencage/gifenc"
	"github.com/nvlled/screencage/raster"
	"github.com/nvlled/screencage/store"
)

const (
	DefaultSettingsFile  = "screencage.toml"
	DefaultOutputFileGif = "capture.gif"
)

var ErrInvalidSettings = errors.New("settings: invalid settings")

var defaultFrameRate = framerate.PerSecond(10)

// Duration is a time.Duration written as text ("1.5s") in settings files.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

type Settings struct {
	OutputFilename string             `json:"outputFilename" toml:"output_filename"`
	OutputMethod   store.OutputMethod `json:"outputMethod" toml:"output_method"`

	FrameRate framerate.T `json:"frameRate" toml:"frame_rate"`
	Duration  Duration    `json:"duration" toml:"duration"`

	// Region is captured on Display; a zero region means the whole display.
	Region  raster.Region `json:"region" toml:"region"`
	Display int           `json:"display" toml:"display"`

	// TargetSize is the byte budget; 0 keeps the original recording.
	TargetSize    ByteSize      `json:"targetSize" toml:"target_size"`
	LossStep      float64       `json:"lossStep" toml:"loss_step"`
	Filter        raster.Filter `json:"filter" toml:"filter"`
	MaxIterations int           `json:"maxIterations" toml:"max_iterations"`
	// MinDimension is the smallest width or height a resize may produce.
	MinDimension  int           `json:"minDimension" toml:"min_dimension"`

	Quantizer gifenc.Quantizer `json:"quantizer" toml:"quantizer"`
	LoopCount int              `json:"loopCount" toml:"loop_count"`
}

func Default() Settings {
	return Settings{
		OutputFilename: DefaultOutputFileGif,
		OutputMethod:   store.OutputMethodNewFile,
		FrameRate:      defaultFrameRate,
		Duration:       Duration(3 * time.Second),
		LossStep:       0.05,
		Filter:         raster.FilterBilinear,
		MaxIterations:  100,
		MinDimension:   1,
		Quantizer:      gifenc.QuantizerMedianCut,
	}
}

// Interval is the time between captured frames.
func (s Settings) Interval() time.Duration { return s.FrameRate.Duration() }

func (s Settings) TotalDuration() time.Duration { return time.Duration(s.Duration) }

func (s Settings) Validate() error {
	switch {
	case s.OutputFilename == "":
		return fmt.Errorf("%w: output filename is empty", ErrInvalidSettings)
	case !s.FrameRate.Valid():
		return fmt.Errorf("%w: frame rate %v", ErrInvalidSettings, s.FrameRate)
	case s.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive", ErrInvalidSettings)
	case s.TotalDuration() < s.Interval():
		return fmt.Errorf("%w: duration %v is shorter than one frame (%v)", ErrInvalidSettings, s.TotalDuration(), s.Interval())
	case s.LossStep <= 0 || s.LossStep >= 1:
		return fmt.Errorf("%w: loss step %v must be between 0 and 1", ErrInvalidSettings, s.LossStep)
	case s.TargetSize < 0:
		return fmt.Errorf("%w: negative target size", ErrInvalidSettings)
	case s.MaxIterations < 0:
		return fmt.Errorf("%w: negative max iterations", ErrInvalidSettings)
	case s.MinDimension < 0:
		return fmt.Errorf("%w: negative min dimension", ErrInvalidSettings)
	case s.Filter < 0 || s.Filter >= raster.Filter_Size:
		return fmt.Errorf("%w: unknown filter", ErrInvalidSettings)
	case s.LoopCount < 0 || s.LoopCount > 0xFFFF:
		return fmt.Errorf("%w: loop count %v", ErrInvalidSettings, s.LoopCount)
	case s.Region != (raster.Region{}) && !s.Region.Valid():
		return fmt.Errorf("%w: region %v has no area", ErrInvalidSettings, s.Region)
	}
	return nil
}
