package settings

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/nvlled/screencage/framerate"
	"github.com/nvlled/screencage/gifenc"
	"github.com/nvlled/screencage/raster"
	"github.com/nvlled/screencage/store"
)

const envPrefix = "SCREENCAGE_"

// ApplyEnv overrides s with SCREENCAGE_* variables. Names in changed (flag
// names that were set on the command line) are left alone.
func ApplyEnv(s *Settings, changed map[string]bool) error {
	return applyEnv(s, changed, os.LookupEnv)
}

func applyEnv(s *Settings, changed map[string]bool, lookup func(string) (string, bool)) error {
	get := func(flag, env string) (string, bool) {
		if changed[flag] {
			return "", false
		}
		v, ok := lookup(envPrefix + env)
		return v, ok && v != ""
	}

	if v, ok := get("output", "OUTPUT"); ok {
		s.OutputFilename = v
	}
	if v, ok := get("output-method", "OUTPUT_METHOD"); ok {
		m, err := store.ParseOutputMethod(v)
		if err != nil {
			return envError("OUTPUT_METHOD", err)
		}
		s.OutputMethod = m
	}
	if v, ok := get("fps", "FPS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("FPS", err)
		}
		s.FrameRate = framerate.PerSecond(n)
	}
	if v, ok := get("duration", "DURATION"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("DURATION", err)
		}
		s.Duration = Duration(d)
	}
	if v, ok := get("display", "DISPLAY_INDEX"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("DISPLAY_INDEX", err)
		}
		s.Display = n
	}
	if v, ok := get("target-size", "TARGET_SIZE"); ok {
		b, err := ParseByteSize(v)
		if err != nil {
			return envError("TARGET_SIZE", err)
		}
		s.TargetSize = b
	}
	if v, ok := get("loss-step", "LOSS_STEP"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError("LOSS_STEP", err)
		}
		s.LossStep = f
	}
	if v, ok := get("min-dimension", "MIN_DIMENSION"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("MIN_DIMENSION", err)
		}
		s.MinDimension = n
	}
	if v, ok := get("filter", "FILTER"); ok {
		f, err := raster.ParseFilter(v)
		if err != nil {
			return envError("FILTER", err)
		}
		s.Filter = f
	}
	if v, ok := get("quantizer", "QUANTIZER"); ok {
		q, err := gifenc.ParseQuantizer(v)
		if err != nil {
			return envError("QUANTIZER", err)
		}
		s.Quantizer = q
	}
	return nil
}

func envError(name string, err error) error {
	return fmt.Errorf("%w: %v%v: %v", ErrInvalidSettings, envPrefix, name, err)
}
