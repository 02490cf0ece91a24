package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nvlled/screencage/fitter"
	"github.com/nvlled/screencage/gifenc"
	"github.com/nvlled/screencage/pipeline"
	"github.com/nvlled/screencage/sampler"
	"github.com/nvlled/screencage/settings"
	"github.com/nvlled/screencage/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type app struct {
	configPath *string
	log        *zerolog.Logger
}

func (a *app) settingsPath() string {
	if *a.configPath != "" {
		return *a.configPath
	}
	return settings.DefaultPath()
}

// resolve layers defaults, the settings file, the environment and the flags
// that were set on cmd.
func (a *app) resolve(cmd *cobra.Command, flags *settingsFlags) (settings.Settings, error) {
	log := *a.log
	path := a.settingsPath()

	s, found, err := settings.Load(path, settings.Default())
	if err != nil {
		return s, fmt.Errorf("load settings: %w", err)
	}
	if found {
		log.Debug().Str("file", path).Msg("settings loaded")
	} else if *a.configPath != "" {
		log.Warn().Str("file", path).Msg("settings file not found, using defaults")
	}

	changed := changedFlags(cmd.Flags())
	if err := settings.ApplyEnv(&s, changed); err != nil {
		return s, err
	}
	if err := flags.apply(&s, changed); err != nil {
		return s, err
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	log.Debug().Interface("settings", s).Msg("configuration")
	return s, nil
}

// newPipeline builds a pipeline for s. A zero delay uses the capture
// interval.
func (a *app) newPipeline(s settings.Settings, delay time.Duration, listener func(pipeline.Event)) *pipeline.Pipeline {
	log := *a.log
	if delay <= 0 {
		delay = s.Interval()
	}
	saver := &store.FileStore{
		Filename: s.OutputFilename,
		Method:   s.OutputMethod,
		Logger:   log.With().Str("component", "store").Logger(),
	}
	cache := store.NewCache(log.With().Str("component", "cache").Logger())
	return pipeline.New(pipelineConfig(s, delay, log), cache, saver, listener)
}

func pipelineConfig(s settings.Settings, delay time.Duration, log zerolog.Logger) pipeline.Config {
	return pipeline.Config{
		Sampler: sampler.Options{Interval: s.Interval(), Duration: s.TotalDuration()},
		Encoder: gifenc.Options{Delay: delay, LoopCount: s.LoopCount, Quantizer: s.Quantizer},
		Fitter: fitter.Options{
			LossStep:      s.LossStep,
			Filter:        s.Filter,
			MaxIterations: s.MaxIterations,
			MinDimension:  s.MinDimension,
		},
		Logger: log,
	}
}

// progressLogger reports pipeline events, throttled to whole percent steps.
func (a *app) progressLogger() func(pipeline.Event) {
	log := *a.log
	last := -10
	return func(ev pipeline.Event) {
		switch ev.Kind {
		case pipeline.EventState:
			last = -10
			log.Info().Stringer("state", ev.State).Msg("pipeline")
		case pipeline.EventCaptureProgress, pipeline.EventResizeProgress:
			pct := int(ev.Progress * 100)
			if pct/10 == last/10 {
				return
			}
			last = pct
			e := log.Info().Int("percent", pct)
			if ev.ByteSize > 0 {
				e = e.Int("bytes", ev.ByteSize)
			}
			e.Msg(ev.State.String())
		case pipeline.EventFrames:
			log.Debug().Int("frames", ev.FrameCount).Msg("frames captured")
		case pipeline.EventError:
			log.Warn().Msg(ev.Message)
		}
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// finish resizes when a target is set, saves the result and releases the
// pipeline.
func (a *app) finish(ctx context.Context, p *pipeline.Pipeline, s settings.Settings) (string, error) {
	log := *a.log
	defer func() {
		if _, err := p.Discard(); err != nil {
			log.Warn().Err(err).Msg("releasing recording")
		}
	}()

	snap := p.Snapshot()
	if s.TargetSize > 0 {
		var err error
		snap, err = p.Resize(ctx, int(s.TargetSize))
		if err != nil {
			return "", fmt.Errorf("%v: %w", pipeline.Message(err), err)
		}
	}

	filename, err := p.Save(ctx)
	if err != nil {
		return "", err
	}

	e := log.Info().
		Str("file", filename).
		Int("frames", snap.Document.FrameCount).
		Str("size", fmt.Sprintf("%vx%v", snap.Document.Width, snap.Document.Height)).
		Stringer("bytes", settings.ByteSize(snap.Document.ByteSize))
	if snap.Resized {
		e = e.Stringer("original", settings.ByteSize(snap.Original.ByteSize)).
			Float64("loss", snap.LossFraction)
	}
	e.Msg("saved")
	return filename, nil
}
