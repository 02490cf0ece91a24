// Package sampler captures a region of a surface at a fixed interval and
// reports progress and the growing frame list as events.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nvlled/screencage/raster"
	"github.com/rs/zerolog"
)

type Options struct {
	Interval time.Duration
	Duration time.Duration
	Logger   zerolog.Logger
}

type Sampler struct {
	opts Options
	busy chan struct{}

	sleep func(ctx context.Context, d time.Duration) error
}

func New(opts Options) *Sampler {
	return &Sampler{
		opts:  opts,
		busy:  make(chan struct{}, 1),
		sleep: sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sampler) strategyFor(target Target) (strategy, error) {
	switch {
	case target.Direct != nil:
		if !available(target.Direct) {
			return nil, ErrInvalidSurface
		}
		return directStrategy{surface: target.Direct}, nil
	case target.Callback != nil:
		if !available(target.Callback) {
			return nil, ErrInvalidSurface
		}
		return callbackStrategy{surface: target.Callback, busy: s.busy}, nil
	}
	return nil, ErrInvalidSurface
}

// Capture runs one capture session against target. emit receives, in order:
// an active progress event at 0, then for every interval a progress event
// followed by the cumulative frame list. On failure or cancellation the
// collected frames are dropped, an error event (failures only) and an idle
// progress event are emitted, and the returned session is empty.
func (s *Sampler) Capture(ctx context.Context, region raster.Region, target Target, emit func(Event)) (Session, error) {
	if emit == nil {
		emit = func(Event) {}
	}
	log := s.opts.Logger

	fail := func(err error) (Session, error) {
		if !errors.Is(err, ErrCancelled) {
			emit(Event{Kind: EventError, Err: err})
		}
		emit(Event{Kind: EventProgress, State: StateIdle})
		return Session{}, err
	}

	if !region.Valid() {
		return fail(fmt.Errorf("%w: %v", ErrInvalidCaptureArea, region))
	}
	if s.opts.Interval <= 0 || s.opts.Duration <= 0 {
		return fail(fmt.Errorf("%w: interval=%v duration=%v", ErrInvalidTiming, s.opts.Interval, s.opts.Duration))
	}
	capturer, err := s.strategyFor(target)
	if err != nil {
		return fail(err)
	}

	session := Session{
		Interval:      s.opts.Interval,
		TotalDuration: s.opts.Duration,
		Frames:        make([]raster.Frame, 0, FrameCount(s.opts.Interval, s.opts.Duration)),
	}

	log.Info().
		Str("region", region.String()).
		Dur("interval", session.Interval).
		Dur("duration", session.TotalDuration).
		Msg("capture started")

	emit(Event{Kind: EventProgress, State: StateActive, Progress: 0})

	for session.Elapsed < session.TotalDuration {
		if ctx.Err() != nil {
			log.Info().Int("frames", len(session.Frames)).Msg("capture cancelled")
			return fail(ErrCancelled)
		}
		if err := s.sleep(ctx, session.Interval); err != nil {
			log.Info().Int("frames", len(session.Frames)).Msg("capture cancelled")
			return fail(ErrCancelled)
		}

		session.Elapsed += session.Interval
		emit(Event{Kind: EventProgress, State: StateActive, Progress: session.Progress()})

		frame, err := capturer.capture(ctx, region)
		if ctx.Err() != nil {
			// A capture that resolves after cancellation is dropped.
			log.Info().Int("frames", len(session.Frames)).Msg("capture cancelled with a frame in flight")
			return fail(ErrCancelled)
		}
		index := len(session.Frames)
		if err != nil {
			log.Error().Err(err).Int("frame", index).Msg("capture failed")
			return fail(&CaptureError{Msg: "surface read failed", Frame: index, Err: err})
		}
		if frame.Empty() {
			return fail(&CaptureError{Msg: "surface returned an empty frame", Frame: index})
		}
		if index > 0 && !frame.SameSize(session.Frames[0]) {
			return fail(&CaptureError{
				Msg:   fmt.Sprintf("frame size changed from %vx%v to %vx%v", session.Frames[0].Width, session.Frames[0].Height, frame.Width, frame.Height),
				Frame: index,
			})
		}

		session.Frames = append(session.Frames, frame)
		log.Debug().Int("frame", index).Dur("elapsed", session.Elapsed).Msg("captured frame")

		frames := session.Frames[:len(session.Frames):len(session.Frames)]
		emit(Event{Kind: EventFrames, State: StateActive, Frames: frames})
	}

	log.Info().Int("frames", len(session.Frames)).Msg("capture finished")
	return session, nil
}

// Stream runs Capture on its own goroutine and delivers its events on the
// returned channel, which is closed when the run ends.
func (s *Sampler) Stream(ctx context.Context, region raster.Region, target Target) <-chan Event {
	ch := make(chan Event, 1)
	go func() {
		defer close(ch)
		s.Capture(ctx, region, target, func(ev Event) {
			ch <- ev
		})
	}()
	return ch
}
