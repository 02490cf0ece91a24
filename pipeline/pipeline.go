// Package pipeline runs capture, encode and resize as one sequence and owns
// the documents produced along the way.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nvlled/screencage/fitter"
	"github.com/nvlled/screencage/gifenc"
	"github.com/nvlled/screencage/raster"
	"github.com/nvlled/screencage/sampler"
	"github.com/nvlled/screencage/store"
	"github.com/rs/zerolog"
)

// Saver persists a finished GIF and returns a handle to it.
type Saver interface {
	Save(ctx context.Context, data []byte) (string, error)
}

type Config struct {
	Sampler sampler.Options
	Encoder gifenc.Options
	Fitter  fitter.Options
	Logger  zerolog.Logger
}

type cachedDoc struct {
	doc    gifenc.Document
	handle string
}

type Pipeline struct {
	mu      sync.Mutex
	state   State
	frames  []raster.Frame
	orig    *cachedDoc
	resized *fitter.Attempt
	cancel  context.CancelFunc

	sampler *sampler.Sampler
	encoder *gifenc.Encoder
	fitter  *fitter.Fitter
	cache   fitter.Cache
	saver   Saver

	listener func(Event)
	log      zerolog.Logger
}

// New builds a pipeline. cache receives every encoded document; saver is
// used by Save. listener may be nil.
func New(cfg Config, cache fitter.Cache, saver Saver, listener func(Event)) *Pipeline {
	cfg.Sampler.Logger = cfg.Logger.With().Str("component", "sampler").Logger()
	cfg.Encoder.Logger = cfg.Logger.With().Str("component", "encoder").Logger()
	cfg.Fitter.Logger = cfg.Logger.With().Str("component", "fitter").Logger()
	if cache == nil {
		cache = store.NewCache(cfg.Logger)
	}
	encoder := gifenc.New(cfg.Encoder)
	if listener == nil {
		listener = func(Event) {}
	}
	return &Pipeline{
		sampler:  sampler.New(cfg.Sampler),
		encoder:  encoder,
		fitter:   fitter.New(encoder, cache, cfg.Fitter),
		cache:    cache,
		saver:    saver,
		listener: listener,
		log:      cfg.Logger,
	}
}

func (p *Pipeline) emit(ev Event) { p.listener(ev) }

func (p *Pipeline) setState(state State) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
	p.log.Debug().Stringer("state", state).Msg("pipeline state")
	p.emit(Event{Kind: EventState, State: state})
}

// begin moves from one of the allowed states to next and returns a context
// that Cancel can stop.
func (p *Pipeline) begin(ctx context.Context, next State, allowed ...State) (context.Context, error) {
	p.mu.Lock()
	ok := false
	for _, s := range allowed {
		if p.state == s {
			ok = true
			break
		}
	}
	if !ok {
		state := p.state
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot start %v while %v", ErrInvalidTransition, next, state)
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.state = next
	p.mu.Unlock()

	p.log.Debug().Stringer("state", next).Msg("pipeline state")
	p.emit(Event{Kind: EventState, State: next})
	return runCtx, nil
}

func (p *Pipeline) end() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()
}

// Cancel stops the running capture or resize, if any. The pipeline returns
// to idle once the running step notices.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *Pipeline) snapshotLocked() Snapshot {
	snap := Snapshot{State: p.state, Frames: p.frames}
	if p.orig != nil {
		orig := p.orig.doc
		snap.Original = &orig
		snap.Document = &orig
	}
	if p.resized != nil {
		doc := p.resized.Document
		snap.Document = &doc
		snap.Resized = true
		snap.LossFraction = p.resized.LossFraction
	}
	return snap
}

func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// takeLocked detaches every cached document and the frame list. p.mu must
// be held.
func (p *Pipeline) takeLocked() (*fitter.Attempt, *cachedDoc) {
	resized, orig := p.resized, p.orig
	p.resized, p.orig, p.frames = nil, nil, nil
	return resized, orig
}

// release drops every cached document and the frame list. Discard failures
// are collected and returned; the pipeline state is cleared regardless.
func (p *Pipeline) release() error {
	p.mu.Lock()
	resized, orig := p.takeLocked()
	p.mu.Unlock()
	return p.discardDocs(resized, orig)
}

func (p *Pipeline) discardDocs(resized *fitter.Attempt, orig *cachedDoc) error {
	var errs []error
	if resized != nil {
		if err := p.cache.Discard(resized.Handle); err != nil {
			errs = append(errs, err)
		}
	}
	if orig != nil {
		if err := p.cache.Discard(orig.handle); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// fail surfaces err and returns to idle. Cleanup discard failures are
// logged and swallowed.
func (p *Pipeline) fail(err error) (Snapshot, error) {
	p.end()
	if discardErr := p.release(); discardErr != nil {
		p.log.Warn().Err(discardErr).Msg("releasing documents after failure")
	}

	if errors.Is(err, sampler.ErrCancelled) || errors.Is(err, context.Canceled) {
		p.log.Info().Err(err).Msg("pipeline cancelled")
	} else {
		p.log.Error().Err(err).Msg("pipeline failed")
	}
	p.emit(Event{Kind: EventError, Err: err, Message: Message(err)})
	p.setState(StateIdle)
	return p.Snapshot(), err
}

// Capture records region from target, encodes the frames and leaves the
// pipeline ready with the original document.
func (p *Pipeline) Capture(ctx context.Context, region raster.Region, target sampler.Target) (Snapshot, error) {
	runCtx, err := p.begin(ctx, StateCapturing, StateIdle)
	if err != nil {
		return p.Snapshot(), err
	}

	session, err := p.sampler.Capture(runCtx, region, target, func(ev sampler.Event) {
		switch ev.Kind {
		case sampler.EventProgress:
			if ev.State == sampler.StateActive {
				p.emit(Event{Kind: EventCaptureProgress, State: StateCapturing, Progress: ev.Progress})
			}
		case sampler.EventFrames:
			p.emit(Event{Kind: EventFrames, State: StateCapturing, FrameCount: len(ev.Frames)})
		}
	})
	if err != nil {
		return p.fail(err)
	}
	// A cancel that arrives after the last frame still aborts the run.
	if runCtx.Err() != nil {
		return p.fail(sampler.ErrCancelled)
	}

	p.setState(StateEncoding)
	return p.encodeOriginal(session.Frames)
}

// Load takes frames recorded elsewhere, such as the frames of an existing
// GIF, and encodes them as the original document.
func (p *Pipeline) Load(ctx context.Context, frames []raster.Frame) (Snapshot, error) {
	if _, err := p.begin(ctx, StateEncoding, StateIdle); err != nil {
		return p.Snapshot(), err
	}
	return p.encodeOriginal(frames)
}

func (p *Pipeline) encodeOriginal(frames []raster.Frame) (Snapshot, error) {
	p.mu.Lock()
	p.frames = frames
	p.mu.Unlock()

	doc, err := p.encoder.Encode(frames)
	if err != nil {
		return p.fail(err)
	}
	handle, err := p.cache.Store(doc)
	if err != nil {
		return p.fail(err)
	}

	p.mu.Lock()
	p.orig = &cachedDoc{doc: doc, handle: handle}
	p.mu.Unlock()

	p.log.Info().
		Int("frames", doc.FrameCount).
		Int("bytes", doc.ByteSize).
		Msg("recording encoded")

	p.end()
	p.setState(StateReady)
	return p.Snapshot(), nil
}

// Resize shrinks the original frames until the document fits targetSize.
// A previous resize result is discarded first. If the original already
// fits, the pipeline stays on it.
func (p *Pipeline) Resize(ctx context.Context, targetSize int) (Snapshot, error) {
	runCtx, err := p.begin(ctx, StateResizing, StateReady)
	if err != nil {
		return p.Snapshot(), err
	}

	p.mu.Lock()
	orig, frames, previous := p.orig, p.frames, p.resized
	p.mu.Unlock()
	if orig == nil {
		return p.fail(fmt.Errorf("%w: no recording to resize", ErrInvalidTransition))
	}

	if previous != nil {
		p.mu.Lock()
		p.resized = nil
		p.mu.Unlock()
		if err := p.cache.Discard(previous.Handle); err != nil {
			return p.fail(fmt.Errorf("%w: %w", fitter.ErrResizeFailed, err))
		}
	}

	if orig.doc.ByteSize <= targetSize {
		p.log.Info().Int("bytes", orig.doc.ByteSize).Int("target", targetSize).Msg("already within target size")
		p.end()
		p.setState(StateReady)
		return p.Snapshot(), nil
	}

	attempt, err := p.fitter.Fit(runCtx, frames, orig.doc.ByteSize, targetSize, func(pr fitter.Progress) {
		p.emit(Event{Kind: EventResizeProgress, State: StateResizing, Progress: pr.Value, ByteSize: pr.ByteSize})
	})
	if err != nil {
		return p.fail(err)
	}

	p.mu.Lock()
	p.resized = &attempt
	p.mu.Unlock()

	p.end()
	p.setState(StateReady)
	return p.Snapshot(), nil
}

// ResetToOriginal drops the resized document and returns to the original
// recording.
func (p *Pipeline) ResetToOriginal() (Snapshot, error) {
	p.mu.Lock()
	if p.state != StateReady {
		state := p.state
		p.mu.Unlock()
		return p.Snapshot(), fmt.Errorf("%w: cannot reset while %v", ErrInvalidTransition, state)
	}
	resized := p.resized
	p.resized = nil
	p.mu.Unlock()

	var err error
	if resized != nil {
		if err = p.cache.Discard(resized.Handle); err != nil {
			p.log.Warn().Err(err).Str("handle", resized.Handle).Msg("discarding resized document")
		}
	}
	p.emit(Event{Kind: EventState, State: StateReady})
	return p.Snapshot(), err
}

// Discard releases every document and the frame list and returns to idle.
func (p *Pipeline) Discard() (Snapshot, error) {
	p.mu.Lock()
	if p.state != StateReady && p.state != StateIdle {
		state := p.state
		p.mu.Unlock()
		return p.Snapshot(), fmt.Errorf("%w: cannot discard while %v", ErrInvalidTransition, state)
	}
	// Leave Ready before the documents go, so nothing can start on them.
	resized, orig := p.takeLocked()
	p.state = StateIdle
	p.mu.Unlock()

	p.log.Debug().Stringer("state", StateIdle).Msg("pipeline state")
	p.emit(Event{Kind: EventState, State: StateIdle})

	err := p.discardDocs(resized, orig)
	if err != nil {
		p.log.Warn().Err(err).Msg("discarding documents")
	}
	return p.Snapshot(), err
}

// Save hands the current document to the saver. The pipeline stays ready,
// so a failed save can be retried.
func (p *Pipeline) Save(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.state != StateReady {
		state := p.state
		p.mu.Unlock()
		return "", fmt.Errorf("%w: cannot save while %v", ErrInvalidTransition, state)
	}
	snap := p.snapshotLocked()
	p.mu.Unlock()

	if snap.Document == nil {
		return "", fmt.Errorf("%w: nothing to save", ErrInvalidTransition)
	}
	if p.saver == nil {
		return "", errors.New("pipeline: no saver configured")
	}
	handle, err := p.saver.Save(ctx, snap.Document.Bytes)
	if err != nil {
		p.log.Error().Err(err).Msg("save failed")
		p.emit(Event{Kind: EventError, Err: err, Message: Message(err)})
		return "", err
	}
	return handle, nil
}
