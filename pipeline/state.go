package pipeline

import (
	"fmt"

	"github.com/nvlled/screencage/gifenc"
	"github.com/nvlled/screencage/raster"
)

type State int

const (
	StateIdle State = iota
	StateCapturing
	StateEncoding
	StateResizing
	StateReady
)

func (state State) String() string {
	switch state {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateEncoding:
		return "encoding"
	case StateResizing:
		return "resizing"
	case StateReady:
		return "ready"
	}
	return "invalid-state"
}

type EventKind int

const (
	EventState EventKind = iota
	EventCaptureProgress
	EventFrames
	EventResizeProgress
	EventError
)

// Event is delivered to the pipeline listener. Only the fields named by
// Kind are set.
type Event struct {
	Kind       EventKind
	State      State
	Progress   float64
	FrameCount int
	ByteSize   int
	Err        error
	Message    string
}

func (ev Event) String() string {
	switch ev.Kind {
	case EventState:
		return fmt.Sprintf("state %v", ev.State)
	case EventCaptureProgress:
		return fmt.Sprintf("capture %.0f%%", ev.Progress*100)
	case EventFrames:
		return fmt.Sprintf("frames %v", ev.FrameCount)
	case EventResizeProgress:
		return fmt.Sprintf("resize %.0f%% (%v bytes)", ev.Progress*100, ev.ByteSize)
	case EventError:
		return fmt.Sprintf("error: %v", ev.Message)
	}
	return "invalid-event"
}

// Snapshot is the pipeline state after a transition. Frames and documents
// are shared with the pipeline and must not be modified.
type Snapshot struct {
	State    State
	Frames   []raster.Frame
	Original *gifenc.Document
	// Document is the most recent document: the resized one if any,
	// otherwise the original.
	Document     *gifenc.Document
	Resized      bool
	LossFraction float64
}
