package sampler

import (
	"fmt"
	"time"

	"github.com/nvlled/screencage/raster"
)

type State int

const (
	StateIdle State = iota
	StateActive
)

func (state State) String() string {
	switch state {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	}
	return "invalid-state"
}

type EventKind int

const (
	// EventProgress carries State and Progress.
	EventProgress EventKind = iota
	// EventFrames carries the cumulative frame list.
	EventFrames
	// EventError carries Err.
	EventError
)

// Event is one step of a capture run. Only the fields named by Kind are set.
type Event struct {
	Kind     EventKind
	State    State
	Progress float64
	Frames   []raster.Frame
	Err      error
}

func (ev Event) String() string {
	switch ev.Kind {
	case EventProgress:
		return fmt.Sprintf("progress %v %.2f", ev.State, ev.Progress)
	case EventFrames:
		return fmt.Sprintf("frames %v", len(ev.Frames))
	case EventError:
		return fmt.Sprintf("error %v", ev.Err)
	}
	return "invalid-event"
}

// Session is the state of one capture run. Frames only grows.
type Session struct {
	Elapsed       time.Duration
	Interval      time.Duration
	TotalDuration time.Duration
	Frames        []raster.Frame
}

// Progress is the elapsed fraction of the total duration.
func (session *Session) Progress() float64 {
	if session.TotalDuration <= 0 {
		return 0
	}
	return float64(session.Elapsed) / float64(session.TotalDuration)
}

// FrameCount returns the number of frames a run with these timings yields
// when duration is a multiple of interval.
func FrameCount(interval, duration time.Duration) int {
	if interval <= 0 {
		return 0
	}
	n := duration / interval
	if duration%interval != 0 {
		n++
	}
	return int(n)
}
