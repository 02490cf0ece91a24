package sampler

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCaptureArea = errors.New("sampler: invalid capture area")
	ErrInvalidSurface     = errors.New("sampler: capture surface is unavailable")
	ErrInvalidTiming      = errors.New("sampler: interval and duration must be positive")
	ErrCaptureFailed      = errors.New("sampler: capture failed")
	ErrCancelled          = errors.New("sampler: capture cancelled")
)

// CaptureError reports a failed surface read. It matches ErrCaptureFailed
// with errors.Is.
type CaptureError struct {
	Msg   string
	Frame int
	Err   error
}

func (e *CaptureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capture failed at frame %v: %v: %v", e.Frame, e.Msg, e.Err)
	}
	return fmt.Sprintf("capture failed at frame %v: %v", e.Frame, e.Msg)
}

func (e *CaptureError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCaptureFailed}
	}
	return []error{ErrCaptureFailed, e.Err}
}
