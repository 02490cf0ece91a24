package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/nvlled/screencage/fitter"
	"github.com/nvlled/screencage/gifenc"
	"github.com/nvlled/screencage/sampler"
	"github.com/nvlled/screencage/store"
)

var ErrInvalidTransition = errors.New("pipeline: invalid transition")

// Message turns err into text suitable for showing to the user.
func Message(err error) string {
	var captureErr *sampler.CaptureError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, sampler.ErrInvalidCaptureArea):
		return "The capture area is empty. Select a region with a positive width and height."
	case errors.Is(err, sampler.ErrInvalidSurface):
		return "Nothing is available to capture from."
	case errors.Is(err, sampler.ErrInvalidTiming):
		return "The capture interval and duration must both be positive."
	case errors.As(err, &captureErr):
		return fmt.Sprintf("Capturing frame %v failed: %v.", captureErr.Frame+1, captureErr.Msg)
	case errors.Is(err, sampler.ErrCancelled), errors.Is(err, context.Canceled):
		return "The recording was cancelled."
	case errors.Is(err, gifenc.ErrNoFramesToEncode):
		return "No frames were captured, so there is nothing to encode."
	case errors.Is(err, gifenc.ErrInconsistentFrameSize):
		return "The captured frames do not all have the same size."
	case errors.Is(err, gifenc.ErrFrameTooLarge):
		return "The captured area is too large for a GIF."
	case errors.Is(err, fitter.ErrTargetUnreachable):
		return "The GIF cannot be made small enough by downscaling. Try a larger target size or a shorter recording."
	case errors.Is(err, fitter.ErrInvalidLossStep):
		return "The resize step must be between 0 and 1."
	case errors.Is(err, store.ErrDiscardFailed):
		return "A cached GIF could not be released."
	case errors.Is(err, fitter.ErrResizeFailed):
		return "Resizing the GIF failed."
	case errors.Is(err, ErrInvalidTransition):
		return "That action is not available right now."
	}
	return "Something went wrong: " + err.Error()
}
