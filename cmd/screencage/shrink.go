package main

import (
	"context"
	"fmt"
	"image"
	"image/gif"
	"io"
	"os"
	"time"

	"github.com/nvlled/screencage/raster"
	"github.com/nvlled/screencage/settings"
	"github.com/nvlled/screencage/store"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
)

func newShrinkCommand(a *app) *cobra.Command {
	var flags settingsFlags
	cmd := &cobra.Command{
		Use:   "shrink FILE.gif...",
		Short: "Shrink existing GIFs until they fit --target-size",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.resolve(cmd, &flags)
			if err != nil {
				return err
			}
			if s.TargetSize <= 0 {
				return fmt.Errorf("%w: shrink needs a --target-size", settings.ErrInvalidSettings)
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			explicitOutput := s.OutputFilename != settings.DefaultOutputFileGif
			for _, input := range args {
				fs := s
				if !explicitOutput {
					base, _ := store.TrimExt(input)
					fs.OutputFilename = base + "-small.gif"
				}
				if _, err := a.shrink(ctx, input, fs); err != nil {
					return fmt.Errorf("%v: %w", input, err)
				}
			}
			return nil
		},
	}
	flags.register(cmd.Flags(), settings.Default(), false)
	return cmd
}

func (a *app) shrink(ctx context.Context, input string, s settings.Settings) (string, error) {
	f, err := os.Open(input)
	if err != nil {
		return "", err
	}
	defer f.Close()

	anim, err := decodeAnimation(f)
	if err != nil {
		return "", err
	}
	if anim.loopCount > 0 {
		s.LoopCount = anim.loopCount
	}
	a.log.Info().
		Str("file", input).
		Int("frames", len(anim.frames)).
		Dur("delay", anim.delay).
		Msg("loaded")

	p := a.newPipeline(s, anim.delay, a.progressLogger())
	if _, err := p.Load(ctx, anim.frames); err != nil {
		return "", err
	}
	return a.finish(ctx, p, s)
}

type animation struct {
	frames    []raster.Frame
	delay     time.Duration
	loopCount int
}

// decodeAnimation reads a GIF and renders every frame onto the full
// canvas, honouring the disposal method of the frame before it.
func decodeAnimation(r io.Reader) (animation, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return animation{}, err
	}
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() && len(g.Image) > 0 {
		bounds = g.Image[0].Bounds()
	}

	canvas := image.NewRGBA(bounds)
	anim := animation{loopCount: g.LoopCount}
	if len(g.Delay) > 0 && g.Delay[0] > 0 {
		anim.delay = time.Duration(g.Delay[0]) * 10 * time.Millisecond
	}

	for i, frame := range g.Image {
		var previous *image.RGBA
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			previous = image.NewRGBA(bounds)
			draw.Copy(previous, bounds.Min, canvas, bounds, draw.Src, nil)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		anim.frames = append(anim.frames, raster.FromImage(canvas))

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			draw.Copy(canvas, bounds.Min, previous, bounds, draw.Src, nil)
		}
	}
	return anim, nil
}
