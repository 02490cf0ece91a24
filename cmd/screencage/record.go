package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/nvlled/screencage/pipeline"
	"github.com/nvlled/screencage/raster"
	"github.com/nvlled/screencage/sampler"
	"github.com/nvlled/screencage/settings"
	"github.com/nvlled/screencage/surface"
	"github.com/spf13/cobra"
)

// demoRegion is captured from the synthetic surface when no region is set.
var demoRegion = raster.Region{Width: 320, Height: 240}

type recordOptions struct {
	demo        bool
	async       bool
	interactive bool
}

func newRecordCommand(a *app) *cobra.Command {
	var (
		flags settingsFlags
		opts  recordOptions
	)
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a screen region to a GIF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.resolve(cmd, &flags)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			if opts.interactive {
				return a.recordInteractive(ctx, cmd, &flags, s, opts)
			}
			_, err = a.record(ctx, s, opts)
			return err
		},
	}
	flags.register(cmd.Flags(), settings.Default(), true)
	cmd.Flags().BoolVar(&opts.demo, "demo", false, "record a generated test pattern instead of the screen")
	cmd.Flags().BoolVar(&opts.async, "async", false, "request frames through the asynchronous capture path")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "wait for Enter before each recording and reload settings when the file changes")
	return cmd
}

// captureTarget picks the surface and region for s.
func captureTarget(s settings.Settings, opts recordOptions) (raster.Region, sampler.Target, error) {
	var (
		source sampler.DirectSurface
		region = s.Region
	)
	if opts.demo {
		source = &surface.Synthetic{}
		if !region.Valid() {
			region = demoRegion
		}
	} else {
		source = surface.Screen{}
		if !region.Valid() {
			r, err := surface.DisplayRegion(s.Display, 0)
			if err != nil {
				return region, sampler.Target{}, fmt.Errorf("%w: %v", sampler.ErrInvalidSurface, err)
			}
			region = r
		}
	}

	if opts.async {
		return region, sampler.Target{Callback: surface.Deferred{Source: source}}, nil
	}
	return region, sampler.Target{Direct: source}, nil
}

func (a *app) record(ctx context.Context, s settings.Settings, opts recordOptions) (string, error) {
	log := *a.log
	region, target, err := captureTarget(s, opts)
	if err != nil {
		return "", err
	}

	p := a.newPipeline(s, 0, a.progressLogger())
	log.Info().
		Stringer("region", region).
		Stringer("rate", s.FrameRate).
		Dur("duration", s.TotalDuration()).
		Msg("recording")

	if _, err := p.Capture(ctx, region, target); err != nil {
		return "", fmt.Errorf("%v: %w", pipeline.Message(err), err)
	}
	return a.finish(ctx, p, s)
}

func (a *app) recordInteractive(ctx context.Context, cmd *cobra.Command, flags *settingsFlags, s settings.Settings, opts recordOptions) error {
	log := *a.log

	var mu sync.Mutex
	current := s
	path := a.settingsPath()
	err := settings.Watch(ctx, path, settings.Default(), log, func(_ settings.Settings, err error) {
		if err != nil {
			log.Warn().Err(err).Msg("keeping previous settings")
			return
		}
		// Re-resolve so env and flags keep their precedence over the file.
		next, err := a.resolve(cmd, flags)
		if err != nil {
			log.Warn().Err(err).Msg("keeping previous settings")
			return
		}
		mu.Lock()
		current = next
		mu.Unlock()
	})
	if err != nil {
		log.Warn().Err(err).Msg("settings will not be reloaded")
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Fprintln(os.Stderr, "press Enter to record, q to quit")
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = l
		}
		if strings.TrimSpace(strings.ToLower(line)) == "q" {
			return nil
		}

		mu.Lock()
		next := current
		mu.Unlock()
		if _, err := a.record(ctx, next, opts); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error().Err(err).Msg("recording failed")
		}
	}
}
