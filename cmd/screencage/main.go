package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const longHelp = `
Record a region of the screen to an animated GIF, then shrink it until it
fits a byte budget.

Settings are read from screencage.toml next to the executable (or --config),
then from SCREENCAGE_* environment variables, then from flags.
`

var exampleUsage = strings.TrimSpace(`
  screencage record --duration 5s --fps 15 --region 640x480+100+100
  screencage record --target-size 2MB --output clips/demo.gif
  screencage record --interactive
  screencage shrink --target-size 500KB big.gif
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func main() {
	var (
		cfgPath string
		verbose bool
		log     = newLogger(false)
	)

	root := &cobra.Command{
		Use:           "screencage",
		Short:         "Record the screen to a size-limited GIF",
		Long:          strings.TrimSpace(longHelp),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = newLogger(verbose)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to settings file, .toml or .json (default: screencage.toml next to the executable)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")

	app := &app{configPath: &cfgPath, log: &log}
	root.AddCommand(
		newRecordCommand(app),
		newShrinkCommand(app),
		newConfigCommand(app),
	)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("screencage")
		os.Exit(1)
	}
}
