package main

import (
	"fmt"

	"github.com/nvlled/screencage/settings"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

func newConfigCommand(a *app) *cobra.Command {
	var (
		flags settingsFlags
		write bool
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved settings, or write them to the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.resolve(cmd, &flags)
			if err != nil {
				return err
			}
			if write {
				path := a.settingsPath()
				if err := settings.Save(path, s); err != nil {
					return err
				}
				a.log.Info().Str("file", path).Msg("settings written")
				return nil
			}
			data, err := toml.Marshal(s)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	flags.register(cmd.Flags(), settings.Default(), true)
	cmd.Flags().BoolVarP(&write, "write", "w", false, "save the settings to the settings file")
	return cmd
}
