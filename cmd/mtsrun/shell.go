package main

import (
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Deploy components and open a starlark console",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := newSettings(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		return withDeployment(ctx, settings, func(d *deployed) error {
			d.console.REPL(ctx)
			return nil
		})
	},
}

func init() {
	flags := shellCmd.Flags()
	flags.String(keyListen, "", "serve the remote query surface on this address")
	flags.String(keyDB, "", "collector database path")
	flags.Duration(keyShutdown, defaultShutdown, "time to wait for components to finish")
}
