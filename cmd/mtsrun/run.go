package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Deploy components and run them until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := newSettings(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		if d := settings.GetDuration(keyFor); d > 0 {
			var cancelTimeout context.CancelFunc
			ctx, cancelTimeout = context.WithTimeout(ctx, d)
			defer cancelTimeout()
		}
		return withDeployment(ctx, settings, func(d *deployed) error {
			if script := settings.GetString(keyScript); script != "" {
				if err := d.console.Exec(ctx, script, nil); err != nil {
					return err
				}
			}
			d.logger.Info("running", "process", d.manager.Process())
			<-ctx.Done()
			return nil
		})
	},
}

func init() {
	flags := runCmd.Flags()
	flags.Duration(keyFor, 0, "stop after this long (default: until interrupted)")
	flags.String(keyListen, "", "serve the remote query surface on this address")
	flags.String(keyScript, "", "starlark script to run after start")
	flags.String(keyDB, "", "collector database path")
	flags.Duration(keyShutdown, defaultShutdown, "time to wait for components to finish")
}
