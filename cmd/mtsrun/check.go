package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/reusee/mts/configs"
	"github.com/reusee/mts/managers"
	"github.com/reusee/mts/storages"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a deployment without running it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := newSettings(cmd)
		if err != nil {
			return err
		}
		return check(settings, cmd.OutOrStdout())
	},
}

// check builds every component and connection of the deployment against
// an in-memory collector database, then tears it down.
func check(settings *viper.Viper, out io.Writer) (err error) {
	settings.Set(keyDB, storages.Memory)
	newScope(settings).Call(func(
		loader configs.Loader,
		manager *managers.Manager,
		getDB storages.GetDB,
	) {
		err = func() (err error) {
			d, err := loadDeployment(loader, settings)
			if err != nil {
				return err
			}

			if err := manager.Init(); err != nil {
				return err
			}
			defer func() {
				if db, e := getDB(); e == nil {
					err = errors.Join(err, db.Close())
				}
			}()
			if err := register(manager, getDB); err != nil {
				return err
			}

			var unknown []error
			for _, spec := range d.Components {
				if !manager.HasType(spec.Type) {
					unknown = append(unknown, fmt.Errorf("%w: %s of %s", managers.ErrUnknownType, spec.Type, spec.Name))
				}
			}
			if err := errors.Join(unknown...); err != nil {
				return err
			}

			defer func() {
				err = errors.Join(err, manager.Shutdown(settings.GetDuration(keyShutdown)))
			}()
			if err := manager.Deploy(d); err != nil {
				return err
			}

			fmt.Fprintf(out, "process %s\n", manager.Process())
			for _, spec := range d.Components {
				fmt.Fprintf(out, "component %s %s\n", spec.Name, spec.Type)
			}
			for _, conn := range manager.Connections() {
				fmt.Fprintf(out, "connection %s\n", conn)
			}
			for _, conn := range manager.PendingConnections() {
				fmt.Fprintf(out, "deferred %s\n", conn)
			}
			return nil
		}()
	})
	return
}
